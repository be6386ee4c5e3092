package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/roach88/olp/internal/canonical"
)

// ContentType is declared on every request body.
const ContentType = "application/json"

// DefaultTimeout bounds one attempt, including reading the response body.
const DefaultTimeout = 10 * time.Second

// Channel performs one delivery attempt.
type Channel interface {
	PostOnce(ctx context.Context, endpoint string, payload any) (Response, error)
}

// Response is a successful bus reply.
//
// When the body parses as JSON, Structured is true and Value holds the
// decoded document. Otherwise Value is the raw text as a string.
type Response struct {
	StatusCode int
	Raw        []byte
	Value      any
	Structured bool
}

// Text returns the raw response body.
func (r Response) Text() string {
	return string(r.Raw)
}

// HTTPChannel posts canonical JSON over HTTP.
//
// Thread-safety: HTTPChannel is safe for concurrent use.
type HTTPChannel struct {
	client *http.Client
	logger *slog.Logger
}

// HTTPOption configures an HTTPChannel.
type HTTPOption func(*HTTPChannel)

// WithHTTPClient replaces the default client. Its Timeout bounds each attempt.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPChannel) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets the per-attempt timeout on the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPChannel) {
		if d > 0 {
			h.client = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger for attempt diagnostics.
func WithLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPChannel) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHTTPChannel creates a channel with a DefaultTimeout client.
func NewHTTPChannel(opts ...HTTPOption) *HTTPChannel {
	h := &HTTPChannel{
		client: &http.Client{Timeout: DefaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PostOnce issues a single POST of payload to endpoint.
//
// Non-2xx responses and transport failures return *DeliveryError. A 2xx
// response whose body is not JSON still succeeds, with the raw text as
// the value.
func (h *HTTPChannel) PostOnce(ctx context.Context, endpoint string, payload any) (Response, error) {
	body, err := canonical.Marshal(payload)
	if err != nil {
		return Response{}, &DeliveryError{Endpoint: endpoint, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, &DeliveryError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", ContentType)

	resp, err := h.client.Do(req)
	if err != nil {
		return Response{}, &DeliveryError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &DeliveryError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	h.logger.Debug("bus response", "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(raw))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &DeliveryError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return ParseResponse(resp.StatusCode, raw), nil
}

// ParseResponse interprets a success body, falling back to raw text when
// it is not valid JSON.
func ParseResponse(status int, raw []byte) Response {
	out := Response{StatusCode: status, Raw: raw}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		out.Value = string(raw)
		return out
	}
	out.Value = v
	out.Structured = true
	return out
}
