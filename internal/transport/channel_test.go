package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestPostOnceStructuredSuccess(t *testing.T) {
	var gotBody []byte
	var gotType, gotMethod string
	srv := newBus(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	ch := NewHTTPChannel()
	resp, err := ch.PostOnce(context.Background(), srv.URL+"/frame", map[string]any{"b": 1, "a": "x"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, ContentType, gotType)
	assert.Equal(t, `{"a":"x","b":1}`, string(gotBody))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.Structured)
	assert.Equal(t, map[string]any{"ok": true}, resp.Value)
	assert.Equal(t, `{"ok":true}`, resp.Text())
}

func TestPostOnceSendsCallerDataUnchanged(t *testing.T) {
	var gotBody []byte
	srv := newBus(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	payload := map[string]any{
		"label":    "cafe\u0301",
		"order_id": int64(9007199254740993),
	}
	_, err := NewHTTPChannel().PostOnce(context.Background(), srv.URL, payload)
	require.NoError(t, err)

	assert.Equal(t, "{\"label\":\"cafe\u0301\",\"order_id\":9007199254740993}", string(gotBody))
}

func TestPostOnceUnstructuredSuccess(t *testing.T) {
	srv := newBus(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("accepted, thanks"))
	})

	resp, err := NewHTTPChannel().PostOnce(context.Background(), srv.URL, map[string]any{})
	require.NoError(t, err, "a non-JSON success body must not fail the attempt")

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.False(t, resp.Structured)
	assert.Equal(t, "accepted, thanks", resp.Value)
}

func TestPostOnceEmptySuccessBody(t *testing.T) {
	srv := newBus(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	resp, err := NewHTTPChannel().PostOnce(context.Background(), srv.URL, map[string]any{})
	require.NoError(t, err)
	assert.False(t, resp.Structured)
	assert.Equal(t, "", resp.Value)
}

func TestPostOnceRejected(t *testing.T) {
	srv := newBus(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"expected frame envelope"}`))
	})

	endpoint := srv.URL + "/frame"
	_, err := NewHTTPChannel().PostOnce(context.Background(), endpoint, map[string]any{})
	require.Error(t, err)
	assert.True(t, IsDeliveryError(err))

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, endpoint, de.Endpoint)
	assert.Equal(t, http.StatusBadRequest, de.StatusCode)
	assert.Equal(t, `{"detail":"expected frame envelope"}`, de.Body)
	assert.True(t, de.Rejected())
	assert.Equal(t, "POST "+endpoint+` -> 400: {"detail":"expected frame envelope"}`, err.Error())
}

func TestPostOnceConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/frame"
	srv.Close()

	_, err := NewHTTPChannel().PostOnce(context.Background(), endpoint, map[string]any{})
	require.Error(t, err)

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, endpoint, de.Endpoint)
	assert.Zero(t, de.StatusCode)
	assert.False(t, de.Rejected())
	assert.Contains(t, err.Error(), endpoint)
}

func TestPostOnceTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newBus(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ch := NewHTTPChannel(WithTimeout(50 * time.Millisecond))
	_, err := ch.PostOnce(context.Background(), srv.URL, map[string]any{})
	require.Error(t, err)
	assert.True(t, IsDeliveryError(err))
}

func TestPostOnceUsesSuppliedClient(t *testing.T) {
	srv := newBus(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "olp-test", r.Header.Get("X-Olp-Client"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	client := &http.Client{Transport: headerTransport{base: http.DefaultTransport}}
	resp, err := NewHTTPChannel(WithHTTPClient(client)).PostOnce(context.Background(), srv.URL, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, resp.Value)
}

type headerTransport struct{ base http.RoundTripper }

func (t headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Olp-Client", "olp-test")
	return t.base.RoundTrip(r)
}

func TestPostOnceUnencodablePayload(t *testing.T) {
	_, err := NewHTTPChannel().PostOnce(context.Background(), "http://127.0.0.1:1/frame", make(chan int))
	require.Error(t, err)
	assert.True(t, IsDeliveryError(err))
}

func TestParseResponse(t *testing.T) {
	r := ParseResponse(200, []byte(`[1,2]`))
	assert.True(t, r.Structured)
	assert.Equal(t, []any{float64(1), float64(2)}, r.Value)

	r = ParseResponse(200, []byte(`{not json`))
	assert.False(t, r.Structured)
	assert.Equal(t, "{not json", r.Value)
}
