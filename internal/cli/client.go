package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/olp/internal/config"
	"github.com/roach88/olp/internal/delivery"
	"github.com/roach88/olp/internal/frame"
	"github.com/roach88/olp/internal/ledger"
	"github.com/roach88/olp/internal/transport"
)

// deliveryFlags are shared by commands that post frames.
type deliveryFlags struct {
	Ledger    bool
	Validate  bool
	CheckRefs bool
}

// client bundles a sender with the ledger it records to, if any.
type client struct {
	sender *delivery.Sender
	ledger *ledger.Store
}

func (c *client) Close() error {
	if c.ledger == nil {
		return nil
	}
	return c.ledger.Close()
}

// newClient wires transport, retry policy and the optional ledger.
// --check-refs implies the ledger, since known nodes live there.
func (o *RootOptions) newClient(cfg config.Config, logger *slog.Logger, df deliveryFlags) (*client, error) {
	ch := transport.NewHTTPChannel(
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithLogger(logger),
	)

	senderOpts := []delivery.Option{
		delivery.WithLogger(logger),
		delivery.WithSleeper(o.Sleeper),
	}
	if df.Validate {
		senderOpts = append(senderOpts, delivery.WithValidation())
	}

	c := &client{}
	if df.Ledger || df.CheckRefs {
		st, err := openLedger(cfg.LedgerPath)
		if err != nil {
			return nil, err
		}
		c.ledger = st
		senderOpts = append(senderOpts, delivery.WithRecorder(st))
		if df.CheckRefs {
			senderOpts = append(senderOpts, delivery.WithReferenceCheck(st))
		}
	}

	sender, err := delivery.NewSender(ch, cfg.Delivery(), senderOpts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.sender = sender
	return c, nil
}

func openLedger(path string) (*ledger.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	return ledger.Open(path)
}

// sendFailure maps a Send error to an exit code and reports it.
func sendFailure(out *OutputFormatter, err error) error {
	switch {
	case frame.IsValidationError(err):
		return fail(out, ExitCommandError, ErrCodeValidation, "frame failed validation", err)
	case frame.IsReferenceError(err):
		return fail(out, ExitCommandError, ErrCodeReference, "frame references unknown nodes", err)
	case delivery.IsExhausted(err):
		return fail(out, ExitFailure, ErrCodeDelivery, "delivery failed", err)
	case errors.Is(err, delivery.ErrEndpointRequired):
		return fail(out, ExitCommandError, ErrCodeConfig, "no endpoint", err)
	default:
		return fail(out, ExitFailure, ErrCodeDelivery, "send failed", err)
	}
}

// parseAttrs turns repeated key=value flags into a map.
func parseAttrs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid attr %q: want key=value", p)
		}
		attrs[k] = v
	}
	return attrs, nil
}
