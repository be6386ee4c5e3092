package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/roach88/olp/internal/canonical"
	"github.com/roach88/olp/internal/frame"
	"github.com/roach88/olp/internal/transport"
)

// Outcome summarizes one Send call for a Recorder.
type Outcome struct {
	FrameID   string
	Frame     frame.Frame
	Endpoint  string
	Delivered bool
	Attempts  int
	Shape     string // accepted shape; empty when not delivered
	LastError string
}

// Recorder observes finished sends. Recorder failures are logged and never
// change the result of Send.
type Recorder interface {
	RecordDelivery(ctx context.Context, o Outcome) error
}

// NodeRegistry answers whether a node id was delivered before.
type NodeRegistry interface {
	KnownNode(ctx context.Context, id string) (bool, error)
}

// Sender delivers frames to one endpoint.
//
// Thread-safety: Send is safe for concurrent use. Each call owns its
// attempt counter and payloads; concurrent sends are unordered.
type Sender struct {
	channel  transport.Channel
	cfg      Config
	shapes   []Shape
	sleeper  Sleeper
	logger   *slog.Logger
	recorder Recorder
	registry NodeRegistry
	validate bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Sender.
type Option func(*Sender)

// WithShapes replaces DefaultShapes. Shapes are tried in order.
func WithShapes(shapes ...Shape) Option {
	return func(s *Sender) {
		if len(shapes) > 0 {
			s.shapes = shapes
		}
	}
}

// WithSleeper replaces the timer-based sleeper.
func WithSleeper(sl Sleeper) Option {
	return func(s *Sender) {
		if sl != nil {
			s.sleeper = sl
		}
	}
}

// WithLogger sets the logger for attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sender) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder reports every finished Send to r.
func WithRecorder(r Recorder) Option {
	return func(s *Sender) {
		s.recorder = r
	}
}

// WithReferenceCheck rejects frames whose edges name nodes that are neither
// in the frame nor known to r. Off by default.
func WithReferenceCheck(r NodeRegistry) Option {
	return func(s *Sender) {
		s.registry = r
	}
}

// WithValidation runs frame.Validate before the first attempt. Off by default.
func WithValidation() Option {
	return func(s *Sender) {
		s.validate = true
	}
}

// WithRand seeds backoff jitter.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sender) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewSender creates a Sender. cfg is completed with WithDefaults.
func NewSender(ch transport.Channel, cfg Config, opts ...Option) (*Sender, error) {
	if ch == nil {
		return nil, ErrChannelRequired
	}
	cfg = cfg.WithDefaults()
	if cfg.Endpoint == "" {
		return nil, ErrEndpointRequired
	}
	s := &Sender{
		channel: ch,
		cfg:     cfg,
		shapes:  DefaultShapes(),
		sleeper: TimerSleeper{},
		logger:  slog.Default(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the effective configuration.
func (s *Sender) Config() Config {
	return s.cfg
}

// Send delivers f, retrying up to MaxAttempts times.
//
// Each attempt tries every shape in order and succeeds on the first
// accepted one. Failed attempts are followed by a backoff wait, except the
// last. Every retry re-sends byte-identical bodies.
//
// Pre-send checks (validation, references) fail immediately without any
// network attempt. Exhaustion returns *ExhaustedError.
func (s *Sender) Send(ctx context.Context, f frame.Frame) (transport.Response, error) {
	if s.validate {
		if err := frame.Validate(f); err != nil {
			return transport.Response{}, fmt.Errorf("send frame: %w", err)
		}
	}
	if s.registry != nil {
		if err := s.checkReferences(ctx, f); err != nil {
			return transport.Response{}, fmt.Errorf("send frame: %w", err)
		}
	}

	payloads, err := s.encodeShapes(f)
	if err != nil {
		return transport.Response{}, fmt.Errorf("send frame: %w", err)
	}

	frameID, err := frame.ID(f)
	if err != nil {
		return transport.Response{}, fmt.Errorf("send frame: %w", err)
	}
	log := s.logger.With("endpoint", s.cfg.Endpoint, "frame_id", shortID(frameID))

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		for i, shape := range s.shapes {
			resp, err := s.channel.PostOnce(ctx, s.cfg.Endpoint, payloads[i])
			if err == nil {
				log.Debug("frame delivered", "attempt", attempt, "shape", shape.Name, "status", resp.StatusCode)
				s.record(ctx, Outcome{
					FrameID:   frameID,
					Frame:     f,
					Endpoint:  s.cfg.Endpoint,
					Delivered: true,
					Attempts:  attempt,
					Shape:     shape.Name,
				})
				return resp, nil
			}
			lastErr = err
			log.Debug("shape rejected", "attempt", attempt, "shape", shape.Name, "error", err)
		}

		log.Warn("delivery attempt failed", "attempt", attempt, "max_attempts", s.cfg.MaxAttempts, "error", lastErr)
		if attempt == s.cfg.MaxAttempts {
			break
		}

		delay := s.nextDelay(attempt)
		if err := s.sleeper.Sleep(ctx, delay); err != nil {
			return transport.Response{}, s.exhausted(ctx, f, frameID, attempt, lastErr, err)
		}
	}

	return transport.Response{}, s.exhausted(ctx, f, frameID, s.cfg.MaxAttempts, lastErr, nil)
}

func (s *Sender) exhausted(ctx context.Context, f frame.Frame, frameID string, attempts int, last, interrupted error) error {
	ee := &ExhaustedError{
		Endpoint:    s.cfg.Endpoint,
		Attempts:    attempts,
		Last:        last,
		Interrupted: interrupted,
	}
	s.logger.Error("frame not delivered", "endpoint", s.cfg.Endpoint, "frame_id", shortID(frameID), "attempts", attempts, "error", last)

	o := Outcome{
		FrameID:  frameID,
		Frame:    f,
		Endpoint: s.cfg.Endpoint,
		Attempts: attempts,
	}
	if last != nil {
		o.LastError = last.Error()
	}
	// The caller's context may already be done; the record should still land.
	s.record(context.WithoutCancel(ctx), o)
	return ee
}

// encodeShapes renders every shape once, so retries reuse identical bytes.
func (s *Sender) encodeShapes(f frame.Frame) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(s.shapes))
	for i, shape := range s.shapes {
		body, err := canonical.Marshal(shape.Encode(f))
		if err != nil {
			return nil, fmt.Errorf("encode %s shape: %w", shape.Name, err)
		}
		out[i] = body
	}
	return out, nil
}

func (s *Sender) checkReferences(ctx context.Context, f frame.Frame) error {
	var lookupErr error
	known := func(id string) bool {
		if lookupErr != nil {
			return false
		}
		ok, err := s.registry.KnownNode(ctx, id)
		if err != nil {
			lookupErr = err
			return false
		}
		return ok
	}
	refErr := frame.CheckReferences(f, known)
	if lookupErr != nil {
		return fmt.Errorf("resolve node references: %w", lookupErr)
	}
	return refErr
}

func (s *Sender) nextDelay(attempt int) time.Duration {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return NextDelay(s.cfg.Backoff, attempt, s.rng)
}

func (s *Sender) record(ctx context.Context, o Outcome) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordDelivery(ctx, o); err != nil {
		s.logger.Warn("record delivery failed", "frame_id", shortID(o.FrameID), "error", err)
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
