// Package receiptapi serves the latest receipt file over HTTP for
// dashboards and the receipt card widget.
package receiptapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/roach88/olp/internal/receipt"
)

// Server exposes /health and /receipt/latest.
type Server struct {
	app    *fiber.App
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithReceiptPath overrides receipt.DefaultPath.
func WithReceiptPath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.path = path
		}
	}
}

// WithClock overrides the clock reported by /health.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds the app and registers routes.
func New(opts ...Option) *Server {
	s := &Server{
		path:   receipt.DefaultPath,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "olp receipt API",
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "*",
	}))

	s.app.Get("/health", s.handleHealth)
	s.app.Get("/receipt/latest", s.handleLatest)
	return s
}

// App returns the underlying fiber app, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve listens on addr until ctx is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("receipt API listening", "addr", addr, "receipt", s.path)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down receipt API")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true, "time": s.now().Unix()})
}

// handleLatest mirrors the file as compact JSON. Problems are reported in
// the body with status 200 so the widget can render them.
func (s *Server) handleLatest(c *fiber.Ctx) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return c.JSON(fiber.Map{"error": "no receipt yet"})
	}
	if err != nil {
		s.logger.Warn("receipt unreadable", "path", s.path, "error", err)
		return c.JSON(fiber.Map{"error": "bad receipt: " + err.Error()})
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("receipt is not JSON", "path", s.path, "error", err)
		return c.JSON(fiber.Map{"error": "bad receipt: " + err.Error()})
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(doc)
}
