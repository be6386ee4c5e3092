package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/olp/internal/receiptapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string
	Receipt string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest receipt over HTTP",
		Long: `Serve the receipt API until interrupted.

Routes:
  GET /health          {"ok": true, "time": <unix seconds>}
  GET /receipt/latest  the receipt file, never cached

Example:
  olp serve --addr 127.0.0.1:8089`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.Receipt, "receipt", "", "receipt path (default from config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	cfg, logger, err := opts.settings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := receiptapi.New(
		receiptapi.WithReceiptPath(pick(opts.Receipt, cfg.ReceiptPath)),
		receiptapi.WithLogger(logger),
	)
	if err := srv.Serve(ctx, pick(opts.Addr, cfg.ListenAddr)); err != nil && ctx.Err() == nil {
		return fail(out, ExitFailure, ErrCodeServe, "receipt API stopped", err)
	}
	return nil
}

