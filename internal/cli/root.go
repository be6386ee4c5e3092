package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/olp/internal/config"
	"github.com/roach88/olp/internal/delivery"
	"github.com/roach88/olp/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Sleeper replaces real backoff waits. Tests inject a recording sleeper.
	Sleeper delivery.Sleeper

	cfg    *config.Config
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the olp CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "olp",
		Short: "OLP frame client",
		Long: `Send Open Line Protocol frames to a bus and write human-readable receipts.

The bus endpoint comes from OLP_URL, or OLP_BASE_URL + "/frame",
defaulting to http://127.0.0.1:8088/frame.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			_, _, err := opts.settings(cmd)
			return err
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (.yaml, .yml or .toml)")

	cmd.AddCommand(NewSendCommand(opts))
	cmd.AddCommand(NewReceiptCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewEndpointCommand(opts))

	return cmd
}

// settings loads configuration and installs the logger once per process.
// Subcommands call it directly so they also work outside the root.
func (o *RootOptions) settings(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	if o.cfg != nil {
		return *o.cfg, o.logger, nil
	}

	cfg, err := config.Load(config.LoadOptions{File: o.ConfigFile})
	if err != nil {
		return config.Config{}, nil, exitError(ExitCommandError, "failed to load config", err)
	}

	logger, err := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel, o.Verbose)
	if err != nil {
		return config.Config{}, nil, exitError(ExitCommandError, "invalid log level", err)
	}

	o.cfg = &cfg
	o.logger = logger
	return cfg, logger, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	format := o.Format
	if format == "" {
		format = "text"
	}
	return &OutputFormatter{Format: format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
