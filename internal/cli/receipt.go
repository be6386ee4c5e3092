package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/olp/internal/frame"
	"github.com/roach88/olp/internal/receipt"
)

// ReceiptOptions holds flags for the receipt command.
type ReceiptOptions struct {
	*RootOptions
	Claim      string
	Because    []string
	But        []string
	So         string
	DeltaScale float64
	Threshold  float64
	Model      string
	Attrs      []string
	Out        string
}

// ReceiptResult reports where a receipt was written.
type ReceiptResult struct {
	Path      string `json:"path"`
	ReceiptID string `json:"receipt_id"`
}

// Text renders the result for text output.
func (r ReceiptResult) Text() string {
	return fmt.Sprintf("[ok] wrote %s", r.Path)
}

// NewReceiptCommand creates the receipt command.
func NewReceiptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReceiptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Write a human-readable receipt file",
		Long: `Write a receipt summarizing a claim: because / but / so,
telemetry, a tolerance threshold and the model that produced it.

The file is overwritten on every call. Without --so, a --delta-scale is
compared to --threshold to word the conclusion.

Example:
  olp receipt --claim "SPY likely up tomorrow" \
    --because "FlowState day decode" --because "30d minute context" \
    --but "Scale drift delta_scale = 0.028 (min-hour)" \
    --so "Within 3% tolerance, recheck at close" \
    --delta-scale 0.028 --model ibm-research/flowstate-r1 --attr cadence=day`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceipt(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Claim, "claim", "", "claim text")
	cmd.Flags().StringArrayVar(&opts.Because, "because", nil, "supporting reason (repeatable)")
	cmd.Flags().StringArrayVar(&opts.But, "but", nil, "caveat (repeatable)")
	cmd.Flags().StringVar(&opts.So, "so", "", "conclusion")
	cmd.Flags().Float64Var(&opts.DeltaScale, "delta-scale", 0, "telem.delta_scale")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", receipt.DefaultThreshold, "tolerance threshold")
	cmd.Flags().StringVar(&opts.Model, "model", "", "model identifier")
	cmd.Flags().StringArrayVar(&opts.Attrs, "attr", nil, "attribute as key=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "receipt path (default from config)")

	return cmd
}

func runReceipt(opts *ReceiptOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	cfg, logger, err := opts.settings(cmd)
	if err != nil {
		return err
	}

	attrs, err := parseAttrs(opts.Attrs)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeInput, "invalid flags", err)
	}

	fields := receipt.Fields{
		Claim:   opts.Claim,
		Because: opts.Because,
		But:     opts.But,
		So:      opts.So,
		Model:   opts.Model,
		Attrs:   attrs,
	}
	if cmd.Flags().Changed("delta-scale") {
		fields.Telem = frame.Telemetry{frame.KeyDeltaScale: opts.DeltaScale}
	}
	if cmd.Flags().Changed("threshold") {
		fields.Threshold = receipt.Threshold(opts.Threshold)
	}
	if fields.So == "" && cmd.Flags().Changed("delta-scale") {
		fields.So = receipt.DeriveConclusion(opts.Threshold, opts.DeltaScale).Text
	}

	return writeReceipt(out, logger, receipt.Build(fields), pick(opts.Out, cfg.ReceiptPath))
}

func writeReceipt(out *OutputFormatter, logger *slog.Logger, r receipt.Receipt, path string) error {
	id, err := receipt.ID(r)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeReceipt, "failed to hash receipt", err)
	}
	written, err := receipt.WriteFile(r, path)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeReceipt, "failed to write receipt", err)
	}
	logger.Info("receipt written", "path", written, "receipt_id", shortFrameID(id))
	return out.Success(ReceiptResult{Path: written, ReceiptID: id})
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
