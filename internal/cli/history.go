package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/olp/internal/ledger"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit  int
	Ledger string
}

// HistoryResult lists recorded deliveries, oldest first.
type HistoryResult struct {
	Deliveries []ledger.Delivery `json:"deliveries"`
}

// Text renders the deliveries as a table.
func (r HistoryResult) Text() string {
	if len(r.Deliveries) == 0 {
		return "No deliveries recorded."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tFRAME\tSTREAM\tSTATUS\tATTEMPTS\tSHAPE\tENDPOINT")
	for _, d := range r.Deliveries {
		status := "delivered"
		if !d.Delivered {
			status = "failed"
		}
		shape := d.Shape
		if shape == "" {
			shape = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			d.Seq, shortFrameID(d.FrameID), d.StreamID, status, d.Attempts, shape, d.Endpoint)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded deliveries",
		Long: `List deliveries recorded with send --ledger, oldest first.

Examples:
  olp history
  olp history --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "most recent deliveries to show (0 for all)")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "ledger path (default from config)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	cfg, _, err := opts.settings(cmd)
	if err != nil {
		return err
	}

	st, err := openLedger(pick(opts.Ledger, cfg.LedgerPath))
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeLedger, "failed to open ledger", err)
	}
	defer st.Close()

	deliveries, err := st.ListDeliveries(cmd.Context(), opts.Limit)
	if err != nil {
		return fail(out, ExitCommandError, ErrCodeLedger, "failed to list deliveries", err)
	}
	return out.Success(HistoryResult{Deliveries: deliveries})
}
