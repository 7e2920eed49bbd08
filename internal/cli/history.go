package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/psaban20/claude-conversation-manager/internal/ledger"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled file operations",
		RunE:  runHistory,
	}

	cmd.Flags().String("op", "", "Filter by operation: archive, move, delete, restore")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	op, _ := cmd.Flags().GetString("op")
	limit, _ := cmd.Flags().GetInt("limit")
	if op != "" && !ledger.ValidOps[ledger.Op(op)] {
		return fmt.Errorf("invalid op %q (valid: archive, move, delete, restore)", op)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	l, err := ledger.Open(a.cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer l.Close()

	entries, err := l.List(cmd.Context(), ledger.ListParams{Op: ledger.Op(op), Limit: limit})
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		if entries == nil {
			entries = []ledger.Entry{}
		}
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No operations recorded.")
		return nil
	}
	st := newStyles(out)
	for _, e := range entries {
		state := ""
		if e.RestoredAt != nil {
			state = st.dim.Render(" (restored)")
		}
		fmt.Fprintf(out, "%s  %-8s %s  %s%s\n", e.ID, e.Op, st.dim.Render(humanize.Time(e.CreatedAt)), shortenLeft(e.Source, 50), state)
	}
	return nil
}
