package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psaban20/claude-conversation-manager/internal/ledger"
)

func init() {
	archive := &cobra.Command{
		Use:   "archive <file>",
		Short: "Move a conversation into the archive",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchive,
	}

	move := &cobra.Command{
		Use:   "move <file>",
		Short: "Move a conversation to another project",
		Args:  cobra.ExactArgs(1),
		RunE:  runMove,
	}
	move.Flags().StringP("to", "t", "", "Target project name or working directory (required)")
	move.MarkFlagRequired("to")

	RootCmd.AddCommand(archive, move)
}

func runArchive(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	m, l, err := a.manager()
	if err != nil {
		return err
	}
	defer l.Close()

	e, err := m.Archive(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printEntry(cmd, e)
}

func runMove(cmd *cobra.Command, args []string) error {
	to, _ := cmd.Flags().GetString("to")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	m, l, err := a.manager()
	if err != nil {
		return err
	}
	defer l.Close()

	e, err := m.Move(cmd.Context(), args[0], to)
	if err != nil {
		return err
	}
	return printEntry(cmd, e)
}

func printEntry(cmd *cobra.Command, e *ledger.Entry) error {
	out := cmd.OutOrStdout()
	if jsonOutput() {
		return writeJSON(out, e)
	}
	st := newStyles(out)
	if e.Dest == "" {
		fmt.Fprintf(out, "%s %s %s\n", st.ok.Render("[OK]"), e.Op, e.Source)
	} else {
		fmt.Fprintf(out, "%s %s %s -> %s\n", st.ok.Render("[OK]"), e.Op, e.Source, e.Dest)
	}
	if e.Op != ledger.OpRestore && e.Dest != "" {
		fmt.Fprintln(out, st.dim.Render("Undo with: claude-conv-manager restore "+e.ID))
	}
	return nil
}
