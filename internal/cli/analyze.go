package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Show the branches and title health of a conversation file",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	RootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	report, err := a.engine.Analyze(cmd.Context(), path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return writeJSON(out, report)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	renderReport(out, report, info.Size(), info.ModTime())
	return nil
}
