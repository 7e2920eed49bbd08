package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Undo an archive, move or delete",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestore,
	}

	RootCmd.AddCommand(cmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	m, l, err := a.manager()
	if err != nil {
		return err
	}
	defer l.Close()

	e, err := m.Restore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printEntry(cmd, e)
}
