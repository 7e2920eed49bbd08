package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "delete <file>",
		Short: "Delete a conversation",
		Long:  "Move a conversation into the trash, or remove it for good with --hard.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	cmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	RootCmd.AddCommand(cmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	hard, _ := cmd.Flags().GetBool("hard")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	m, l, err := a.manager()
	if err != nil {
		return err
	}
	defer l.Close()

	e, err := m.Delete(cmd.Context(), args[0], hard)
	if err != nil {
		return err
	}
	return printEntry(cmd, e)
}
