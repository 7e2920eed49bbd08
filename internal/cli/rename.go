package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rename <file>",
		Short: "Title every branch of a conversation",
		Long:  "Title every branch of a conversation. The name comes from --name or is piped via stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRename,
	}

	cmd.Flags().StringP("name", "n", "", "New name for the conversation")

	RootCmd.AddCommand(cmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	path := args[0]
	name, _ := cmd.Flags().GetString("name")

	if name == "" {
		if f, ok := cmd.InOrStdin().(*os.File); !ok || !isTerminal(f) {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			name = strings.TrimSpace(string(b))
		}
	}
	if name == "" {
		return fmt.Errorf("name is required (--name or stdin)")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	res, err := a.engine.Rename(cmd.Context(), path, name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return writeJSON(out, res)
	}
	st := newStyles(out)
	if !res.Written {
		fmt.Fprintf(out, "%s all %d branches already titled %q\n", st.ok.Render("[OK]"), res.Branches, res.Title)
		return nil
	}
	fmt.Fprintf(out, "%s titled %d branches %q (%d updated, %d added)\n",
		st.ok.Render("[OK]"), res.Branches, res.Title, res.Updated, res.Appended)
	fmt.Fprintln(out, st.dim.Render("Restart the editor to see the new name."))
	return nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
