package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psaban20/claude-conversation-manager/internal/project"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search conversations by branch name",
		Long:  "Search branch titles and fallback names of every conversation for matching text, ignoring case.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().StringP("project", "p", "", "Only search projects matching this name")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	proj, _ := cmd.Flags().GetString("project")
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	matches, err := project.Search(cmd.Context(), a.dir, a.engine, a.cfg.ProjectsDir, project.SearchParams{
		Query:   query,
		Project: proj,
		Limit:   limit,
	})
	if err != nil {
		if cmd.Context().Err() != nil {
			return err
		}
		a.log.Warn("some conversations could not be read", "err", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		if matches == nil {
			matches = []project.Match{}
		}
		return writeJSON(out, matches)
	}
	if len(matches) == 0 {
		fmt.Fprintf(out, "No conversations match %q.\n", query)
		return nil
	}
	st := newStyles(out)
	for _, m := range matches {
		fmt.Fprintf(out, "%s %s\n", st.status(m.Conversation.Report.Summary), m.Conversation.Path)
		for _, b := range m.Branches {
			fmt.Fprintf(out, "    %s\n", shorten(b.CurrentTitle, 60))
		}
	}
	return nil
}
