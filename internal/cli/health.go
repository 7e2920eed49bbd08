package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/psaban20/claude-conversation-manager/internal/project"
)

func init() {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report conversations with untitled branches",
		RunE:  runHealth,
	}

	cmd.Flags().BoolP("all", "a", false, "Show healthy conversations too")
	cmd.Flags().StringP("project", "p", "", "Only check projects matching this name")

	RootCmd.AddCommand(cmd)
}

type healthReport struct {
	Projects      []project.Project `json:"projects"`
	Conversations int               `json:"conversations"`
	Unhealthy     int               `json:"unhealthy"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	query, _ := cmd.Flags().GetString("project")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	projects, err := project.List(a.dir, a.cfg.ProjectsDir)
	if err != nil {
		return err
	}

	rep := healthReport{Projects: []project.Project{}}
	for i := range projects {
		p := &projects[i]
		if query != "" && !strings.Contains(p.Name, query) && !strings.Contains(p.DisplayName(), query) {
			continue
		}
		if err := project.Load(cmd.Context(), a.dir, a.engine, p); err != nil {
			a.log.Warn("some conversations could not be read", "project", p.Name, "err", err)
		}
		rep.Conversations += len(p.Conversations)
		rep.Unhealthy += p.Unhealthy()

		if !all {
			kept := p.Conversations[:0]
			for _, c := range p.Conversations {
				if !c.Healthy() {
					kept = append(kept, c)
				}
			}
			p.Conversations = kept
		}
		if len(p.Conversations) > 0 {
			rep.Projects = append(rep.Projects, *p)
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return writeJSON(out, rep)
	}

	st := newStyles(out)
	fmt.Fprintf(out, "\n%s\n", st.title.Render("Conversation Health Report"))
	fmt.Fprintln(out, rule("="))
	for _, p := range rep.Projects {
		fmt.Fprintf(out, "\n%s\n", shortenLeft(p.DisplayName(), 60))
		fmt.Fprintln(out, rule("-"))
		for _, c := range p.Conversations {
			status := st.ok.Render("[OK]")
			if !c.Healthy() {
				s := c.Report.Summary
				status = st.warn.Render(fmt.Sprintf("[!] %d/%d untitled", s.UntitledCount, s.BranchCount))
			}
			fmt.Fprintf(out, "  %20s %s\n", status, shorten(c.Report.DisplayName, 40))
		}
	}
	fmt.Fprintf(out, "\n%s\n", rule("="))
	fmt.Fprintf(out, "Total: %d conversations, %d need attention\n", rep.Conversations, rep.Unhealthy)
	return nil
}
