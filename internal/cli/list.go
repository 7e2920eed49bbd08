package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psaban20/claude-conversation-manager/internal/project"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects or the conversations of one project",
		RunE:  runList,
	}

	cmd.Flags().StringP("project", "p", "", "Show conversations in the project matching this name")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("project")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	projects, err := project.List(a.dir, a.cfg.ProjectsDir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if query == "" {
		if jsonOutput() {
			if projects == nil {
				projects = []project.Project{}
			}
			return writeJSON(out, projects)
		}
		if len(projects) == 0 {
			fmt.Fprintf(out, "No Claude projects found in %s.\n", a.cfg.ProjectsDir)
			return nil
		}
		renderProjects(out, projects)
		return nil
	}

	p, ok := project.Find(projects, query)
	if !ok {
		return fmt.Errorf("project not found: %s", query)
	}
	if err := project.Load(cmd.Context(), a.dir, a.engine, p); err != nil {
		a.log.Warn("some conversations could not be read", "project", p.Name, "err", err)
	}
	if jsonOutput() {
		return writeJSON(out, p)
	}
	renderProject(out, p)
	return nil
}
