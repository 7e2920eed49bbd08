package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/psaban20/claude-conversation-manager/internal/model"
	"github.com/psaban20/claude-conversation-manager/internal/project"
)

const (
	ruleWidth = 70
	nameWidth = 45
)

// styles are bound to the writer they render for, so output that is not a
// terminal stays plain.
type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	dim   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

func rule(ch string) string { return strings.Repeat(ch, ruleWidth) }

func shorten(s string, width uint) string {
	return truncate.StringWithTail(s, width, "...")
}

// shortenLeft keeps the end of s, which for paths is the useful part.
func shortenLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "..." + string(r[len(r)-width+3:])
}

func (st styles) status(s model.Summary) string {
	if s.Healthy() {
		return st.ok.Render("[OK]")
	}
	return st.warn.Render(fmt.Sprintf("[!] %d/%d", s.UntitledCount, s.BranchCount))
}

func (st styles) warnings(w io.Writer, ws []model.Warning) {
	for _, warn := range ws {
		text := wordwrap.String(fmt.Sprintf("%s: %s", warn.Code, warn.Message), ruleWidth-4)
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(w, "  %s\n", st.warn.Render(line))
		}
	}
}

func renderProjects(w io.Writer, projects []project.Project) {
	st := newStyles(w)
	fmt.Fprintf(w, "\n%s\n", st.title.Render(fmt.Sprintf("Claude Projects (%d found)", len(projects))))
	fmt.Fprintln(w, rule("="))
	for i, p := range projects {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, shortenLeft(p.DisplayName(), 55))
		fmt.Fprintf(w, "      %s\n", st.dim.Render(fmt.Sprintf("%d conversations", p.Files)))
	}
}

func renderProject(w io.Writer, p *project.Project) {
	st := newStyles(w)
	fmt.Fprintf(w, "\n%s %s\n", st.title.Render("Project:"), p.DisplayName())
	fmt.Fprintf(w, "Path: %s\n", p.Path)
	fmt.Fprintf(w, "Conversations: %d\n", len(p.Conversations))
	fmt.Fprintln(w, rule("-"))
	for _, c := range p.Conversations {
		fmt.Fprintf(w, "  %10s %s | %s\n",
			st.status(c.Report.Summary),
			c.Modified.Format("2006-01-02 15:04"),
			shorten(c.Report.DisplayName, nameWidth))
	}
}

func renderReport(w io.Writer, r *model.Report, size int64, modified time.Time) {
	st := newStyles(w)
	fmt.Fprintf(w, "\n%s\n", st.title.Render("Conversation Analysis"))
	fmt.Fprintln(w, rule("="))
	fmt.Fprintf(w, "Session ID: %s\n", r.SessionID)
	fmt.Fprintf(w, "Size: %s\n", humanize.Bytes(uint64(size)))
	fmt.Fprintf(w, "Modified: %s (%s)\n", modified.Format("2006-01-02 15:04:05"), humanize.Time(modified))
	fmt.Fprintf(w, "Total messages: %d\n", r.TotalMessages)
	fmt.Fprintf(w, "Branches: %d\n", r.Summary.BranchCount)
	if r.Summary.Healthy() {
		fmt.Fprintf(w, "Health: %s\n", st.ok.Render("OK - all branches titled"))
	} else {
		fmt.Fprintf(w, "Health: %s\n", st.warn.Render(fmt.Sprintf("WARNING - %d untitled", r.Summary.UntitledCount)))
	}
	fmt.Fprintf(w, "Display name: %s\n", r.DisplayName)

	fmt.Fprintf(w, "\nBranches (newest first):\n")
	fmt.Fprintln(w, rule("-"))
	for i, b := range r.Branches {
		mark := st.ok.Render("[OK]")
		if !b.IsTitled {
			mark = st.dim.Render("[--]")
		}
		ts := b.Timestamp
		if len(ts) > 19 {
			ts = ts[:19]
		}
		if ts == "" {
			ts = "Unknown"
		}
		fmt.Fprintf(w, "  %2d. %s %s | %4d msgs | %s\n", i+1, mark, ts, b.MessageCount, shorten(b.CurrentTitle, 40))
	}
	if len(r.Summary.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		st.warnings(w, r.Summary.Warnings)
	}
}
