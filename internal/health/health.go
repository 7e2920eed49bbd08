// Package health summarizes the title state of a conversation file.
package health

import (
	"fmt"
	"strings"

	"github.com/psaban20/claude-conversation-manager/internal/model"
	"github.com/psaban20/claude-conversation-manager/internal/tree"
)

// Facts are the file-level observations warnings are derived from.
type Facts struct {
	Messages        int
	TitleRecords    int
	SidechainLeaves int
	Cycles          [][]string
	MalformedLines  []int
	StaleTitles     []string // leaf ids of title records matching no branch
}

// Collect gathers Facts from a parsed file, its tree and resolved branches.
func Collect(records []model.Record, t *tree.Tree, branches []model.Branch) Facts {
	f := Facts{Messages: t.Len(), Cycles: t.Cycles}
	for _, leaf := range t.Leaves() {
		if leaf.Msg.IsSidechain {
			f.SidechainLeaves++
		}
	}

	live := make(map[string]bool, len(branches))
	for _, b := range branches {
		live[b.LeafID] = true
	}
	seen := make(map[string]bool)
	for _, r := range records {
		switch {
		case r.Kind == model.KindTitle:
			f.TitleRecords++
			if !live[r.Title.LeafID] && !seen[r.Title.LeafID] {
				seen[r.Title.LeafID] = true
				f.StaleTitles = append(f.StaleTitles, r.Title.LeafID)
			}
		case r.Malformed != "":
			f.MalformedLines = append(f.MalformedLines, r.Line)
		}
	}
	return f
}

// Summarize counts titled and untitled branches and derives warnings.
func Summarize(branches []model.Branch, f Facts) model.Summary {
	s := model.Summary{BranchCount: len(branches)}
	for _, b := range branches {
		if b.IsTitled {
			s.TitledCount++
		} else {
			s.UntitledCount++
		}
	}

	for _, c := range f.Cycles {
		loop := append(append([]string(nil), c...), c[0])
		s.Warnings = append(s.Warnings, model.Warning{
			Code:    model.WarnCyclicReference,
			Message: fmt.Sprintf("%v: %s", model.ErrCyclicReference, strings.Join(loop, " -> ")),
			IDs:     c,
		})
	}
	if f.Messages == 0 && f.TitleRecords > 0 {
		s.Warnings = append(s.Warnings, model.Warning{
			Code:    model.WarnOrphanFile,
			Message: fmt.Sprintf("no messages but %d title records; they name leaves in other files", f.TitleRecords),
			IDs:     f.StaleTitles,
		})
	} else if len(f.StaleTitles) > 0 {
		s.Warnings = append(s.Warnings, model.Warning{
			Code:    model.WarnStaleTitle,
			Message: fmt.Sprintf("%d title records name leaves that are not branches of this file", len(f.StaleTitles)),
			IDs:     f.StaleTitles,
		})
	}
	if f.Messages > 0 && len(branches) == 0 && f.SidechainLeaves > 0 {
		s.Warnings = append(s.Warnings, model.Warning{
			Code:    model.WarnSidechainOnly,
			Message: fmt.Sprintf("all %d leaves are sidechain messages", f.SidechainLeaves),
		})
	}
	if len(f.MalformedLines) > 0 {
		s.Warnings = append(s.Warnings, model.Warning{
			Code:    model.WarnMalformedRecord,
			Message: fmt.Sprintf("%v: %d lines kept as passthrough", model.ErrMalformedRecord, len(f.MalformedLines)),
			Lines:   f.MalformedLines,
		})
	}
	return s
}
