// Package reconcile plans and applies the title record writes of a rename.
package reconcile

import (
	"fmt"

	"github.com/psaban20/claude-conversation-manager/internal/model"
	"github.com/psaban20/claude-conversation-manager/internal/store"
)

// Index maps leaf ids to the positions of their title records.
type Index map[string][]int

// IndexTitles indexes the title records of records.
func IndexTitles(records []model.Record) Index {
	ix := make(Index)
	for i, r := range records {
		if r.Kind == model.KindTitle {
			ix[r.Title.LeafID] = append(ix[r.Title.LeafID], i)
		}
	}
	return ix
}

// Current returns the title of every indexed leaf. When a leaf has several
// title records the last one in the file wins.
func (ix Index) Current(records []model.Record) map[string]string {
	out := make(map[string]string, len(ix))
	for leaf, positions := range ix {
		out[leaf] = records[positions[len(positions)-1]].Title.Title
	}
	return out
}

// OpKind is the action taken for one title record.
type OpKind int

const (
	OpKeep   OpKind = iota // record already carries the title
	OpUpdate               // overwrite the title in place
	OpAppend               // add a new record at the end of the file
)

func (k OpKind) String() string {
	switch k {
	case OpUpdate:
		return "update"
	case OpAppend:
		return "append"
	default:
		return "keep"
	}
}

// Op is one planned write.
type Op struct {
	Kind   OpKind
	LeafID string
	Index  int // record position; -1 for appends
}

// Plan is the full set of writes that titles every branch.
type Plan struct {
	Title string
	Ops   []Op
}

// Counts returns the number of in-place updates and appends.
func (p Plan) Counts() (updated, appended int) {
	for _, op := range p.Ops {
		switch op.Kind {
		case OpUpdate:
			updated++
		case OpAppend:
			appended++
		}
	}
	return updated, appended
}

// Changes reports whether applying p would modify any record.
func (p Plan) Changes() bool {
	u, a := p.Counts()
	return u+a > 0
}

// PlanRename plans a title record for every branch: existing records for a
// branch's leaf are updated in place, missing ones are appended. Records of
// leaves outside branches are never touched.
func PlanRename(branches []model.Branch, records []model.Record, title string) Plan {
	ix := IndexTitles(records)
	plan := Plan{Title: title}
	for _, b := range branches {
		positions := ix[b.LeafID]
		if len(positions) == 0 {
			plan.Ops = append(plan.Ops, Op{Kind: OpAppend, LeafID: b.LeafID, Index: -1})
			continue
		}
		for _, i := range positions {
			kind := OpUpdate
			if records[i].Title.Title == title {
				kind = OpKeep
			}
			plan.Ops = append(plan.Ops, Op{Kind: kind, LeafID: b.LeafID, Index: i})
		}
	}
	return plan
}

// Apply returns a copy of records with plan applied. records is not modified.
func Apply(plan Plan, records []model.Record) ([]model.Record, error) {
	_, appended := plan.Counts()
	out := make([]model.Record, len(records), len(records)+appended)
	copy(out, records)

	for _, op := range plan.Ops {
		if op.Kind != OpUpdate {
			continue
		}
		if op.Index < 0 || op.Index >= len(out) {
			return nil, fmt.Errorf("update %s: record %d out of range", op.LeafID, op.Index)
		}
		rec, err := store.SetTitle(out[op.Index], plan.Title)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", op.LeafID, err)
		}
		out[op.Index] = rec
	}

	if appended == 0 {
		return out, nil
	}
	style := store.DetectStyle(records)
	eol := lineEnding(records)
	if n := len(out); n > 0 && out[n-1].EOL == "" {
		out[n-1].EOL = eol
	}
	for _, op := range plan.Ops {
		if op.Kind != OpAppend {
			continue
		}
		rec := store.NewTitleRecord(style, plan.Title, op.LeafID)
		rec.EOL = eol
		out = append(out, rec)
	}
	return out, nil
}

// lineEnding returns the first line ending used in records.
func lineEnding(records []model.Record) string {
	for _, r := range records {
		if r.EOL != "" {
			return r.EOL
		}
	}
	return "\n"
}
