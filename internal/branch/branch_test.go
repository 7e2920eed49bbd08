package branch

import (
	"testing"

	"github.com/psaban20/claude-conversation-manager/internal/excerpt"
	"github.com/psaban20/claude-conversation-manager/internal/model"
	"github.com/psaban20/claude-conversation-manager/internal/store"
	"github.com/psaban20/claude-conversation-manager/internal/testjsonl"
	"github.com/psaban20/claude-conversation-manager/internal/tree"
)

func resolve(t *testing.T, b *testjsonl.Builder) []model.Branch {
	t.Helper()
	records := store.Parse(b.Bytes())
	titles := make(map[string]string)
	for _, r := range records {
		if r.Kind == model.KindTitle {
			titles[r.Title.LeafID] = r.Title.Title
		}
	}
	return Resolve(tree.Build(records), titles, excerpt.DefaultPolicy())
}

func TestResolve_TwoLeavesOneTitled(t *testing.T) {
	b := testjsonl.New()
	b.User("A", "", "Set up the project\nwith details")
	b.Assistant("B", "A", "first answer")
	b.Assistant("C", "A", "second answer")
	b.Title("X", "B")

	branches := resolve(t, b)
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(branches))
	}

	// C is newer, so it comes first.
	c, bb := branches[0], branches[1]
	if c.LeafID != "C" || bb.LeafID != "B" {
		t.Fatalf("expected order [C B], got [%s %s]", c.LeafID, bb.LeafID)
	}
	if !bb.IsTitled || bb.CurrentTitle != "X" {
		t.Errorf("expected B titled X, got %+v", bb)
	}
	if c.IsTitled || c.CurrentTitle != "Set up the project" {
		t.Errorf("expected C to fall back to first user line, got %+v", c)
	}
	if c.MessageCount != 2 || len(c.Path) != 2 || c.Path[0] != "A" {
		t.Errorf("expected path [A C], got %v", c.Path)
	}
	if DisplayName(branches) != "Set up the project" {
		t.Errorf("expected display name from newest branch, got %q", DisplayName(branches))
	}
}

func TestResolve_NoMessages(t *testing.T) {
	b := testjsonl.New().Title("X", "elsewhere").Raw(`{"type":"queue-operation"}`)
	branches := resolve(t, b)
	if len(branches) != 0 {
		t.Errorf("expected no branches, got %d", len(branches))
	}
	if DisplayName(branches) != UnknownName {
		t.Errorf("expected %q, got %q", UnknownName, DisplayName(branches))
	}
}

func TestResolve_BranchCountMatchesVisibleLeaves(t *testing.T) {
	b := testjsonl.New()
	root := b.User("", "", "root")
	mid := b.Assistant("", root, "mid")
	b.User("", mid, "leaf 1")
	b.User("", mid, "leaf 2")
	b.User("", root, "leaf 3")
	b.Message(testjsonl.Msg{Type: "user", Parent: root, Sidechain: true, Text: "agent work"})

	records := store.Parse(b.Bytes())
	tr := tree.Build(records)
	branches := Resolve(tr, nil, excerpt.DefaultPolicy())

	visible := 0
	for _, n := range tr.Leaves() {
		if !n.Msg.IsSidechain {
			visible++
		}
	}
	if visible != 3 || len(branches) != visible {
		t.Errorf("expected 3 branches for 3 visible leaves, got %d branches, %d leaves", len(branches), visible)
	}
	for i := 1; i < len(branches); i++ {
		if branches[i-1].Timestamp < branches[i].Timestamp {
			t.Errorf("branches not sorted newest first at %d", i)
		}
	}
}

func TestResolve_TruncatedBranch(t *testing.T) {
	b := testjsonl.New()
	b.User("A", "B", "loop a")
	b.User("B", "A", "loop b")
	b.User("C", "A", "tail")

	branches := resolve(t, b)
	if len(branches) != 1 {
		t.Fatalf("expected 1 branch, got %d", len(branches))
	}
	if !branches[0].Truncated || branches[0].LeafID != "C" {
		t.Errorf("expected truncated branch for C, got %+v", branches[0])
	}
}
