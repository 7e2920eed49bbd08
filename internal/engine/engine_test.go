package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/psaban20/claude-conversation-manager/internal/model"
	"github.com/psaban20/claude-conversation-manager/internal/store"
	"github.com/psaban20/claude-conversation-manager/internal/testjsonl"
)

const path = "session-1.jsonl"

func newTestEngine(t *testing.T, content []byte) (*Engine, *store.MemStore) {
	t.Helper()
	s := store.NewMemStore()
	s.Put(path, content)
	return New(s), s
}

// forked is A -> B, A -> C with B titled "X".
func forked() []byte {
	b := testjsonl.New()
	b.User("A", "", "Plan the migration")
	b.Assistant("B", "A", "first try")
	b.Assistant("C", "A", "second try")
	b.Title("X", "B")
	return b.Bytes()
}

func TestAnalyze_Forked(t *testing.T) {
	e, _ := newTestEngine(t, forked())
	rep, err := e.Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if rep.SessionID != "session-1" {
		t.Errorf("expected session-1, got %q", rep.SessionID)
	}
	if rep.TotalMessages != 3 {
		t.Errorf("expected 3 messages, got %d", rep.TotalMessages)
	}
	s := rep.Summary
	if s.BranchCount != 2 || s.TitledCount != 1 || s.UntitledCount != 1 {
		t.Errorf("expected 2/1/1, got %d/%d/%d", s.BranchCount, s.TitledCount, s.UntitledCount)
	}
	for _, b := range rep.Branches {
		switch b.LeafID {
		case "B":
			if b.CurrentTitle != "X" {
				t.Errorf("expected B titled X, got %q", b.CurrentTitle)
			}
		case "C":
			if b.CurrentTitle != "Plan the migration" {
				t.Errorf("expected C to fall back to A's text, got %q", b.CurrentTitle)
			}
		}
	}
}

func TestRename_Forked(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEngine(t, forked())

	res, err := e.Rename(ctx, path, "Y")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !res.Written || res.Branches != 2 || res.Updated != 1 || res.Appended != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	data, _ := s.Bytes(path)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if lines[3] != `{"type":"summary","summary":"Y","leafUuid":"B"}` {
		t.Errorf("expected B's record updated in place, got %s", lines[3])
	}
	if lines[4] != `{"type":"summary","summary":"Y","leafUuid":"C"}` {
		t.Errorf("expected C's record appended, got %s", lines[4])
	}

	rep, err := e.Analyze(ctx, path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.Summary.TitledCount != rep.Summary.BranchCount {
		t.Errorf("expected every branch titled, got %d/%d", rep.Summary.TitledCount, rep.Summary.BranchCount)
	}
	for _, b := range rep.Branches {
		if b.CurrentTitle != "Y" {
			t.Errorf("branch %s: expected Y, got %q", b.LeafID, b.CurrentTitle)
		}
	}
}

func TestRename_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEngine(t, forked())

	if _, err := e.Rename(ctx, path, "Same"); err != nil {
		t.Fatalf("first rename: %v", err)
	}
	first, _ := s.Bytes(path)

	res, err := e.Rename(ctx, path, "Same")
	if err != nil {
		t.Fatalf("second rename: %v", err)
	}
	if res.Written || res.Appended != 0 || res.Updated != 0 {
		t.Errorf("expected no-op second rename, got %+v", res)
	}
	second, _ := s.Bytes(path)
	if !bytes.Equal(first, second) {
		t.Errorf("second rename changed the file:\n%s\n%s", first, second)
	}
}

func TestRename_Refusals(t *testing.T) {
	ctx := context.Background()

	e, s := newTestEngine(t, forked())
	if _, err := e.Rename(ctx, path, "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}

	orphan := testjsonl.New().Title("X", "elsewhere").Bytes()
	s.Put("orphan.jsonl", orphan)
	if _, err := e.Rename(ctx, "orphan.jsonl", "Y"); !errors.Is(err, ErrNoBranches) {
		t.Errorf("expected ErrNoBranches, got %v", err)
	}
	if got, _ := s.Bytes("orphan.jsonl"); !bytes.Equal(got, orphan) {
		t.Error("orphan file modified by refused rename")
	}

	s.Put("empty.jsonl", nil)
	if _, err := e.Rename(ctx, "empty.jsonl", "Y"); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}

	if _, err := e.Rename(ctx, "missing.jsonl", "Y"); !errors.Is(err, store.ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestAnalyze_CycleDoesNotCrash(t *testing.T) {
	b := testjsonl.New()
	b.User("R", "", "normal root")
	b.User("A", "C", "a")
	b.Assistant("B", "A", "b")
	b.User("C", "B", "c") // A's parent is its own grandchild
	b.Assistant("D", "B", "tail")

	e, _ := newTestEngine(t, b.Bytes())
	rep, err := e.Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !rep.Summary.Has(model.WarnCyclicReference) {
		t.Errorf("expected cyclic reference warning, got %+v", rep.Summary.Warnings)
	}
	if rep.Summary.BranchCount != 2 {
		t.Errorf("expected branches for R and D, got %d", rep.Summary.BranchCount)
	}
}

func TestAnalyze_EmptyAndOrphan(t *testing.T) {
	ctx := context.Background()
	e, s := newTestEngine(t, nil)

	rep, err := e.Analyze(ctx, path)
	if err != nil {
		t.Fatalf("analyze empty: %v", err)
	}
	if len(rep.Branches) != 0 || rep.DisplayName != "Unknown" {
		t.Errorf("expected no branches and Unknown name, got %+v", rep)
	}

	s.Put("orphan.jsonl", testjsonl.New().Title("X", "a").Title("Y", "b").Bytes())
	rep, err = e.Analyze(ctx, "orphan.jsonl")
	if err != nil {
		t.Fatalf("analyze orphan: %v", err)
	}
	if !rep.Summary.Has(model.WarnOrphanFile) {
		t.Errorf("expected orphan warning, got %+v", rep.Summary.Warnings)
	}
}

func TestRename_FileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p := filepath.Join(dir, "abc.jsonl")
	original := forked()
	if err := os.WriteFile(p, original, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	e := New(store.NewFileStore())
	if _, err := e.Analyze(ctx, p); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got, _ := os.ReadFile(p); !bytes.Equal(got, original) {
		t.Error("analyze modified the file")
	}

	if _, err := e.Rename(ctx, p, "On disk"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	rep, err := e.Analyze(ctx, p)
	if err != nil {
		t.Fatalf("analyze after rename: %v", err)
	}
	if rep.DisplayName != "On disk" || !rep.Summary.Healthy() {
		t.Errorf("expected healthy file named 'On disk', got %q healthy=%v", rep.DisplayName, rep.Summary.Healthy())
	}
}
