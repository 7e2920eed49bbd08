package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/psaban20/claude-conversation-manager/internal/engine"
	"github.com/psaban20/claude-conversation-manager/internal/store"
	"github.com/psaban20/claude-conversation-manager/internal/testjsonl"
)

func writeFile(t *testing.T, path string, data []byte, mod time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if !mod.IsZero() {
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
}

func conversation(prompt string, titled bool) []byte {
	b := testjsonl.New()
	a := b.User("", "", prompt)
	leaf := b.Assistant("", a, "ok")
	if titled {
		b.Title(prompt+" (titled)", leaf)
	}
	return b.Bytes()
}

// newTestRoot lays out:
//
//	-home-me-app/   old.jsonl (titled), new.jsonl, agent-x.jsonl, new.jsonl.backup
//	c--work-site/   site.jsonl
//	empty/          notes.txt
func newTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	now := time.Now()
	app := filepath.Join(root, "-home-me-app")
	writeFile(t, filepath.Join(app, "old.jsonl"), conversation("Fix the login bug", true), now.Add(-time.Hour))
	writeFile(t, filepath.Join(app, "new.jsonl"), conversation("Add dark mode", false), now)
	writeFile(t, filepath.Join(app, "agent-x.jsonl"), conversation("subagent", false), time.Time{})
	writeFile(t, filepath.Join(app, "new.jsonl.backup"), []byte("{}\n"), time.Time{})
	writeFile(t, filepath.Join(root, "c--work-site", "site.jsonl"), conversation("Deploy the site", false), time.Time{})
	writeFile(t, filepath.Join(root, "empty", "notes.txt"), []byte("x"), time.Time{})
	writeFile(t, filepath.Join(root, "stray.jsonl"), []byte("{}\n"), time.Time{})
	return root
}

func TestList(t *testing.T) {
	root := newTestRoot(t)
	projects, err := List(OSDir{}, root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
	names := map[string]string{}
	for _, p := range projects {
		names[p.Name] = p.DisplayName()
	}
	if projects[0].Files != 2 {
		t.Errorf("expected 2 files in %s, got %d", projects[0].Name, projects[0].Files)
	}
	if names["-home-me-app"] != "/home/me/app" {
		t.Errorf("unexpected display name %q", names["-home-me-app"])
	}
	if names["c--work-site"] != "C:/work/site" {
		t.Errorf("unexpected display name %q", names["c--work-site"])
	}
}

func TestListMissingRoot(t *testing.T) {
	projects, err := List(OSDir{}, filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("expected no projects, got %d", len(projects))
	}
}

func TestLoad(t *testing.T) {
	root := newTestRoot(t)
	projects, _ := List(OSDir{}, root)
	p, ok := Find(projects, "/home/me")
	if !ok {
		t.Fatal("expected to find project by display name")
	}

	eng := engine.New(store.NewFileStore())
	if err := Load(context.Background(), OSDir{}, eng, p); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(p.Conversations))
	}
	if filepath.Base(p.Conversations[0].Path) != "new.jsonl" {
		t.Errorf("expected newest first, got %s", p.Conversations[0].Path)
	}
	if p.Conversations[0].Healthy() || !p.Conversations[1].Healthy() {
		t.Error("expected new.jsonl unhealthy and old.jsonl healthy")
	}
	if p.Unhealthy() != 1 {
		t.Errorf("expected 1 unhealthy, got %d", p.Unhealthy())
	}
	if p.Conversations[0].Size == 0 {
		t.Error("expected size to be set")
	}
}

func TestSearch(t *testing.T) {
	root := newTestRoot(t)
	eng := engine.New(store.NewFileStore())

	matches, err := Search(context.Background(), OSDir{}, eng, root, SearchParams{Query: "DARK"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Project != "-home-me-app" || len(matches[0].Branches) != 1 {
		t.Errorf("unexpected match %+v", matches[0])
	}

	matches, _ = Search(context.Background(), OSDir{}, eng, root, SearchParams{Query: "the", Project: "work"})
	if len(matches) != 1 || matches[0].Project != "c--work-site" {
		t.Errorf("expected project filter to keep only c--work-site, got %+v", matches)
	}

	matches, _ = Search(context.Background(), OSDir{}, eng, root, SearchParams{Query: "the", Limit: 1})
	if len(matches) != 1 {
		t.Errorf("expected limit 1, got %d", len(matches))
	}
}

func TestIsConversationFile(t *testing.T) {
	cases := map[string]bool{
		"abc.jsonl":        true,
		"agent-abc.jsonl":  false,
		"abc.jsonl.backup": false,
		"abc.json":         false,
	}
	for name, want := range cases {
		if got := IsConversationFile(name); got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
}

func TestNameForPath(t *testing.T) {
	cases := map[string]string{
		"/home/me/my_app":  "-home-me-my-app",
		`C:\Users\me\site`: "C--Users-me-site",
		"/srv/caf\u00e9":   "-srv-caf-",
	}
	for in, want := range cases {
		if got := NameForPath(in); got != want {
			t.Errorf("%s: expected %q, got %q", in, want, got)
		}
	}
}

func TestDecodeName(t *testing.T) {
	cases := map[string]string{
		"c--a-b":  "C:/a/b",
		"D--x":    "D:/x",
		"-home-a": "/home/a",
		"plain":   "plain",
	}
	for in, want := range cases {
		if got := DecodeName(in); got != want {
			t.Errorf("%s: expected %q, got %q", in, want, got)
		}
	}
}
