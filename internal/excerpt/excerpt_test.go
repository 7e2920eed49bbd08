package excerpt

import (
	"strings"
	"testing"

	"github.com/psaban20/claude-conversation-manager/internal/model"
)

func TestShorten_Short(t *testing.T) {
	got := DefaultPolicy().Shorten("  Fix the login bug  ")
	if got != "Fix the login bug" {
		t.Errorf("expected trimmed text, got %q", got)
	}
}

func TestShorten_FirstLineOnly(t *testing.T) {
	got := DefaultPolicy().Shorten("\nRefactor parser\nand add tests")
	if got != "Refactor parser" {
		t.Errorf("expected first line, got %q", got)
	}

	p := DefaultPolicy()
	p.FirstLine = false
	p.MaxRunes = 0
	if got := p.Shorten("a\nb"); got != "a\nb" {
		t.Errorf("expected full text with FirstLine off, got %q", got)
	}
}

func TestShorten_TruncatesRunes(t *testing.T) {
	text := strings.Repeat("é", 60)
	got := DefaultPolicy().Shorten(text)
	want := strings.Repeat("é", 50) + "..."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	exact := strings.Repeat("x", 50)
	if got := DefaultPolicy().Shorten(exact); got != exact {
		t.Errorf("expected no ellipsis at exactly 50 runes, got %q", got)
	}
}

func TestTitle_SkipsIDEBlocks(t *testing.T) {
	msgs := []*model.Message{
		{Role: "assistant", Texts: []string{"ignored"}},
		{Role: "user", Texts: []string{"<ide_opened_file>main.go</ide_opened_file>", "Explain this file"}},
	}
	if got := DefaultPolicy().Title(msgs); got != "Explain this file" {
		t.Errorf("expected 'Explain this file', got %q", got)
	}
}

func TestTitle_FallsBackToFirstBlock(t *testing.T) {
	msgs := []*model.Message{
		{Role: "user", Texts: []string{"<ide_selection>x</ide_selection>"}},
	}
	if got := DefaultPolicy().Title(msgs); got != "<ide_selection>x</ide_selection>" {
		t.Errorf("expected first block, got %q", got)
	}
}

func TestTitle_StringContentUsedAsIs(t *testing.T) {
	msgs := []*model.Message{
		{Role: "user", Texts: []string{"<ide_x> hello"}, StringContent: true},
		{Role: "user", Texts: []string{"later"}, StringContent: true},
	}
	if got := DefaultPolicy().Title(msgs); got != "<ide_x> hello" {
		t.Errorf("expected string content, got %q", got)
	}
}

func TestTitle_SkipsUserMessagesWithoutText(t *testing.T) {
	msgs := []*model.Message{
		{Role: "user"}, // tool result only
		{Role: "user", Texts: []string{"Second prompt"}},
	}
	if got := DefaultPolicy().Title(msgs); got != "Second prompt" {
		t.Errorf("expected 'Second prompt', got %q", got)
	}
}

func TestTitle_Placeholder(t *testing.T) {
	msgs := []*model.Message{{Role: "assistant", Texts: []string{"hi"}}}
	if got := DefaultPolicy().Title(msgs); got != DefaultPlaceholder {
		t.Errorf("expected placeholder, got %q", got)
	}
	if got := DefaultPolicy().Title(nil); got != DefaultPlaceholder {
		t.Errorf("expected placeholder for empty branch, got %q", got)
	}
}
