// Package excerpt derives fallback display titles from message text.
package excerpt

import (
	"strings"
	"unicode/utf8"

	"github.com/psaban20/claude-conversation-manager/internal/model"
)

const (
	DefaultMaxRunes    = 50
	DefaultEllipsis    = "..."
	DefaultPlaceholder = "No prompt"
)

// Policy configures how an untitled branch's display name is built.
type Policy struct {
	MaxRunes     int      `json:"max_runes"` // <= 0 disables truncation
	Ellipsis     string   `json:"ellipsis"`
	FirstLine    bool     `json:"first_line"`
	SkipPrefixes []string `json:"skip_prefixes"`
	Placeholder  string   `json:"placeholder"`
}

// DefaultPolicy returns the policy matching the conversation viewer.
func DefaultPolicy() Policy {
	return Policy{
		MaxRunes:     DefaultMaxRunes,
		Ellipsis:     DefaultEllipsis,
		FirstLine:    true,
		SkipPrefixes: []string{"<ide_"},
		Placeholder:  DefaultPlaceholder,
	}
}

// Title returns the display name of the first user message in msgs that
// carries text. Plain string content is used as is; for block content the
// first text block without a skip prefix wins, else the first text block.
func (p Policy) Title(msgs []*model.Message) string {
	for _, m := range msgs {
		if m.Role != "user" || len(m.Texts) == 0 {
			continue
		}
		if m.StringContent {
			return p.Shorten(m.Texts[0])
		}
		for _, t := range m.Texts {
			if !p.skipped(t) {
				return p.Shorten(t)
			}
		}
		return p.Shorten(m.Texts[0])
	}
	return p.Placeholder
}

// Shorten trims text, optionally keeps its first line, and truncates it to
// MaxRunes followed by Ellipsis.
func (p Policy) Shorten(text string) string {
	text = strings.TrimSpace(text)
	if p.FirstLine {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
	}
	if p.MaxRunes <= 0 || utf8.RuneCountInString(text) <= p.MaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:p.MaxRunes]) + p.Ellipsis
}

func (p Policy) skipped(text string) bool {
	for _, prefix := range p.SkipPrefixes {
		if prefix != "" && strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}
