// Package testjsonl builds conversation files for tests.
package testjsonl

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Epoch is the timestamp of the first message a Builder emits.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Msg describes one message line.
type Msg struct {
	Type      string // user, assistant, system; default user
	ID        string // default: a fresh uuid
	Parent    string // empty for a root
	Sidechain bool
	Text      string
	Blocks    []string // text blocks; used instead of Text when set
	Timestamp string   // default: Epoch plus one minute per message
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type line struct {
	ParentUUID  *string `json:"parentUuid"`
	IsSidechain bool    `json:"isSidechain"`
	Type        string  `json:"type"`
	Message     message `json:"message"`
	UUID        string  `json:"uuid"`
	Timestamp   string  `json:"timestamp"`
}

// Builder accumulates lines in order.
type Builder struct {
	lines []string
	n     int
}

// New creates an empty Builder.
func New() *Builder { return &Builder{} }

// NewID returns a random message id.
func NewID() string { return uuid.NewString() }

// Message appends a message line and returns its id.
func (b *Builder) Message(m Msg) string {
	if m.Type == "" {
		m.Type = "user"
	}
	if m.ID == "" {
		m.ID = NewID()
	}
	if m.Timestamp == "" {
		m.Timestamp = Epoch.Add(time.Duration(b.n) * time.Minute).Format("2006-01-02T15:04:05.000Z")
	}
	b.n++

	l := line{IsSidechain: m.Sidechain, Type: m.Type, UUID: m.ID, Timestamp: m.Timestamp}
	if m.Parent != "" {
		p := m.Parent
		l.ParentUUID = &p
	}
	l.Message.Role = m.Type
	if m.Blocks != nil {
		blocks := make([]content, len(m.Blocks))
		for i, t := range m.Blocks {
			blocks[i] = content{Type: "text", Text: t}
		}
		l.Message.Content = blocks
	} else {
		l.Message.Content = m.Text
	}
	data, _ := json.Marshal(l)
	b.lines = append(b.lines, string(data))
	return m.ID
}

// User appends a user message with string content.
func (b *Builder) User(id, parent, text string) string {
	return b.Message(Msg{Type: "user", ID: id, Parent: parent, Text: text})
}

// Assistant appends an assistant message with string content.
func (b *Builder) Assistant(id, parent, text string) string {
	return b.Message(Msg{Type: "assistant", ID: id, Parent: parent, Text: text})
}

// Title appends a summary record.
func (b *Builder) Title(title, leafID string) *Builder {
	data, _ := json.Marshal(struct {
		Type     string `json:"type"`
		Summary  string `json:"summary"`
		LeafUUID string `json:"leafUuid"`
	}{"summary", title, leafID})
	b.lines = append(b.lines, string(data))
	return b
}

// Raw appends a line verbatim.
func (b *Builder) Raw(s string) *Builder {
	b.lines = append(b.lines, s)
	return b
}

// String returns the file content, one line per record, newline terminated.
func (b *Builder) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// Bytes returns String as a byte slice.
func (b *Builder) Bytes() []byte { return []byte(b.String()) }
