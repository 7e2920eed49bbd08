// Package model defines the conversation record and branch data types.
package model

import "errors"

// ErrMalformedRecord marks a line that looked like a message or title
// record but could not be read as one. Such lines are kept as passthrough.
var ErrMalformedRecord = errors.New("malformed record")

// ErrCyclicReference marks a message whose parent chain loops back on itself.
var ErrCyclicReference = errors.New("cyclic reference")

// Kind tags the variant held by a Record.
type Kind int

const (
	KindOther Kind = iota
	KindMessage
	KindTitle
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindTitle:
		return "title"
	default:
		return "other"
	}
}

// Record is one line of a conversation file.
//
// Raw holds the line exactly as read (without its line ending) and is what
// gets written back; Message and Title are parsed views of Raw and are set
// only for their respective kinds.
type Record struct {
	Kind      Kind
	Line      int // 1-based source line; 0 for records created in memory
	Raw       []byte
	EOL       string // "\n", "\r\n", or "" for a final line without newline
	Message   *Message
	Title     *TitleRecord
	Malformed string // why a message/title-looking line fell back to KindOther
}

// Message is a conversation message linked to its parent by id.
// Texts holds the whole content when it is a plain string (StringContent),
// otherwise the text blocks in order.
type Message struct {
	ID            string   `json:"uuid"`
	ParentID      string   `json:"parentUuid,omitempty"` // empty means root
	IsSidechain   bool     `json:"isSidechain"`
	Timestamp     string   `json:"timestamp"`
	Role          string   `json:"type"`
	Texts         []string `json:"-"`
	StringContent bool     `json:"-"`
}

// TitleRecord pins a display title to a leaf message.
type TitleRecord struct {
	Title  string `json:"summary"`
	LeafID string `json:"leafUuid"`
}

// MessageRoles are the record types that form the message tree.
var MessageRoles = map[string]bool{
	"user":       true,
	"assistant":  true,
	"system":     true,
	"attachment": true,
}

// TitleType is the record type of title records.
const TitleType = "summary"
