package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/psaban20/claude-conversation-manager/internal/model"
)

// Parse splits data into one record per line. It never fails: lines that
// cannot be read as a message or title record are kept as KindOther.
func Parse(data []byte) []model.Record {
	var records []model.Record
	n := 0
	for len(data) > 0 {
		n++
		var raw []byte
		eol := ""
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			raw, data = data[:i], data[i+1:]
			eol = "\n"
			if l := len(raw); l > 0 && raw[l-1] == '\r' {
				raw = raw[:l-1]
				eol = "\r\n"
			}
		} else {
			raw, data = data, nil
		}
		records = append(records, parseLine(n, raw, eol))
	}
	return records
}

// Encode is the inverse of Parse.
func Encode(records []model.Record) []byte {
	size := 0
	for _, r := range records {
		size += len(r.Raw) + len(r.EOL)
	}
	buf := make([]byte, 0, size)
	for _, r := range records {
		buf = append(buf, r.Raw...)
		buf = append(buf, r.EOL...)
	}
	return buf
}

func parseLine(n int, raw []byte, eol string) model.Record {
	rec := model.Record{Kind: model.KindOther, Line: n, Raw: raw, EOL: eol}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return rec
	}
	if !gjson.ValidBytes(trimmed) {
		rec.Malformed = "invalid json"
		return rec
	}
	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		rec.Malformed = "not a json object"
		return rec
	}

	typ := doc.Get("type").String()
	switch {
	case model.MessageRoles[typ]:
		msg, err := parseMessage(doc, typ)
		if err != nil {
			rec.Malformed = err.Error()
			return rec
		}
		rec.Kind = model.KindMessage
		rec.Message = msg
	case typ == model.TitleType:
		leaf := doc.Get("leafUuid")
		if leaf.Type != gjson.String || leaf.Str == "" {
			rec.Malformed = "summary record without leafUuid"
			return rec
		}
		rec.Kind = model.KindTitle
		rec.Title = &model.TitleRecord{Title: doc.Get("summary").String(), LeafID: leaf.Str}
	}
	return rec
}

func parseMessage(doc gjson.Result, typ string) (*model.Message, error) {
	id := doc.Get("uuid")
	if id.Type != gjson.String || id.Str == "" {
		return nil, fmt.Errorf("%s record without uuid", typ)
	}
	msg := &model.Message{
		ID:          id.Str,
		Role:        typ,
		IsSidechain: doc.Get("isSidechain").Bool(),
		Timestamp:   doc.Get("timestamp").String(),
	}
	switch parent := doc.Get("parentUuid"); parent.Type {
	case gjson.String:
		msg.ParentID = parent.Str
	case gjson.Null:
	default:
		return nil, fmt.Errorf("%s %s: parentUuid is not a string", typ, id.Str)
	}

	content := doc.Get("message.content")
	switch {
	case content.Type == gjson.String:
		msg.Texts = []string{content.Str}
		msg.StringContent = true
	case content.IsArray():
		content.ForEach(func(_, block gjson.Result) bool {
			if block.Get("type").String() == "text" {
				msg.Texts = append(msg.Texts, block.Get("text").String())
			}
			return true
		})
	}
	return msg, nil
}

// Style is the separator convention of a file's JSON lines.
type Style struct {
	KV  string // between key and value
	Sep string // between members
}

// CompactStyle is the style of files written by the conversation logger.
var CompactStyle = Style{KV: ":", Sep: ","}

var (
	kvRe  = regexp.MustCompile(`^[ \t]*:[ \t]*$`)
	sepRe = regexp.MustCompile(`^[ \t]*,[ \t]*$`)
)

// DetectStyle returns the style of the first message or title line that has
// at least two members, falling back to CompactStyle.
func DetectStyle(records []model.Record) Style {
	for _, r := range records {
		if r.Kind == model.KindOther {
			continue
		}
		if st, ok := styleOf(bytes.TrimSpace(r.Raw)); ok {
			return st
		}
	}
	return CompactStyle
}

func styleOf(raw []byte) (Style, bool) {
	var st Style
	prevEnd := -1
	gjson.ParseBytes(raw).ForEach(func(key, value gjson.Result) bool {
		if st.KV == "" {
			st.KV = string(raw[key.Index+len(key.Raw) : value.Index])
		}
		if prevEnd >= 0 {
			st.Sep = string(raw[prevEnd:key.Index])
			return false
		}
		prevEnd = value.Index + len(value.Raw)
		return true
	})
	if !kvRe.MatchString(st.KV) || !sepRe.MatchString(st.Sep) {
		return Style{}, false
	}
	return st, true
}

// NewTitleRecord builds a title record line in the given style.
func NewTitleRecord(st Style, title, leafID string) model.Record {
	var b bytes.Buffer
	b.WriteString(`{"type"`)
	b.WriteString(st.KV)
	b.WriteString(`"summary"`)
	b.WriteString(st.Sep)
	b.WriteString(`"summary"`)
	b.WriteString(st.KV)
	b.Write(quote(title))
	b.WriteString(st.Sep)
	b.WriteString(`"leafUuid"`)
	b.WriteString(st.KV)
	b.Write(quote(leafID))
	b.WriteString("}")
	return model.Record{
		Kind:  model.KindTitle,
		Raw:   b.Bytes(),
		EOL:   "\n",
		Title: &model.TitleRecord{Title: title, LeafID: leafID},
	}
}

// SetTitle returns a copy of rec with its summary field replaced. Every other
// member keeps its position and bytes.
func SetTitle(rec model.Record, title string) (model.Record, error) {
	if rec.Kind != model.KindTitle {
		return rec, fmt.Errorf("line %d: not a title record", rec.Line)
	}
	raw, err := sjson.SetRawBytes(append([]byte(nil), rec.Raw...), "summary", quote(title))
	if err != nil {
		return rec, fmt.Errorf("line %d: set summary: %w", rec.Line, err)
	}
	out := rec
	out.Raw = raw
	out.Title = &model.TitleRecord{Title: title, LeafID: rec.Title.LeafID}
	return out, nil
}

func quote(s string) []byte {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimRight(b.Bytes(), "\n")
}
