package model

// Branch is a root-to-leaf path through the message tree.
type Branch struct {
	LeafID       string   `json:"leaf_uuid"`
	Path         []string `json:"path"` // message ids, root first
	Timestamp    string   `json:"timestamp"`
	MessageCount int      `json:"message_count"`
	CurrentTitle string   `json:"title"`
	IsTitled     bool     `json:"titled"`
	Truncated    bool     `json:"truncated,omitempty"` // ancestry ran into a cycle
}

// WarningCode identifies the kind of a health warning.
type WarningCode string

const (
	WarnCyclicReference WarningCode = "cyclic_reference"
	WarnSidechainOnly   WarningCode = "sidechain_only"
	WarnOrphanFile      WarningCode = "orphan_file"
	WarnMalformedRecord WarningCode = "malformed_record"
	WarnStaleTitle      WarningCode = "stale_title"
)

// Warning is a non-fatal finding surfaced in a report.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	IDs     []string    `json:"ids,omitempty"`
	Lines   []int       `json:"lines,omitempty"`
}

// Summary aggregates the title state of a file's branches.
type Summary struct {
	BranchCount   int       `json:"branch_count"`
	TitledCount   int       `json:"titled_count"`
	UntitledCount int       `json:"untitled_count"`
	Warnings      []Warning `json:"warnings,omitempty"`
}

// Healthy reports whether every branch carries a title.
func (s Summary) Healthy() bool {
	return s.UntitledCount == 0
}

// Has reports whether a warning with the given code is present.
func (s Summary) Has(code WarningCode) bool {
	for _, w := range s.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Report is the read-only analysis of one conversation file.
type Report struct {
	Path          string   `json:"path"`
	SessionID     string   `json:"session_id"`
	TotalMessages int      `json:"total_messages"`
	DisplayName   string   `json:"display_name"`
	Branches      []Branch `json:"branches"`
	Summary       Summary  `json:"summary"`
}

// RenameResult describes the outcome of a rename.
type RenameResult struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Branches int    `json:"branches"`
	Updated  int    `json:"updated"`  // title records rewritten in place
	Appended int    `json:"appended"` // title records added
	Written  bool   `json:"written"`
}
