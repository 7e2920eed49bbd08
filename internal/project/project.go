// Package project finds conversation files under the projects directory.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/psaban20/claude-conversation-manager/internal/model"
)

// Ext is the conversation file extension.
const Ext = ".jsonl"

// Dir is the filesystem capability the package works through.
type Dir interface {
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
	Rename(from, to string) error
	Remove(name string) error
	MkdirAll(name string, perm fs.FileMode) error
}

// OSDir implements Dir with the os package.
type OSDir struct{}

func (OSDir) ReadDir(name string) ([]fs.DirEntry, error)   { return os.ReadDir(name) }
func (OSDir) Stat(name string) (fs.FileInfo, error)        { return os.Stat(name) }
func (OSDir) Rename(from, to string) error                 { return os.Rename(from, to) }
func (OSDir) Remove(name string) error                     { return os.Remove(name) }
func (OSDir) MkdirAll(name string, perm fs.FileMode) error { return os.MkdirAll(name, perm) }

// Analyzer produces the report of one conversation file.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*model.Report, error)
}

// Project is one directory under the projects root.
type Project struct {
	Path          string         `json:"path"`
	Name          string         `json:"name"`
	Files         int            `json:"files"` // conversation files on disk
	Conversations []Conversation `json:"conversations,omitempty"`
}

// DisplayName returns the project's working directory decoded from its name.
func (p Project) DisplayName() string { return DecodeName(p.Name) }

// Unhealthy returns the number of loaded conversations with untitled branches.
func (p Project) Unhealthy() int {
	n := 0
	for _, c := range p.Conversations {
		if !c.Healthy() {
			n++
		}
	}
	return n
}

// Conversation is a conversation file and its analysis.
type Conversation struct {
	Path     string        `json:"path"`
	Size     int64         `json:"size"`
	Modified time.Time     `json:"modified"`
	Report   *model.Report `json:"report"`
}

// Healthy reports whether every branch of the conversation is titled.
func (c Conversation) Healthy() bool {
	return c.Report == nil || c.Report.Summary.Healthy()
}

// IsConversationFile reports whether name is a top-level conversation file.
// Subagent transcripts and backups are not.
func IsConversationFile(name string) bool {
	return strings.HasSuffix(name, Ext) &&
		!strings.HasPrefix(name, "agent-") &&
		!strings.HasSuffix(name, ".backup")
}

// List returns the project directories under root that hold at least one
// conversation file. A missing root yields no projects.
func List(d Dir, root string) ([]Project, error) {
	entries, err := d.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var projects []Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		files, err := conversationFiles(d, path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		projects = append(projects, Project{Path: path, Name: e.Name(), Files: len(files)})
	}
	return projects, nil
}

func conversationFiles(d Dir, dir string) ([]string, error) {
	entries, err := d.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsConversationFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// Load analyzes every conversation file of p, newest first. Files that fail
// to analyze are skipped and their errors joined into the returned error.
func Load(ctx context.Context, d Dir, a Analyzer, p *Project) error {
	files, err := conversationFiles(d, p.Path)
	if err != nil {
		return err
	}

	p.Conversations = p.Conversations[:0]
	var errs []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := d.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report, err := a.Analyze(ctx, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.Conversations = append(p.Conversations, Conversation{
			Path:     path,
			Size:     info.Size(),
			Modified: info.ModTime(),
			Report:   report,
		})
	}

	sort.SliceStable(p.Conversations, func(i, j int) bool {
		return p.Conversations[i].Modified.After(p.Conversations[j].Modified)
	})
	return errors.Join(errs...)
}

// Find returns the first project whose name or display name contains query.
func Find(projects []Project, query string) (*Project, bool) {
	for i := range projects {
		p := &projects[i]
		if strings.Contains(p.Name, query) || strings.Contains(p.DisplayName(), query) {
			return p, true
		}
	}
	return nil, false
}

// Match is a conversation found by Search.
type Match struct {
	Project      string         `json:"project"`
	Conversation Conversation   `json:"conversation"`
	Branches     []model.Branch `json:"branches"`
}

// SearchParams filters Search.
type SearchParams struct {
	Query   string
	Project string // restrict to projects matching this, like Find
	Limit   int
}

// Search loads the projects under root and returns the conversations with a
// branch whose display name contains the query, case-insensitively.
func Search(ctx context.Context, d Dir, a Analyzer, root string, p SearchParams) ([]Match, error) {
	projects, err := List(d, root)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(p.Query)

	var matches []Match
	var errs []error
	for i := range projects {
		proj := &projects[i]
		if p.Project != "" && !strings.Contains(proj.Name, p.Project) && !strings.Contains(proj.DisplayName(), p.Project) {
			continue
		}
		if err := Load(ctx, d, a, proj); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			errs = append(errs, err)
		}
		for _, c := range proj.Conversations {
			var hits []model.Branch
			for _, b := range c.Report.Branches {
				if strings.Contains(strings.ToLower(b.CurrentTitle), q) {
					hits = append(hits, b)
				}
			}
			if len(hits) == 0 {
				continue
			}
			matches = append(matches, Match{Project: proj.Name, Conversation: c, Branches: hits})
			if p.Limit > 0 && len(matches) >= p.Limit {
				return matches, errors.Join(errs...)
			}
		}
	}
	return matches, errors.Join(errs...)
}

// NameForPath returns the project directory name used for a working
// directory: every character other than a letter or digit becomes '-'.
func NameForPath(path string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '-'
	}, path)
}

// DecodeName turns a project directory name back into a readable path:
// "c--a-b" becomes "C:/a/b" and "-home-a" becomes "/home/a". Dashes that
// were part of the original path cannot be told apart and also become '/'.
func DecodeName(name string) string {
	switch {
	case len(name) > 3 && isDrive(name[0]) && name[1:3] == "--":
		return strings.ToUpper(name[:1]) + ":/" + strings.ReplaceAll(name[3:], "-", "/")
	case strings.HasPrefix(name, "-"):
		return strings.ReplaceAll(name, "-", "/")
	default:
		return name
	}
}

func isDrive(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
