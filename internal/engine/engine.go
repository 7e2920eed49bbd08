// Package engine analyzes and renames conversation files.
//
// Every call re-reads the file and runs it through the same stages:
//
//	Unparsed -> Parsed -> TreeBuilt -> Resolved -> ReportReady
//	                                           \-> RenamePlanned -> Written
//
// Nothing is kept between calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/psaban20/claude-conversation-manager/internal/branch"
	"github.com/psaban20/claude-conversation-manager/internal/excerpt"
	"github.com/psaban20/claude-conversation-manager/internal/health"
	"github.com/psaban20/claude-conversation-manager/internal/model"
	"github.com/psaban20/claude-conversation-manager/internal/reconcile"
	"github.com/psaban20/claude-conversation-manager/internal/store"
	"github.com/psaban20/claude-conversation-manager/internal/tree"
)

var (
	ErrEmptyTitle = errors.New("title is empty")
	ErrEmptyFile  = errors.New("file is empty")
	ErrNoBranches = errors.New("no branches to rename")
)

// Stage is a step of one analyze or rename call.
type Stage int

const (
	Unparsed Stage = iota
	Parsed
	TreeBuilt
	Resolved
	ReportReady
	RenamePlanned
	Written
)

func (s Stage) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case TreeBuilt:
		return "tree_built"
	case Resolved:
		return "resolved"
	case ReportReady:
		return "report_ready"
	case RenamePlanned:
		return "rename_planned"
	case Written:
		return "written"
	default:
		return "unparsed"
	}
}

// Engine runs analyze and rename against a record store.
type Engine struct {
	store  store.Store
	policy excerpt.Policy
	log    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the fallback title policy.
func WithPolicy(p excerpt.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine reading and writing through s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		policy: excerpt.DefaultPolicy(),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With("comp", "engine")
	return e
}

// pass holds the state of one call.
type pass struct {
	op       string
	path     string
	stage    Stage
	records  []model.Record
	tree     *tree.Tree
	branches []model.Branch
}

func (e *Engine) advance(p *pass, s Stage) {
	p.stage = s
	e.log.Debug("stage", "op", p.op, "stage", s.String(), "path", p.path)
}

func (e *Engine) resolve(ctx context.Context, op, path string) (*pass, error) {
	p := &pass{op: op, path: path}
	records, err := e.store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	p.records = records
	e.advance(p, Parsed)

	p.tree = tree.Build(records)
	e.advance(p, TreeBuilt)

	titles := reconcile.IndexTitles(records).Current(records)
	p.branches = branch.Resolve(p.tree, titles, e.policy)
	e.advance(p, Resolved)
	return p, nil
}

// Analyze reports the branches and title health of the file at path.
func (e *Engine) Analyze(ctx context.Context, path string) (*model.Report, error) {
	p, err := e.resolve(ctx, "analyze", path)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	summary := health.Summarize(p.branches, health.Collect(p.records, p.tree, p.branches))
	for _, w := range summary.Warnings {
		e.log.Warn(w.Message, "path", path, "code", string(w.Code))
	}
	e.advance(p, ReportReady)

	branches := p.branches
	if branches == nil {
		branches = []model.Branch{}
	}
	return &model.Report{
		Path:          path,
		SessionID:     SessionID(path),
		TotalMessages: p.tree.Len(),
		DisplayName:   branch.DisplayName(p.branches),
		Branches:      branches,
		Summary:       summary,
	}, nil
}

// Rename gives every non-sidechain leaf of the file at path a title record
// carrying title. Either every leaf is titled and the file replaced, or the
// file is left as it was.
func (e *Engine) Rename(ctx context.Context, path, title string) (*model.RenameResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("rename: %w", ErrEmptyTitle)
	}
	p, err := e.resolve(ctx, "rename", path)
	if err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}
	if len(p.records) == 0 {
		return nil, fmt.Errorf("rename %s: %w", path, ErrEmptyFile)
	}
	if len(p.branches) == 0 {
		return nil, fmt.Errorf("rename %s: %w", path, ErrNoBranches)
	}

	plan := reconcile.PlanRename(p.branches, p.records, title)
	e.advance(p, RenamePlanned)
	updated, appended := plan.Counts()
	res := &model.RenameResult{
		Path:     path,
		Title:    title,
		Branches: len(p.branches),
		Updated:  updated,
		Appended: appended,
	}
	if !plan.Changes() {
		e.log.Info("title already current", "path", path, "branches", len(p.branches))
		return res, nil
	}

	out, err := reconcile.Apply(plan, p.records)
	if err != nil {
		return nil, fmt.Errorf("rename %s: %w", path, err)
	}
	if err := e.store.Write(ctx, path, out); err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}
	res.Written = true
	e.advance(p, Written)
	e.log.Info("renamed", "path", path, "updated", updated, "appended", appended)
	return res, nil
}

// SessionID returns the session id encoded in a conversation file name.
func SessionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}
