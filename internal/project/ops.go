package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/psaban20/claude-conversation-manager/internal/ledger"
)

var (
	// ErrExists is returned when an operation would overwrite a file.
	ErrExists = errors.New("destination already exists")
	// ErrNotRestorable is returned for ledger entries that cannot be undone.
	ErrNotRestorable = errors.New("operation cannot be restored")
)

// TrashDir is the directory under the archive root that soft deletes move
// files into.
const TrashDir = ".trash"

// Manager moves conversation files between projects, the archive and the
// trash, journaling every move in a ledger.
type Manager struct {
	dir         Dir
	ledger      ledger.Ledger
	projectsDir string
	archiveDir  string
	log         *slog.Logger
}

// NewManager creates a Manager.
func NewManager(d Dir, l ledger.Ledger, projectsDir, archiveDir string, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		dir:         d,
		ledger:      l,
		projectsDir: projectsDir,
		archiveDir:  archiveDir,
		log:         log.With("comp", "project"),
	}
}

// Archive moves the conversation at path into the archive, under its
// project's name.
func (m *Manager) Archive(ctx context.Context, path string) (*ledger.Entry, error) {
	dest := filepath.Join(m.archiveDir, projectOf(path), filepath.Base(path))
	return m.relocate(ctx, ledger.OpArchive, path, dest)
}

// Move moves the conversation at path into another project. target is a
// project directory name, or a working directory path that is encoded with
// NameForPath. The project directory is created if needed.
func (m *Manager) Move(ctx context.Context, path, target string) (*ledger.Entry, error) {
	if target == "" {
		return nil, errors.New("move: target project is required")
	}
	name := target
	if strings.ContainsAny(target, `/\:`) {
		name = NameForPath(target)
	}
	dest := filepath.Join(m.projectsDir, name, filepath.Base(path))
	if dest == filepath.Clean(path) {
		return nil, fmt.Errorf("move %s: already in project %s", path, name)
	}
	return m.relocate(ctx, ledger.OpMove, path, dest)
}

// Delete moves the conversation at path into the trash. With hard set the
// file is removed and the operation cannot be restored.
func (m *Manager) Delete(ctx context.Context, path string, hard bool) (*ledger.Entry, error) {
	if !hard {
		dest := filepath.Join(m.archiveDir, TrashDir, projectOf(path), filepath.Base(path))
		return m.relocate(ctx, ledger.OpDelete, path, dest)
	}
	if err := m.checkConversation(path); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if err := m.dir.Remove(path); err != nil {
		return nil, fmt.Errorf("delete %s: %w", path, err)
	}
	m.log.Info("deleted", "path", path)
	return m.ledger.Record(ctx, ledger.OpDelete, path, "")
}

// Restore moves the file of a journaled operation back to where it was.
func (m *Manager) Restore(ctx context.Context, id string) (*ledger.Entry, error) {
	e, err := m.ledger.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	switch {
	case e.Op == ledger.OpRestore:
		return nil, fmt.Errorf("restore %s: %w: entry is itself a restore", id, ErrNotRestorable)
	case e.Dest == "":
		return nil, fmt.Errorf("restore %s: %w: file was removed", id, ErrNotRestorable)
	case e.RestoredAt != nil:
		return nil, fmt.Errorf("restore %s: %w: already restored", id, ErrNotRestorable)
	}

	if err := m.move(e.Dest, e.Source); err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	if err := m.ledger.MarkRestored(ctx, id); err != nil {
		return nil, fmt.Errorf("restore %s: %w", id, err)
	}
	m.log.Info("restored", "id", id, "path", e.Source)
	return m.ledger.Record(ctx, ledger.OpRestore, e.Dest, e.Source)
}

func (m *Manager) relocate(ctx context.Context, op ledger.Op, from, to string) (*ledger.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.checkConversation(from); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.move(from, to); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.log.Info(string(op), "from", from, "to", to)
	return m.ledger.Record(ctx, op, from, to)
}

func (m *Manager) checkConversation(path string) error {
	if !strings.HasSuffix(path, Ext) {
		return fmt.Errorf("%s: not a conversation file", path)
	}
	info, err := m.dir.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s: is a directory", path)
	}
	return nil
}

// move renames from to to, creating to's directory. It never overwrites.
func (m *Manager) move(from, to string) error {
	if _, err := m.dir.Stat(to); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, to)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := m.dir.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(to), err)
	}
	if err := m.dir.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s: %w", from, err)
	}
	return nil
}

func projectOf(path string) string {
	return filepath.Base(filepath.Dir(path))
}
