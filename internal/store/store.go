// Package store reads and writes conversation files as ordered record sequences.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/psaban20/claude-conversation-manager/internal/model"
)

var (
	// ErrMissingFile is returned when the conversation file does not exist.
	ErrMissingFile = errors.New("missing file")
	// ErrPermissionDenied is returned when the file cannot be opened.
	ErrPermissionDenied = errors.New("permission denied")
)

// WriteError reports a failed write. The target file is untouched; TempPath,
// when set, names the partial temp file left behind for inspection.
type WriteError struct {
	Path     string
	TempPath string
	Err      error
}

func (e *WriteError) Error() string {
	if e.TempPath != "" {
		return fmt.Sprintf("write %s (temp file %s): %v", e.Path, e.TempPath, e.Err)
	}
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store defines the record store interface.
type Store interface {
	// Read returns the records of the file at path, in file order.
	Read(ctx context.Context, path string) ([]model.Record, error)

	// Write replaces the file at path with records. Readers see either the
	// old or the new content, never a mix.
	Write(ctx context.Context, path string, records []model.Record) error
}

// classify maps filesystem errors onto the store's sentinel errors.
func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w: %w", op, path, ErrMissingFile, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s %s: %w: %w", op, path, ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
