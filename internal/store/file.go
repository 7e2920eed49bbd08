package store

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/psaban20/claude-conversation-manager/internal/model"
)

// FileStore implements Store on the local filesystem.
type FileStore struct {
	bufSize int
}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{bufSize: 64 * 1024}
}

var _ Store = (*FileStore)(nil)

func (s *FileStore) Read(ctx context.Context, path string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify("read", path, err)
	}
	return Parse(data), nil
}

// Write writes records to a temp file next to path and renames it over path.
// On failure after the temp file exists, it is left on disk and reported in
// the returned *WriteError.
func (s *FileStore) Write(ctx context.Context, path string, records []model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: classify("create temp", dir, err)}
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		return &WriteError{Path: path, TempPath: tmpPath, Err: err}
	}

	bw := bufio.NewWriterSize(tmp, s.bufSize)
	for _, r := range records {
		if _, err := bw.Write(r.Raw); err != nil {
			return fail(err)
		}
		if _, err := bw.WriteString(r.EOL); err != nil {
			return fail(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, TempPath: tmpPath, Err: err}
	}
	if err := osReplace(tmpPath, path); err != nil {
		return &WriteError{Path: path, TempPath: tmpPath, Err: err}
	}
	_ = syncDir(dir)
	return nil
}
