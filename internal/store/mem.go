package store

import (
	"context"
	"io/fs"
	"sync"

	"github.com/psaban20/claude-conversation-manager/internal/model"
)

// MemStore is an in-memory Store keyed by path.
type MemStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

var _ Store = (*MemStore)(nil)

// Put sets the content of path.
func (s *MemStore) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), data...)
}

// Bytes returns the content of path.
func (s *MemStore) Bytes(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	return append([]byte(nil), data...), ok
}

func (s *MemStore) Read(ctx context.Context, path string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := s.Bytes(path)
	if !ok {
		return nil, classify("read", path, fs.ErrNotExist)
	}
	return Parse(data), nil
}

func (s *MemStore) Write(ctx context.Context, path string, records []model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Put(path, Encode(records))
	return nil
}
