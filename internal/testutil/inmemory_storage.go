package testutil

import (
	"context"
	"path"
	"sync"

	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/storage"
)

var _ storage.Storage = (*InMemoryStorage)(nil)

// InMemoryStorage keeps saved files in a map keyed by full path
type InMemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewInMemoryStorage creates an empty in-memory storage
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		files: make(map[string][]byte),
	}
}

func (s *InMemoryStorage) Save(ctx context.Context, data []byte, basePath, fileName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullPath := path.Join(basePath, fileName)
	s.files[fullPath] = append([]byte(nil), data...)
	return fullPath, nil
}

func (s *InMemoryStorage) Read(ctx context.Context, fullPath string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if data, ok := s.files[fullPath]; ok {
		return append([]byte(nil), data...), nil
	}
	return nil, ierr.NewErrorf("file %s does not exist", fullPath).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryStorage) EnsureDirectory(ctx context.Context, basePath string) error {
	return nil
}

// Put seeds a file at the given full path
func (s *InMemoryStorage) Put(fullPath string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[fullPath] = append([]byte(nil), data...)
}

// Clear removes all files
func (s *InMemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}
