package storage

import (
	"context"
	"os"
	"path/filepath"

	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
)

// FilesystemStorage keeps documents on local disk. Relative base paths are
// resolved against the configured root so templates can carry portable paths.
type FilesystemStorage struct {
	root   string
	logger *logger.Logger
}

// NewFilesystemStorage creates a filesystem backed storage rooted at root
func NewFilesystemStorage(root string, log *logger.Logger) *FilesystemStorage {
	return &FilesystemStorage{
		root:   root,
		logger: log,
	}
}

func (s *FilesystemStorage) resolve(basePath string) string {
	if filepath.IsAbs(basePath) {
		return basePath
	}
	return filepath.Join(s.root, basePath)
}

// Save implements Storage
func (s *FilesystemStorage) Save(ctx context.Context, data []byte, basePath, fileName string) (string, error) {
	dir := s.resolve(basePath)
	if err := s.EnsureDirectory(ctx, basePath); err != nil {
		return "", err
	}

	fullPath := filepath.Join(dir, fileName)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", ierr.WithError(err).
			WithHintf("failed to write file %s", fullPath).
			Mark(ierr.ErrSystem)
	}

	s.logger.Debugw("saved file", "path", fullPath, "bytes", len(data))
	return fullPath, nil
}

// Read implements Storage
func (s *FilesystemStorage) Read(_ context.Context, fullPath string) ([]byte, error) {
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ierr.WithError(err).
				WithHintf("file %s does not exist", fullPath).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to read file %s", fullPath).
			Mark(ierr.ErrSystem)
	}
	return data, nil
}

// EnsureDirectory implements Storage
func (s *FilesystemStorage) EnsureDirectory(_ context.Context, basePath string) error {
	dir := s.resolve(basePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ierr.WithError(err).
			WithHintf("failed to create directory %s", dir).
			Mark(ierr.ErrSystem)
	}
	return nil
}
