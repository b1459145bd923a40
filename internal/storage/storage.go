package storage

import (
	"context"

	"github.com/billrun/billrun/internal/config"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/types"
)

// Storage abstracts where rendered documents live. Callers never build
// backend-specific paths; they pass a base path and file name and keep the
// full path Save returns.
type Storage interface {
	// Save writes data under basePath/fileName and returns the full path
	Save(ctx context.Context, data []byte, basePath, fileName string) (string, error)
	// Read loads a previously saved file by its full path
	Read(ctx context.Context, fullPath string) ([]byte, error)
	// EnsureDirectory makes sure basePath exists and is writable
	EnsureDirectory(ctx context.Context, basePath string) error
}

// NewStorage builds the backend selected by configuration
func NewStorage(cfg *config.Configuration, log *logger.Logger) (Storage, error) {
	switch cfg.Storage.Backend {
	case types.StorageBackendFilesystem:
		return NewFilesystemStorage(cfg.Storage.BasePath, log), nil
	case types.StorageBackendS3:
		return NewS3Storage(&cfg.Storage.S3, log)
	default:
		return nil, ierr.NewErrorf("unknown storage backend: %s", cfg.Storage.Backend).
			WithHint("valid backends are filesystem and s3").
			Mark(ierr.ErrValidation)
	}
}
