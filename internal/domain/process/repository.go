package process

import (
	"context"

	"github.com/billrun/billrun/internal/types"
)

// Repository provides access to generation run audit storage
type Repository interface {
	Create(ctx context.Context, p *Process) error
	Get(ctx context.Context, id string) (*Process, error)

	// Complete closes the run with a terminal status, the observed created
	// count and optional notes. Implementations must only transition runs that
	// are still IN_PROGRESS; a terminal run is never mutated.
	Complete(ctx context.Context, id string, status types.ProcessStatus, createdCount int, notes string) error
}
