package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/billrun/billrun/internal/domain/process"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/types"
)

type processRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewProcessRepository(client postgres.IClient, logger *logger.Logger) process.Repository {
	return &processRepository{client: client, logger: logger}
}

func (r *processRepository) Create(ctx context.Context, p *process.Process) error {
	query := `
	INSERT INTO processes (
		id, process_kind, process_status, target_day, started_at, finished_at,
		created_count, notes, tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
	)
	`

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		p.ID,
		p.ProcessKind,
		p.ProcessStatus,
		p.TargetDay,
		p.StartedAt,
		p.FinishedAt,
		p.CreatedCount,
		p.Notes,
		p.TenantID,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
		p.CreatedBy,
		p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to insert process %s", p.ID).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *processRepository) Get(ctx context.Context, id string) (*process.Process, error) {
	query := `
	SELECT id, process_kind, process_status, target_day, started_at, finished_at,
		created_count, notes, tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM processes
	WHERE id = $1
	`

	var p process.Process
	err := r.client.Querier(ctx).GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("process %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to get process %s", id).
			Mark(ierr.ErrDatabase)
	}

	return &p, nil
}

func (r *processRepository) Complete(ctx context.Context, id string, status types.ProcessStatus, createdCount int, notes string) error {
	if !status.IsTerminal() {
		return ierr.NewErrorf("process status %s is not terminal", status).
			Mark(ierr.ErrInvalidOperation)
	}

	// only an open run can be closed; a terminal run is immutable
	query := `
	UPDATE processes
	SET process_status = $2,
		created_count = $3,
		notes = $4,
		finished_at = $5,
		updated_at = $5
	WHERE id = $1 AND process_status = $6
	`

	result, err := r.client.Querier(ctx).ExecContext(ctx, query,
		id, status, createdCount, notes, time.Now().UTC(), types.ProcessStatusInProgress)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to complete process %s", id).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewErrorf("process %s is not in progress", id).
			Mark(ierr.ErrInvalidOperation)
	}

	return nil
}
