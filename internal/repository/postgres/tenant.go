package postgres

import (
	"context"
	"database/sql"

	"github.com/billrun/billrun/internal/domain/tenant"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
)

type tenantRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewTenantRepository(client postgres.IClient, logger *logger.Logger) tenant.Repository {
	return &tenantRepository{client: client, logger: logger}
}

func (r *tenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `
	INSERT INTO tenants (
		id, name, tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	)
	`

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.TenantID,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
		t.CreatedBy,
		t.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to insert tenant %s", t.ID).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *tenantRepository) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	query := `
	SELECT id, name, tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM tenants
	WHERE id = $1
	`

	var t tenant.Tenant
	err := r.client.Querier(ctx).GetContext(ctx, &t, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("tenant %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to get tenant %s", id).
			Mark(ierr.ErrDatabase)
	}

	return &t, nil
}
