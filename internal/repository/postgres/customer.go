package postgres

import (
	"context"
	"database/sql"

	"github.com/billrun/billrun/internal/domain/customer"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/types"
)

type customerRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewCustomerRepository(client postgres.IClient, logger *logger.Logger) customer.Repository {
	return &customerRepository{client: client, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
	INSERT INTO customers (
		id, first_name, last_name, email, phone, identification,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	)
	`

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Identification,
		c.TenantID,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
		c.CreatedBy,
		c.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to insert customer %s", c.ID).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	query := `
	SELECT id, first_name, last_name, email, phone, identification,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM customers
	WHERE id = $1 AND status = $2
	`

	var c customer.Customer
	err := r.client.Querier(ctx).GetContext(ctx, &c, query, id, types.StatusPublished)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("customer %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to get customer %s", id).
			Mark(ierr.ErrDatabase)
	}

	return &c, nil
}
