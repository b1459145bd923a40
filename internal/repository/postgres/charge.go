package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/billrun/billrun/internal/domain/charge"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/types"
)

type chargeRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewChargeRepository(client postgres.IClient, logger *logger.Logger) charge.Repository {
	return &chargeRepository{client: client, logger: logger}
}

func (r *chargeRepository) Create(ctx context.Context, c *charge.AdditionalCharge) error {
	query := `
	INSERT INTO additional_charges (
		id, customer_id, subscription_id, concept, description, value,
		applied, roll_to_next_invoice, invoice_id, applied_at, applied_month, applied_year,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
	)
	`

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		c.ID,
		c.CustomerID,
		c.SubscriptionID,
		c.Concept,
		c.Description,
		c.Value,
		c.Applied,
		c.RollToNextInvoice,
		c.InvoiceID,
		c.AppliedAt,
		c.AppliedMonth,
		c.AppliedYear,
		c.TenantID,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
		c.CreatedBy,
		c.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to insert additional charge %s", c.ID).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *chargeRepository) Get(ctx context.Context, id string) (*charge.AdditionalCharge, error) {
	query := `
	SELECT id, customer_id, subscription_id, concept, description, value,
		applied, roll_to_next_invoice, invoice_id, applied_at, applied_month, applied_year,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM additional_charges
	WHERE id = $1 AND status = $2
	`

	var c charge.AdditionalCharge
	err := r.client.Querier(ctx).GetContext(ctx, &c, query, id, types.StatusPublished)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("additional charge %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to get additional charge %s", id).
			Mark(ierr.ErrDatabase)
	}

	return &c, nil
}

func (r *chargeRepository) ListPendingForCustomer(ctx context.Context, tenantID, customerID string) ([]*charge.AdditionalCharge, error) {
	query := `
	SELECT id, customer_id, subscription_id, concept, description, value,
		applied, roll_to_next_invoice, invoice_id, applied_at, applied_month, applied_year,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM additional_charges
	WHERE tenant_id = $1 AND customer_id = $2
		AND applied = false AND roll_to_next_invoice = true
		AND status = $3
	ORDER BY id ASC
	`

	charges := make([]*charge.AdditionalCharge, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &charges, query,
		tenantID, customerID, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to list pending charges for customer %s", customerID).
			Mark(ierr.ErrDatabase)
	}

	return charges, nil
}

func (r *chargeRepository) MarkApplied(ctx context.Context, id, invoiceID string, month, year int) error {
	// applied=false in the predicate makes application idempotent: a charge
	// consumed by an earlier invoice is never consumed again
	query := `
	UPDATE additional_charges
	SET applied = true,
		invoice_id = $2,
		applied_at = $3,
		applied_month = $4,
		applied_year = $5,
		updated_at = $3
	WHERE id = $1 AND applied = false
	`

	result, err := r.client.Querier(ctx).ExecContext(ctx, query,
		id, invoiceID, time.Now().UTC(), month, year)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to mark charge %s applied", id).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewErrorf("charge %s is already applied", id).
			Mark(ierr.ErrInvalidOperation)
	}

	return nil
}
