package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/billrun/billrun/internal/domain/invoice"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/types"
)

type invoiceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{client: client, logger: logger}
}

const invoiceColumns = `
	id, customer_id, subscription_id, billing_date, total_value, package_value,
	additional_charges_value, invoice_status, pdf_url, email_sent, email_sent_at,
	payment_link, notes, tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	insertInvoice := `
	INSERT INTO invoices (` + invoiceColumns + `
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
	)
	`

	insertLineItem := `
	INSERT INTO invoice_line_items (
		id, invoice_id, name, original_value, agreed_value,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
	)
	`

	return r.client.WithTx(ctx, func(ctx context.Context) error {
		_, err := r.client.Querier(ctx).ExecContext(ctx, insertInvoice,
			inv.ID,
			inv.CustomerID,
			inv.SubscriptionID,
			inv.BillingDate,
			inv.TotalValue,
			inv.PackageValue,
			inv.AdditionalChargesValue,
			inv.InvoiceStatus,
			inv.PDFURL,
			inv.EmailSent,
			inv.EmailSentAt,
			inv.PaymentLink,
			inv.Notes,
			inv.TenantID,
			inv.Status,
			inv.CreatedAt,
			inv.UpdatedAt,
			inv.CreatedBy,
			inv.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHintf("failed to insert invoice %s", inv.ID).
				Mark(ierr.ErrDatabase)
		}

		for _, item := range inv.LineItems {
			_, err := r.client.Querier(ctx).ExecContext(ctx, insertLineItem,
				item.ID,
				item.InvoiceID,
				item.Name,
				item.OriginalValue,
				item.AgreedValue,
				item.TenantID,
				item.Status,
				item.CreatedAt,
				item.UpdatedAt,
				item.CreatedBy,
				item.UpdatedBy,
			)
			if err != nil {
				return ierr.WithError(err).
					WithHintf("failed to insert line item %s", item.ID).
					Mark(ierr.ErrDatabase)
			}
		}

		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + `
	FROM invoices
	WHERE id = $1 AND status = $2
	`

	var inv invoice.Invoice
	err := r.client.Querier(ctx).GetContext(ctx, &inv, query, id, types.StatusPublished)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("invoice %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to get invoice %s", id).
			Mark(ierr.ErrDatabase)
	}

	items := make([]*invoice.LineItem, 0)
	itemQuery := `
	SELECT id, invoice_id, name, original_value, agreed_value,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM invoice_line_items
	WHERE invoice_id = $1 AND status = $2
	ORDER BY id ASC
	`
	err = r.client.Querier(ctx).SelectContext(ctx, &items, itemQuery, id, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("failed to list line items for invoice %s", id).
			Mark(ierr.ErrDatabase)
	}
	inv.LineItems = items

	return &inv, nil
}

func (r *invoiceRepository) ExistsForPeriod(ctx context.Context, subscriptionID string, start, end time.Time) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM invoices
		WHERE subscription_id = $1
			AND billing_date >= $2 AND billing_date <= $3
			AND status = $4
	)
	`

	var exists bool
	err := r.client.Querier(ctx).GetContext(ctx, &exists, query,
		subscriptionID, start, end, types.StatusPublished)
	if err != nil {
		return false, ierr.WithError(err).
			WithHintf("failed to check invoices for subscription %s", subscriptionID).
			Mark(ierr.ErrDatabase)
	}

	return exists, nil
}

func (r *invoiceRepository) CountByBillingDate(ctx context.Context, billingDate time.Time) (int, error) {
	start, end := types.DayBounds(billingDate)

	query := `
	SELECT COUNT(*) FROM invoices
	WHERE billing_date >= $1 AND billing_date <= $2 AND status = $3
	`

	var count int
	err := r.client.Querier(ctx).GetContext(ctx, &count, query, start, end, types.StatusPublished)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to count invoices by billing date").
			Mark(ierr.ErrDatabase)
	}

	return count, nil
}

func (r *invoiceRepository) ListUnrendered(ctx context.Context, start, end time.Time, afterID string, limit int) ([]*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + `
	FROM invoices
	WHERE billing_date >= $1 AND billing_date <= $2
		AND pdf_url IS NULL
		AND id > $3
		AND status = $4
	ORDER BY id ASC
	LIMIT $5
	`

	invoices := make([]*invoice.Invoice, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &invoices, query,
		start, end, afterID, types.StatusPublished, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list unrendered invoices").
			Mark(ierr.ErrDatabase)
	}

	return invoices, nil
}

func (r *invoiceRepository) ListUnsent(ctx context.Context, start, end time.Time, afterID string, limit int) ([]*invoice.Invoice, error) {
	query := `
	SELECT ` + invoiceColumns + `
	FROM invoices
	WHERE billing_date >= $1 AND billing_date <= $2
		AND pdf_url IS NOT NULL
		AND email_sent = false
		AND id > $3
		AND status = $4
	ORDER BY id ASC
	LIMIT $5
	`

	invoices := make([]*invoice.Invoice, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &invoices, query,
		start, end, afterID, types.StatusPublished, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list unsent invoices").
			Mark(ierr.ErrDatabase)
	}

	return invoices, nil
}

func (r *invoiceRepository) UpdatePaymentLink(ctx context.Context, id, link string) error {
	query := `
	UPDATE invoices
	SET payment_link = $2, updated_at = $3
	WHERE id = $1
	`

	_, err := r.client.Querier(ctx).ExecContext(ctx, query, id, link, time.Now().UTC())
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to update payment link for invoice %s", id).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *invoiceRepository) UpdatePDFURL(ctx context.Context, id, url string) error {
	// pdf_url is write-once; a concurrent rendering of the same invoice loses
	query := `
	UPDATE invoices
	SET pdf_url = $2, updated_at = $3
	WHERE id = $1 AND pdf_url IS NULL
	`

	result, err := r.client.Querier(ctx).ExecContext(ctx, query, id, url, time.Now().UTC())
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to update pdf url for invoice %s", id).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewErrorf("invoice %s already has a pdf", id).
			Mark(ierr.ErrInvalidOperation)
	}

	return nil
}

func (r *invoiceRepository) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `
	UPDATE invoices
	SET email_sent = true, email_sent_at = $2, updated_at = $2
	WHERE id = $1 AND email_sent = false
	`

	result, err := r.client.Querier(ctx).ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to mark email sent for invoice %s", id).
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewErrorf("invoice %s email is already sent", id).
			Mark(ierr.ErrInvalidOperation)
	}

	return nil
}

func (r *invoiceRepository) MarkDelinquent(ctx context.Context, now time.Time) (int, error) {
	query := `
	UPDATE invoices
	SET invoice_status = $1, updated_at = $2
	WHERE invoice_status = $3 AND billing_date < $4 AND status = $5
	`

	result, err := r.client.Querier(ctx).ExecContext(ctx, query,
		types.InvoiceStatusDelinquent,
		time.Now().UTC(),
		types.InvoiceStatusPending,
		types.StartOfDay(now),
		types.StatusPublished,
	)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to mark delinquent invoices").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}

	return int(rows), nil
}
