package invoice

import (
	"context"
	"time"
)

// Repository provides access to invoice storage
type Repository interface {
	// CreateWithLineItems persists the invoice and its line items together
	CreateWithLineItems(ctx context.Context, inv *Invoice) error

	Get(ctx context.Context, id string) (*Invoice, error)

	// ExistsForPeriod reports whether the subscription already has an invoice
	// with a billing date inside [start, end]. This is the double-billing guard.
	ExistsForPeriod(ctx context.Context, subscriptionID string, start, end time.Time) (bool, error)

	// CountByBillingDate counts invoices billed exactly on the given date
	CountByBillingDate(ctx context.Context, billingDate time.Time) (int, error)

	// ListUnrendered returns invoices in the billing window that have no PDF
	// yet, with id > afterID, ordered by id ascending, at most limit rows
	ListUnrendered(ctx context.Context, start, end time.Time, afterID string, limit int) ([]*Invoice, error)

	// ListUnsent returns invoices in the billing window that have a PDF but no
	// email sent yet, with id > afterID, ordered by id ascending
	ListUnsent(ctx context.Context, start, end time.Time, afterID string, limit int) ([]*Invoice, error)

	// UpdatePaymentLink persists the payment link issued for the invoice
	UpdatePaymentLink(ctx context.Context, id, link string) error

	// UpdatePDFURL persists the rendered PDF location. The field is write-once;
	// implementations only update rows where pdf_url is still null.
	UpdatePDFURL(ctx context.Context, id, url string) error

	// MarkEmailSent stamps the email delivery. Write-once like UpdatePDFURL.
	MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error

	// MarkDelinquent transitions every PENDING invoice with billing_date before
	// now to DELINQUENT and returns the number of affected rows
	MarkDelinquent(ctx context.Context, now time.Time) (int, error)
}
