package charge

import "context"

// Repository provides access to additional charge storage
type Repository interface {
	Create(ctx context.Context, c *AdditionalCharge) error
	Get(ctx context.Context, id string) (*AdditionalCharge, error)

	// ListPendingForCustomer returns the charges waiting to roll into the
	// customer's next invoice (applied=false, roll_to_next_invoice=true)
	ListPendingForCustomer(ctx context.Context, tenantID, customerID string) ([]*AdditionalCharge, error)

	// MarkApplied stamps the charge as consumed by the given invoice. A charge
	// already applied must never be re-applied; implementations only update
	// rows where applied=false.
	MarkApplied(ctx context.Context, id, invoiceID string, month, year int) error
}
