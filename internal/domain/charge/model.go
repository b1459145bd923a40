package charge

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/billrun/billrun/internal/types"
)

// AdditionalCharge is a one-off charge that may roll into the customer's next
// invoice. Once applied it is immutable and linked to exactly one invoice.
type AdditionalCharge struct {
	ID                string          `db:"id" json:"id"`
	CustomerID        string          `db:"customer_id" json:"customer_id"`
	SubscriptionID    *string         `db:"subscription_id" json:"subscription_id,omitempty"`
	Concept           string          `db:"concept" json:"concept"`
	Description       string          `db:"description" json:"description,omitempty"`
	Value             decimal.Decimal `db:"value" json:"value"`
	Applied           bool            `db:"applied" json:"applied"`
	RollToNextInvoice bool            `db:"roll_to_next_invoice" json:"roll_to_next_invoice"`
	InvoiceID         *string         `db:"invoice_id" json:"invoice_id,omitempty"`
	AppliedAt         *time.Time      `db:"applied_at" json:"applied_at,omitempty"`
	AppliedMonth      *int            `db:"applied_month" json:"applied_month,omitempty"`
	AppliedYear       *int            `db:"applied_year" json:"applied_year,omitempty"`
	types.BaseModel
}
