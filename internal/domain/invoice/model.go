package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/types"
)

// Invoice represents a billing record for one subscription for one billing cycle
type Invoice struct {
	ID                     string              `db:"id" json:"id"`
	CustomerID             string              `db:"customer_id" json:"customer_id"`
	SubscriptionID         string              `db:"subscription_id" json:"subscription_id"`
	BillingDate            time.Time           `db:"billing_date" json:"billing_date"`
	TotalValue             decimal.Decimal     `db:"total_value" json:"total_value"`
	PackageValue           decimal.Decimal     `db:"package_value" json:"package_value"`
	AdditionalChargesValue decimal.Decimal     `db:"additional_charges_value" json:"additional_charges_value"`
	InvoiceStatus          types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	PDFURL                 *string             `db:"pdf_url" json:"pdf_url,omitempty"`
	EmailSent              bool                `db:"email_sent" json:"email_sent"`
	EmailSentAt            *time.Time          `db:"email_sent_at" json:"email_sent_at,omitempty"`
	PaymentLink            *string             `db:"payment_link" json:"payment_link,omitempty"`
	Notes                  string              `db:"notes" json:"notes,omitempty"`
	LineItems              []*LineItem         `json:"line_items,omitempty"`
	types.BaseModel
}

// LineItem is a snapshot of a subscription service line at generation time
type LineItem struct {
	ID            string          `db:"id" json:"id"`
	InvoiceID     string          `db:"invoice_id" json:"invoice_id"`
	Name          string          `db:"name" json:"name"`
	OriginalValue decimal.Decimal `db:"original_value" json:"original_value"`
	AgreedValue   decimal.Decimal `db:"agreed_value" json:"agreed_value"`
	types.BaseModel
}

// Validate enforces the invoice amount invariants
func (i *Invoice) Validate() error {
	if i.TotalValue.IsNegative() {
		return ierr.NewError("total_value must be non negative").
			WithHint("invoice amounts must be non negative").
			Mark(ierr.ErrValidation)
	}
	if i.PackageValue.IsNegative() {
		return ierr.NewError("package_value must be non negative").
			WithHint("invoice amounts must be non negative").
			Mark(ierr.ErrValidation)
	}
	if i.AdditionalChargesValue.IsNegative() {
		return ierr.NewError("additional_charges_value must be non negative").
			WithHint("invoice amounts must be non negative").
			Mark(ierr.ErrValidation)
	}
	if !i.TotalValue.Equal(i.PackageValue.Add(i.AdditionalChargesValue)) {
		return ierr.NewError("total_value must equal package_value plus additional_charges_value").
			WithReportableDetails(map[string]any{
				"total_value":              i.TotalValue,
				"package_value":            i.PackageValue,
				"additional_charges_value": i.AdditionalChargesValue,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// HasPDF reports whether the PDF has already been rendered for this invoice
func (i *Invoice) HasPDF() bool {
	return i.PDFURL != nil && *i.PDFURL != ""
}
