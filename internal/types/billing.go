package types

import (
	ierr "github.com/billrun/billrun/internal/errors"
)

// BillingFrequency is the recurrence pattern of a subscription
type BillingFrequency string

const (
	BillingFrequencyMonthly BillingFrequency = "MONTHLY"
	BillingFrequencyWeeks   BillingFrequency = "WEEKS"
)

func (f BillingFrequency) Validate() error {
	switch f {
	case BillingFrequencyMonthly, BillingFrequencyWeeks:
		return nil
	default:
		return ierr.NewError("invalid billing frequency").
			WithHintf("billing frequency must be one of %s, %s", BillingFrequencyMonthly, BillingFrequencyWeeks).
			Mark(ierr.ErrValidation)
	}
}

// SubscriptionStatus is the lifecycle status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPaused    SubscriptionStatus = "PAUSED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

// InvoiceStatus is the collection status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending    InvoiceStatus = "PENDING"
	InvoiceStatusDelinquent InvoiceStatus = "DELINQUENT"
	InvoiceStatusPaid       InvoiceStatus = "PAID"
	InvoiceStatusCancelled  InvoiceStatus = "CANCELLED"
)

// TemplateTypeInvoice is the template type used for invoice PDF and email rendering.
// The type key is kept from the upstream billing system.
const TemplateTypeInvoice = "cuenta_cobro"
