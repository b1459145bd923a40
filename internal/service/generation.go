package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billrun/billrun/internal/domain/invoice"
	"github.com/billrun/billrun/internal/domain/process"
	"github.com/billrun/billrun/internal/domain/subscription"
	"github.com/billrun/billrun/internal/types"
)

const noEligibleNotes = "no eligible subscriptions found"

// GenerationResult summarizes one invoice generation run
type GenerationResult struct {
	ProcessID     string `json:"process_id"`
	EligibleCount int    `json:"eligible_count"`
	CreatedCount  int    `json:"created_count"`
	SkippedCount  int    `json:"skipped_count"`
}

// GenerationService runs the scheduled invoice generation cycle: it opens an
// audit run, creates invoices for every subscription due on the billing date
// inside one transaction, closes the run, and announces completion.
type GenerationService interface {
	GenerateForDate(ctx context.Context, billingDate time.Time) (*GenerationResult, error)
}

type generationService struct {
	ServiceParams
}

// NewGenerationService creates a GenerationService
func NewGenerationService(params ServiceParams) GenerationService {
	return &generationService{ServiceParams: params}
}

func (s *generationService) GenerateForDate(ctx context.Context, billingDate time.Time) (*GenerationResult, error) {
	billingDate = types.StartOfDay(billingDate)

	run := process.New(types.ProcessKindInvoiceGeneration, billingDate.Day())
	run.BaseModel = types.GetDefaultBaseModel(ctx)
	if err := s.ProcessRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	s.Logger.Infow("generation run opened",
		"process_id", run.ID,
		"billing_date", billingDate.Format("2006-01-02"),
	)

	subs, err := s.SubRepo.ListActive(ctx)
	if err != nil {
		s.failRun(ctx, run.ID, err)
		return nil, err
	}

	eligible := make([]*subscription.Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.IsDueOn(billingDate) {
			eligible = append(eligible, sub)
		}
	}

	result := &GenerationResult{
		ProcessID:     run.ID,
		EligibleCount: len(eligible),
	}

	if len(eligible) == 0 {
		if err := s.ProcessRepo.Complete(ctx, run.ID, types.ProcessStatusSuccess, 0, noEligibleNotes); err != nil {
			return nil, err
		}
		s.Logger.Infow("generation run closed with no eligible subscriptions", "process_id", run.ID)
		return result, nil
	}

	created := 0
	skipped := 0
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		for _, sub := range eligible {
			ok, err := s.generateForSubscription(ctx, sub, billingDate)
			if err != nil {
				return err
			}
			if ok {
				created++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		s.failRun(ctx, run.ID, err)
		return nil, err
	}

	// count from storage rather than the loop so the audit record reflects
	// what actually committed
	count, err := s.InvoiceRepo.CountByBillingDate(ctx, billingDate)
	if err != nil {
		s.Logger.Warnw("failed to count created invoices, using loop count",
			"process_id", run.ID, "error", err)
		count = created
	}

	notes := fmt.Sprintf("created %d invoices for %d eligible subscriptions", created, len(eligible))
	if err := s.ProcessRepo.Complete(ctx, run.ID, types.ProcessStatusSuccess, count, notes); err != nil {
		return nil, err
	}

	result.CreatedCount = created
	result.SkippedCount = skipped

	if err := s.EventPublisher.PublishGenerationCompleted(ctx, billingDate, created); err != nil {
		// the invoices are committed; fulfillment can be replayed by hand
		s.Logger.Errorw("failed to publish generation completed event",
			"process_id", run.ID, "error", err)
	}

	s.Logger.Infow("generation run closed",
		"process_id", run.ID,
		"eligible", len(eligible),
		"created", created,
		"skipped", skipped,
	)

	return result, nil
}

// generateForSubscription creates the invoice for one due subscription. It
// returns false without error when the subscription already has an invoice in
// the current cycle.
func (s *generationService) generateForSubscription(ctx context.Context, sub *subscription.Subscription, billingDate time.Time) (bool, error) {
	start, end := cycleBounds(sub, billingDate)

	exists, err := s.InvoiceRepo.ExistsForPeriod(ctx, sub.ID, start, end)
	if err != nil {
		return false, err
	}
	if exists {
		s.Logger.Debugw("subscription already invoiced this cycle",
			"subscription_id", sub.ID,
			"billing_date", billingDate.Format("2006-01-02"),
		)
		return false, nil
	}

	charges, err := s.ChargeRepo.ListPendingForCustomer(ctx, sub.TenantID, sub.CustomerID)
	if err != nil {
		return false, err
	}

	chargesValue := decimal.Zero
	for _, c := range charges {
		chargesValue = chargesValue.Add(c.Value)
	}

	packageValue := sub.AgreedValue
	inv := &invoice.Invoice{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		CustomerID:             sub.CustomerID,
		SubscriptionID:         sub.ID,
		BillingDate:            billingDate,
		TotalValue:             packageValue.Add(chargesValue),
		PackageValue:           packageValue,
		AdditionalChargesValue: chargesValue,
		InvoiceStatus:          types.InvoiceStatusPending,
		BaseModel:              baseModelForTenant(sub.TenantID),
	}

	for _, line := range sub.ActiveServiceLines() {
		inv.LineItems = append(inv.LineItems, &invoice.LineItem{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:     inv.ID,
			Name:          line.Name,
			OriginalValue: line.OriginalValue,
			AgreedValue:   line.AgreedValue,
			BaseModel:     baseModelForTenant(sub.TenantID),
		})
	}

	if err := s.InvoiceRepo.CreateWithLineItems(ctx, inv); err != nil {
		return false, err
	}

	for _, c := range charges {
		if err := s.ChargeRepo.MarkApplied(ctx, c.ID, inv.ID, int(billingDate.Month()), billingDate.Year()); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (s *generationService) failRun(ctx context.Context, runID string, cause error) {
	if err := s.ProcessRepo.Complete(ctx, runID, types.ProcessStatusFailed, 0, cause.Error()); err != nil {
		s.Logger.Errorw("failed to close generation run as failed",
			"process_id", runID, "error", err)
	}
}

// cycleBounds returns the double-billing guard window for the subscription's
// cycle that contains billingDate. Monthly subscriptions are guarded within
// the calendar month; N-week subscriptions within the N-week span ending on
// the billing date.
func cycleBounds(sub *subscription.Subscription, billingDate time.Time) (time.Time, time.Time) {
	switch sub.FrequencyType {
	case types.BillingFrequencyWeeks:
		n := 1
		if sub.FrequencyValue != nil && *sub.FrequencyValue > 0 {
			n = *sub.FrequencyValue
		}
		start := types.StartOfDay(billingDate.AddDate(0, 0, -(7*n - 1)))
		return start, types.EndOfDay(billingDate)
	default:
		first := time.Date(billingDate.Year(), billingDate.Month(), 1, 0, 0, 0, 0, billingDate.Location())
		last := first.AddDate(0, 1, -1)
		return first, types.EndOfDay(last)
	}
}

func baseModelForTenant(tenantID string) types.BaseModel {
	now := time.Now().UTC()
	return types.BaseModel{
		TenantID:  tenantID,
		Status:    types.StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
