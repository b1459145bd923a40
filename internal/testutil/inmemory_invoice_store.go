package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/billrun/billrun/internal/domain/invoice"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/types"
)

type InMemoryInvoiceStore struct {
	mu        sync.RWMutex
	invoices  map[string]*invoice.Invoice
	createErr error
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
	}
}

// SetCreateError makes every subsequent CreateWithLineItems fail with err.
// Pass nil to clear the injection.
func (s *InMemoryInvoiceStore) SetCreateError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = err
}

func (s *InMemoryInvoiceStore) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.invoices[inv.ID]; exists {
		return ierr.NewErrorf("invoice %s already exists", inv.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.invoices[inv.ID] = inv
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, exists := s.invoices[id]; exists {
		return inv, nil
	}
	return nil, ierr.NewErrorf("invoice %s not found", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryInvoiceStore) ExistsForPeriod(ctx context.Context, subscriptionID string, start, end time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invoices {
		if inv.SubscriptionID == subscriptionID &&
			!inv.BillingDate.Before(start) && !inv.BillingDate.After(end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryInvoiceStore) CountByBillingDate(ctx context.Context, billingDate time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := types.DayBounds(billingDate)
	count := 0
	for _, inv := range s.invoices {
		if !inv.BillingDate.Before(start) && !inv.BillingDate.After(end) {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryInvoiceStore) ListUnrendered(ctx context.Context, start, end time.Time, afterID string, limit int) ([]*invoice.Invoice, error) {
	return s.listPage(start, end, afterID, limit, func(inv *invoice.Invoice) bool {
		return !inv.HasPDF()
	})
}

func (s *InMemoryInvoiceStore) ListUnsent(ctx context.Context, start, end time.Time, afterID string, limit int) ([]*invoice.Invoice, error) {
	return s.listPage(start, end, afterID, limit, func(inv *invoice.Invoice) bool {
		return inv.HasPDF() && !inv.EmailSent
	})
}

func (s *InMemoryInvoiceStore) listPage(start, end time.Time, afterID string, limit int, match func(*invoice.Invoice) bool) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if inv.ID > afterID && match(inv) &&
			!inv.BillingDate.Before(start) && !inv.BillingDate.After(end) {
			result = append(result, inv)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) UpdatePaymentLink(ctx context.Context, id, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, exists := s.invoices[id]
	if !exists {
		return ierr.NewErrorf("invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}

	inv.PaymentLink = &link
	return nil
}

func (s *InMemoryInvoiceStore) UpdatePDFURL(ctx context.Context, id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, exists := s.invoices[id]
	if !exists {
		return ierr.NewErrorf("invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	if inv.HasPDF() {
		return ierr.NewErrorf("invoice %s already has a pdf", id).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.PDFURL = &url
	return nil
}

func (s *InMemoryInvoiceStore) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, exists := s.invoices[id]
	if !exists {
		return ierr.NewErrorf("invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	if inv.EmailSent {
		return ierr.NewErrorf("invoice %s email is already sent", id).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.EmailSent = true
	inv.EmailSentAt = &sentAt
	return nil
}

func (s *InMemoryInvoiceStore) MarkDelinquent(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := types.StartOfDay(now)
	count := 0
	for _, inv := range s.invoices {
		if inv.InvoiceStatus == types.InvoiceStatusPending && inv.BillingDate.Before(cutoff) {
			inv.InvoiceStatus = types.InvoiceStatusDelinquent
			count++
		}
	}
	return count, nil
}

func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]*invoice.Invoice)
	s.createErr = nil
}
