package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/billrun/billrun/internal/domain/charge"
	ierr "github.com/billrun/billrun/internal/errors"
)

type InMemoryChargeStore struct {
	mu      sync.RWMutex
	charges map[string]*charge.AdditionalCharge
}

func NewInMemoryChargeStore() *InMemoryChargeStore {
	return &InMemoryChargeStore{
		charges: make(map[string]*charge.AdditionalCharge),
	}
}

func (s *InMemoryChargeStore) Create(ctx context.Context, c *charge.AdditionalCharge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.charges[c.ID]; exists {
		return ierr.NewErrorf("charge %s already exists", c.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.charges[c.ID] = c
	return nil
}

func (s *InMemoryChargeStore) Get(ctx context.Context, id string) (*charge.AdditionalCharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, exists := s.charges[id]; exists {
		return c, nil
	}
	return nil, ierr.NewErrorf("charge %s not found", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryChargeStore) ListPendingForCustomer(ctx context.Context, tenantID, customerID string) ([]*charge.AdditionalCharge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	charges := make([]*charge.AdditionalCharge, 0)
	for _, c := range s.charges {
		if c.TenantID == tenantID && c.CustomerID == customerID &&
			!c.Applied && c.RollToNextInvoice {
			charges = append(charges, c)
		}
	}

	sort.Slice(charges, func(i, j int) bool { return charges[i].ID < charges[j].ID })
	return charges, nil
}

func (s *InMemoryChargeStore) MarkApplied(ctx context.Context, id, invoiceID string, month, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.charges[id]
	if !exists {
		return ierr.NewErrorf("charge %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	if c.Applied {
		return ierr.NewErrorf("charge %s is already applied", id).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	c.Applied = true
	c.InvoiceID = &invoiceID
	c.AppliedAt = &now
	c.AppliedMonth = &month
	c.AppliedYear = &year
	return nil
}

func (s *InMemoryChargeStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charges = make(map[string]*charge.AdditionalCharge)
}
