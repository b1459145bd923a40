package testutil

import (
	"context"

	"github.com/billrun/billrun/internal/domain/customer"
	ierr "github.com/billrun/billrun/internal/errors"
)

type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) error {
	if err := s.InMemoryStore.Create(ctx, c.ID, c); err != nil {
		return ierr.NewErrorf("customer %s already exists", c.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("customer %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}
