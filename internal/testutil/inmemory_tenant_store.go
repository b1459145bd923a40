package testutil

import (
	"context"

	"github.com/billrun/billrun/internal/domain/tenant"
	ierr "github.com/billrun/billrun/internal/errors"
)

type InMemoryTenantStore struct {
	*InMemoryStore[*tenant.Tenant]
}

func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		InMemoryStore: NewInMemoryStore[*tenant.Tenant](),
	}
}

func (s *InMemoryTenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	if err := s.InMemoryStore.Create(ctx, t.ID, t); err != nil {
		return ierr.NewErrorf("tenant %s already exists", t.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryTenantStore) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewErrorf("tenant %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return t, nil
}
