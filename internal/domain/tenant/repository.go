package tenant

import "context"

// Repository provides access to tenant storage
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	Get(ctx context.Context, id string) (*Tenant, error)
}
