package customer

import "context"

// Repository provides access to customer storage
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
}
