package subscription

import "context"

// Repository provides access to subscription storage
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)

	// ListActive returns all active subscriptions across tenants with their
	// service lines loaded, ordered by id ascending
	ListActive(ctx context.Context) ([]*Subscription, error)
}
