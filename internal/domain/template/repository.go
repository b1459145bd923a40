package template

import "context"

// Repository provides access to template storage
type Repository interface {
	Create(ctx context.Context, t *Template) error

	// GetActiveByType returns the tenant's active template for the given
	// document type, or a not-found error
	GetActiveByType(ctx context.Context, tenantID, templateType string) (*Template, error)
}
