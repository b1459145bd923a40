package testutil

import (
	"context"

	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient is a mock implementation of postgres client for testing.
// Services under test run against in-memory stores, so WithTx just executes
// the function; transactional rollback is covered by failure injection in the
// stores themselves.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// WithTx executes the given function without a real transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Querier panics if called: tests built on in-memory stores never reach SQL
func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	panic("mock postgres client has no querier")
}
