package postgres

import (
	"context"
	"database/sql"

	"github.com/billrun/billrun/internal/domain/subscription"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/types"
)

type subscriptionRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewSubscriptionRepository(client postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{client: client, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `
	INSERT INTO subscriptions (
		id, customer_id, agreed_value, billing_day, frequency_type, frequency_value,
		start_date, end_date, subscription_status, grace_period_days,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
	)
	`

	err := r.client.WithTx(ctx, func(ctx context.Context) error {
		_, err := r.client.Querier(ctx).ExecContext(ctx, query,
			s.ID,
			s.CustomerID,
			s.AgreedValue,
			s.BillingDay,
			s.FrequencyType,
			s.FrequencyValue,
			s.StartDate,
			s.EndDate,
			s.SubscriptionStatus,
			s.GracePeriodDays,
			s.TenantID,
			s.Status,
			s.CreatedAt,
			s.UpdatedAt,
			s.CreatedBy,
			s.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHintf("failed to insert subscription %s", s.ID).
				Mark(ierr.ErrDatabase)
		}

		for _, line := range s.ServiceLines {
			if err := r.createServiceLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func (r *subscriptionRepository) createServiceLine(ctx context.Context, line *subscription.ServiceLine) error {
	query := `
	INSERT INTO service_lines (
		id, subscription_id, name, original_value, agreed_value,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
	)
	`

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		line.ID,
		line.SubscriptionID,
		line.Name,
		line.OriginalValue,
		line.AgreedValue,
		line.TenantID,
		line.Status,
		line.CreatedAt,
		line.UpdatedAt,
		line.CreatedBy,
		line.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to insert service line %s", line.ID).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
	SELECT id, customer_id, agreed_value, billing_day, frequency_type, frequency_value,
		start_date, end_date, subscription_status, grace_period_days,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM subscriptions
	WHERE id = $1 AND status = $2
	`

	var s subscription.Subscription
	err := r.client.Querier(ctx).GetContext(ctx, &s, query, id, types.StatusPublished)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("subscription %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to get subscription %s", id).
			Mark(ierr.ErrDatabase)
	}

	lines, err := r.listServiceLines(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.ServiceLines = lines[s.ID]

	return &s, nil
}

func (r *subscriptionRepository) ListActive(ctx context.Context) ([]*subscription.Subscription, error) {
	query := `
	SELECT id, customer_id, agreed_value, billing_day, frequency_type, frequency_value,
		start_date, end_date, subscription_status, grace_period_days,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM subscriptions
	WHERE subscription_status = $1 AND status = $2
	ORDER BY id ASC
	`

	subs := make([]*subscription.Subscription, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &subs, query,
		types.SubscriptionStatusActive, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list active subscriptions").
			Mark(ierr.ErrDatabase)
	}

	if len(subs) == 0 {
		return subs, nil
	}

	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
	}

	lines, err := r.listServiceLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		s.ServiceLines = lines[s.ID]
	}

	return subs, nil
}

func (r *subscriptionRepository) listServiceLines(ctx context.Context, subscriptionIDs []string) (map[string][]*subscription.ServiceLine, error) {
	query := `
	SELECT id, subscription_id, name, original_value, agreed_value,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM service_lines
	WHERE subscription_id = ANY($1) AND status = $2
	ORDER BY id ASC
	`

	lines := make([]*subscription.ServiceLine, 0)
	err := r.client.Querier(ctx).SelectContext(ctx, &lines, query,
		pqStringArray(subscriptionIDs), types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list service lines").
			Mark(ierr.ErrDatabase)
	}

	bySubscription := make(map[string][]*subscription.ServiceLine, len(subscriptionIDs))
	for _, line := range lines {
		bySubscription[line.SubscriptionID] = append(bySubscription[line.SubscriptionID], line)
	}

	return bySubscription, nil
}
