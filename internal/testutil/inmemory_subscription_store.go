package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/billrun/billrun/internal/domain/subscription"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/types"
)

type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; exists {
		return ierr.NewErrorf("subscription %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sub, exists := s.subscriptions[id]; exists {
		return sub, nil
	}
	return nil, ierr.NewErrorf("subscription %s not found", id).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) ListActive(ctx context.Context) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]*subscription.Subscription, 0)
	for _, sub := range s.subscriptions {
		if sub.SubscriptionStatus == types.SubscriptionStatusActive &&
			sub.Status == types.StatusPublished {
			subs = append(subs, sub)
		}
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = make(map[string]*subscription.Subscription)
}
