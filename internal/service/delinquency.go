package service

import (
	"context"
	"time"
)

// DelinquencyService sweeps invoices whose billing date has passed without
// payment and flags them DELINQUENT in one bulk statement
type DelinquencyService interface {
	MarkOverdue(ctx context.Context) (int, error)
}

type delinquencyService struct {
	ServiceParams
}

// NewDelinquencyService creates a DelinquencyService
func NewDelinquencyService(params ServiceParams) DelinquencyService {
	return &delinquencyService{ServiceParams: params}
}

func (s *delinquencyService) MarkOverdue(ctx context.Context) (int, error) {
	now := time.Now().In(s.Config.Billing.Location())
	count, err := s.InvoiceRepo.MarkDelinquent(ctx, now)
	if err != nil {
		return 0, err
	}

	s.Logger.Infow("delinquency sweep finished", "marked", count)
	return count, nil
}
