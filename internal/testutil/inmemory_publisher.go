package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/billrun/billrun/internal/publisher"
	"github.com/billrun/billrun/internal/types"
)

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

// InMemoryEventPublisher records published pipeline events for assertions
type InMemoryEventPublisher struct {
	mu                  sync.RWMutex
	generationCompleted []types.GenerationCompletedEvent
	pdfsGenerated       []types.PdfsGeneratedEvent
}

// NewInMemoryEventPublisher creates a recording event publisher
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) PublishGenerationCompleted(ctx context.Context, billingDate time.Time, createdCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generationCompleted = append(p.generationCompleted, types.GenerationCompletedEvent{
		BillingDate:  billingDate,
		CreatedCount: createdCount,
		Timestamp:    time.Now().UTC(),
	})
	return nil
}

func (p *InMemoryEventPublisher) PublishPdfsGenerated(ctx context.Context, billingDate time.Time, pdfCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pdfsGenerated = append(p.pdfsGenerated, types.PdfsGeneratedEvent{
		BillingDate: billingDate,
		PdfCount:    pdfCount,
		Timestamp:   time.Now().UTC(),
	})
	return nil
}

// GenerationCompletedEvents returns the recorded generation completed events
func (p *InMemoryEventPublisher) GenerationCompletedEvents() []types.GenerationCompletedEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.GenerationCompletedEvent(nil), p.generationCompleted...)
}

// PdfsGeneratedEvents returns the recorded pdfs generated events
func (p *InMemoryEventPublisher) PdfsGeneratedEvents() []types.PdfsGeneratedEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]types.PdfsGeneratedEvent(nil), p.pdfsGenerated...)
}

// Clear resets the recorded events
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generationCompleted = nil
	p.pdfsGenerated = nil
}
