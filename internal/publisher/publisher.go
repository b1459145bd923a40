package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/pubsub"
	"github.com/billrun/billrun/internal/types"
)

// EventPublisher emits the pipeline hand-off events. Generation publishes
// generation_completed; the PDF pipeline publishes pdfs_generated.
type EventPublisher interface {
	PublishGenerationCompleted(ctx context.Context, billingDate time.Time, createdCount int) error
	PublishPdfsGenerated(ctx context.Context, billingDate time.Time, pdfCount int) error
}

type eventPublisher struct {
	publisher pubsub.Publisher
	logger    *logger.Logger
}

// NewEventPublisher creates an EventPublisher over the configured pubsub
func NewEventPublisher(publisher pubsub.Publisher, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *eventPublisher) PublishGenerationCompleted(ctx context.Context, billingDate time.Time, createdCount int) error {
	event := types.GenerationCompletedEvent{
		BillingDate:  billingDate,
		CreatedCount: createdCount,
		Timestamp:    time.Now().UTC(),
	}
	return p.publish(ctx, types.TopicGenerationCompleted, event)
}

func (p *eventPublisher) PublishPdfsGenerated(ctx context.Context, billingDate time.Time, pdfCount int) error {
	event := types.PdfsGeneratedEvent{
		BillingDate: billingDate,
		PdfCount:    pdfCount,
		Timestamp:   time.Now().UTC(),
	}
	return p.publish(ctx, types.TopicPdfsGenerated, event)
}

func (p *eventPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to marshal %s event", topic).
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.publisher.Publish(ctx, topic, msg); err != nil {
		return ierr.WithError(err).
			WithHintf("failed to publish %s event", topic).
			Mark(ierr.ErrSystem)
	}

	p.logger.Infow("published event", "topic", topic, "message_uuid", msg.UUID)
	return nil
}
