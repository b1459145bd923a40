package service

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/pubsub"
	"github.com/billrun/billrun/internal/pubsub/router"
	"github.com/billrun/billrun/internal/types"
)

// FulfillmentDispatcher wires the pipeline hand-off: a finished generation run
// triggers the PDF batch, and a finished PDF batch triggers the email batch.
type FulfillmentDispatcher struct {
	pdfService   PdfBatchService
	emailService EmailBatchService
	subscriber   pubsub.Subscriber
	logger       *logger.Logger
}

// NewFulfillmentDispatcher creates a FulfillmentDispatcher
func NewFulfillmentDispatcher(
	pdfService PdfBatchService,
	emailService EmailBatchService,
	subscriber pubsub.Subscriber,
	logger *logger.Logger,
) *FulfillmentDispatcher {
	return &FulfillmentDispatcher{
		pdfService:   pdfService,
		emailService: emailService,
		subscriber:   subscriber,
		logger:       logger,
	}
}

// RegisterHandlers attaches the two topic handlers to the router
func (d *FulfillmentDispatcher) RegisterHandlers(r *router.Router) {
	r.AddNoPublishHandler(
		"pdf_generation_handler",
		types.TopicGenerationCompleted,
		d.subscriber,
		d.handleGenerationCompleted,
	)

	r.AddNoPublishHandler(
		"email_delivery_handler",
		types.TopicPdfsGenerated,
		d.subscriber,
		d.handlePdfsGenerated,
	)
}

func (d *FulfillmentDispatcher) handleGenerationCompleted(msg *message.Message) error {
	var event types.GenerationCompletedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return ierr.WithError(err).
			WithHint("invalid generation completed payload").
			Mark(ierr.ErrValidation)
	}

	d.logger.Infow("generation completed event received",
		"billing_date", event.BillingDate.Format("2006-01-02"),
		"created_count", event.CreatedCount,
	)

	// the message context carries router shutdown, so a closing router can
	// interrupt the batch between items
	_, err := d.pdfService.RenderPendingForDate(msg.Context(), event.BillingDate)
	return err
}

func (d *FulfillmentDispatcher) handlePdfsGenerated(msg *message.Message) error {
	var event types.PdfsGeneratedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return ierr.WithError(err).
			WithHint("invalid pdfs generated payload").
			Mark(ierr.ErrValidation)
	}

	d.logger.Infow("pdfs generated event received",
		"billing_date", event.BillingDate.Format("2006-01-02"),
		"pdf_count", event.PdfCount,
	)

	_, err := d.emailService.SendPendingForDate(msg.Context(), event.BillingDate)
	return err
}
