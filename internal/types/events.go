package types

import "time"

// Messaging topics used between generation and fulfillment
const (
	TopicGenerationCompleted = "generation_completed"
	TopicPdfsGenerated       = "pdfs_generated"
)

// GenerationCompletedEvent signals that an invoice generation run finished
// successfully for a billing date
type GenerationCompletedEvent struct {
	BillingDate  time.Time `json:"billing_date"`
	CreatedCount int       `json:"created_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// PdfsGeneratedEvent signals that the PDF pipeline finished for a billing date
type PdfsGeneratedEvent struct {
	BillingDate time.Time `json:"billing_date"`
	PdfCount    int       `json:"pdf_count"`
	Timestamp   time.Time `json:"timestamp"`
}
