package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/billrun/billrun/internal/batch"
	"github.com/billrun/billrun/internal/domain/invoice"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/notifications"
	"github.com/billrun/billrun/internal/types"
)

// EmailBatchService emails every invoice billed on a date that has a rendered
// PDF and no email yet. An invoice without a PDF is never emailed, and an
// invoice is never emailed twice: the fetch query excludes both.
type EmailBatchService interface {
	SendPendingForDate(ctx context.Context, billingDate time.Time) (*batch.Result, error)
}

type emailBatchService struct {
	ServiceParams
}

// NewEmailBatchService creates an EmailBatchService
func NewEmailBatchService(params ServiceParams) EmailBatchService {
	return &emailBatchService{ServiceParams: params}
}

func (s *emailBatchService) SendPendingForDate(ctx context.Context, billingDate time.Time) (*batch.Result, error) {
	start, end := types.DayBounds(billingDate)

	pipeline := batch.NewPipeline(
		s.Config.Billing.BatchSize,
		func(ctx context.Context, afterID string, limit int) ([]*invoice.Invoice, error) {
			return s.InvoiceRepo.ListUnsent(ctx, start, end, afterID, limit)
		},
		func(inv *invoice.Invoice) string { return inv.ID },
		s.sendOne,
		s.Logger,
	)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return result, err
	}

	s.Logger.Infow("email batch finished",
		"billing_date", billingDate.Format("2006-01-02"),
		"summary", result.Summary(),
	)

	return result, nil
}

func (s *emailBatchService) sendOne(ctx context.Context, inv *invoice.Invoice) error {
	if !inv.HasPDF() {
		s.Logger.Warnw("invoice reached email batch without pdf", "invoice_id", inv.ID)
		return batch.Skip("no pdf rendered")
	}

	tpl, err := s.activeInvoiceTemplate(ctx, inv.TenantID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return batch.Skip("no active invoice template")
		}
		return err
	}

	cust, err := s.CustomerRepo.Get(ctx, inv.CustomerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return batch.Skipf("customer %s not found", inv.CustomerID)
		}
		return err
	}
	if cust.Email == "" {
		return batch.Skipf("customer %s has no email", cust.ID)
	}

	sub, err := s.SubRepo.Get(ctx, inv.SubscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return batch.Skipf("subscription %s not found", inv.SubscriptionID)
		}
		return err
	}

	tenantName, err := s.tenantName(ctx, inv.TenantID)
	if err != nil {
		return err
	}

	vars := invoiceVars(inv, cust, tenantName, sub.DueDate(inv.BillingDate))
	body := s.Renderer.Render(tpl.EmailTemplate, vars)

	req := &notifications.SendEmailRequest{
		Recipient: cust.Email,
		Subject:   fmt.Sprintf("Cuenta de Cobro - %s", types.FormatLongDate(inv.BillingDate)),
		Body:      body,
		BodyType:  "html",
		PdfURL:    *inv.PDFURL,
	}

	// the attachment is best effort: a missing file downgrades the email to a
	// link-only delivery instead of blocking it
	if data, readErr := s.Storage.Read(ctx, *inv.PDFURL); readErr != nil {
		s.Logger.Warnw("failed to read pdf for attachment, sending without it",
			"invoice_id", inv.ID,
			"pdf_url", *inv.PDFURL,
			"error", readErr,
		)
	} else {
		req.Attachment = &notifications.Attachment{
			FileName:      fmt.Sprintf("%s_%s.pdf", inv.ID, cust.Identification),
			Base64Content: base64.StdEncoding.EncodeToString(data),
		}
	}

	if err := s.NotificationsClient.SendEmail(ctx, req); err != nil {
		return err
	}

	return s.InvoiceRepo.MarkEmailSent(ctx, inv.ID, time.Now().UTC())
}
