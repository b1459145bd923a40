package service

import (
	"context"
	"fmt"
	"time"

	"github.com/billrun/billrun/internal/batch"
	"github.com/billrun/billrun/internal/domain/customer"
	"github.com/billrun/billrun/internal/domain/invoice"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/payments"
	"github.com/billrun/billrun/internal/pdfrender"
	"github.com/billrun/billrun/internal/types"
)

// PdfBatchService renders the PDF for every invoice billed on a date that has
// no PDF yet. Re-runs are harmless: the fetch query excludes invoices whose
// pdf_url is already set.
type PdfBatchService interface {
	RenderPendingForDate(ctx context.Context, billingDate time.Time) (*batch.Result, error)
}

type pdfBatchService struct {
	ServiceParams
}

// NewPdfBatchService creates a PdfBatchService
func NewPdfBatchService(params ServiceParams) PdfBatchService {
	return &pdfBatchService{ServiceParams: params}
}

func (s *pdfBatchService) RenderPendingForDate(ctx context.Context, billingDate time.Time) (*batch.Result, error) {
	start, end := types.DayBounds(billingDate)

	pipeline := batch.NewPipeline(
		s.Config.Billing.BatchSize,
		func(ctx context.Context, afterID string, limit int) ([]*invoice.Invoice, error) {
			return s.InvoiceRepo.ListUnrendered(ctx, start, end, afterID, limit)
		},
		func(inv *invoice.Invoice) string { return inv.ID },
		s.renderOne,
		s.Logger,
	)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return result, err
	}

	s.Logger.Infow("pdf batch finished",
		"billing_date", billingDate.Format("2006-01-02"),
		"summary", result.Summary(),
	)

	if pubErr := s.EventPublisher.PublishPdfsGenerated(ctx, billingDate, result.Succeeded); pubErr != nil {
		s.Logger.Errorw("failed to publish pdfs generated event", "error", pubErr)
	}

	return result, nil
}

func (s *pdfBatchService) renderOne(ctx context.Context, inv *invoice.Invoice) error {
	tpl, err := s.activeInvoiceTemplate(ctx, inv.TenantID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return batch.Skip("no active invoice template")
		}
		return err
	}
	if !tpl.CanRenderPDF() {
		return batch.Skip("template has no pdf template or output path")
	}

	cust, err := s.CustomerRepo.Get(ctx, inv.CustomerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return batch.Skipf("customer %s not found", inv.CustomerID)
		}
		return err
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

	dueDate := sub.DueDate(inv.BillingDate)

	if err := s.ensurePaymentLink(ctx, inv, cust, dueDate); err != nil {
		return err
	}

	vars := invoiceVars(inv, cust, tenantName, dueDate)

	if err := s.Storage.EnsureDirectory(ctx, *tpl.PDFOutputPath); err != nil {
		return err
	}

	fileName := fmt.Sprintf("%s_%s.pdf", inv.ID, cust.Identification)
	pdfURL, err := s.PdfRenderClient.Render(ctx, &pdfrender.RenderRequest{
		Template:    *tpl.PDFTemplate,
		Data:        vars,
		OutputPath:  *tpl.PDFOutputPath,
		FileName:    fileName,
		HasPassword: false,
	})
	if err != nil {
		return err
	}

	return s.InvoiceRepo.UpdatePDFURL(ctx, inv.ID, pdfURL)
}

// ensurePaymentLink issues the payment link once and persists it before the
// PDF is rendered, so the rendered document always carries a live link
func (s *pdfBatchService) ensurePaymentLink(ctx context.Context, inv *invoice.Invoice, cust *customer.Customer, dueDate time.Time) error {
	if inv.PaymentLink != nil && *inv.PaymentLink != "" {
		return nil
	}

	link, err := s.PaymentsClient.CreatePaymentLink(ctx, &payments.CreatePaymentLinkRequest{
		InvoiceID:            inv.ID,
		TotalValue:           inv.TotalValue,
		Reference:            paymentReferencePrefix + inv.ID,
		Description:          fmt.Sprintf("Cuenta de cobro #%s", inv.ID),
		ClientEmail:          cust.Email,
		ClientName:           cust.FullName(),
		DueDate:              dueDate.Format("2006-01-02"),
		ClientIdentification: cust.Identification,
		ClientPhone:          cust.Phone,
		DocumentType:         identityDocumentType,
	})
	if err != nil {
		return err
	}

	if err := s.InvoiceRepo.UpdatePaymentLink(ctx, inv.ID, link); err != nil {
		return err
	}

	inv.PaymentLink = &link
	return nil
}
