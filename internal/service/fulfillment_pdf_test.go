package service

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/billrun/billrun/internal/domain/customer"
	"github.com/billrun/billrun/internal/domain/invoice"
	"github.com/billrun/billrun/internal/domain/subscription"
	domainTemplate "github.com/billrun/billrun/internal/domain/template"
	"github.com/billrun/billrun/internal/domain/tenant"
	"github.com/billrun/billrun/internal/payments"
	"github.com/billrun/billrun/internal/pdfrender"
	"github.com/billrun/billrun/internal/testutil"
	"github.com/billrun/billrun/internal/types"
)

type PdfBatchServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     PdfBatchService
	invoiceRepo *testutil.InMemoryInvoiceStore
	httpClient  *testutil.MockHTTPClient
	billingDate time.Time
}

func TestPdfBatchService(t *testing.T) {
	suite.Run(t, new(PdfBatchServiceSuite))
}

func (s *PdfBatchServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *PdfBatchServiceSuite) setupService() {
	s.invoiceRepo = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	s.httpClient = s.GetHTTPClient()

	params := ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		Storage:         s.GetStorage(),
		Cache:           s.GetCache(),
		Renderer:        s.GetRenderer(),
		TenantRepo:      s.GetStores().TenantRepo,
		CustomerRepo:    s.GetStores().CustomerRepo,
		SubRepo:         s.GetStores().SubRepo,
		InvoiceRepo:     s.invoiceRepo,
		TemplateRepo:    s.GetStores().TemplateRepo,
		EventPublisher:  s.GetPublisher(),
		PaymentsClient:  payments.NewClient(s.GetConfig(), s.httpClient, s.GetLogger()),
		PdfRenderClient: pdfrender.NewClient(s.GetConfig(), s.httpClient, s.GetLogger()),
	}
	s.service = NewPdfBatchService(params)
}

func (s *PdfBatchServiceSuite) setupTestData() {
	s.billingDate = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), &tenant.Tenant{
		ID:   "tenant-1",
		Name: "Conexión Total SAS",
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}))

	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), &customer.Customer{
		ID:             "cust-1",
		FirstName:      "María",
		LastName:       "Gómez",
		Email:          "maria@example.com",
		Phone:          "3001234567",
		Identification: "1020304050",
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}))

	s.NoError(s.GetStores().SubRepo.Create(s.GetContext(), &subscription.Subscription{
		ID:                 "subs-1",
		CustomerID:         "cust-1",
		AgreedValue:        decimal.NewFromInt(100000),
		BillingDay:         lo.ToPtr(15),
		FrequencyType:      types.BillingFrequencyMonthly,
		StartDate:          time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		SubscriptionStatus: types.SubscriptionStatusActive,
		GracePeriodDays:    lo.ToPtr(5),
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}))

	s.httpClient.RegisterResponse("/v1/payment-links", testutil.MockResponse{
		StatusCode: http.StatusCreated,
		Body:       []byte(`{"paymentLink":"https://pay.example/ln_1"}`),
	})
	s.httpClient.RegisterResponse("/v1/render", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"pdfUrl":"pdfs/2026/inv-1_1020304050.pdf"}`),
	})
}

func (s *PdfBatchServiceSuite) seedTemplate() {
	s.NoError(s.GetStores().TemplateRepo.Create(s.GetContext(), &domainTemplate.Template{
		ID:            "tmpl-1",
		Type:          types.TemplateTypeInvoice,
		EmailTemplate: "<p>Hola {{cliente.primer_nombre}}, tu cuenta por {{cuenta.valor_total}} vence el {{cuenta.fecha_limite_pago}}.</p>",
		PDFTemplate:   lo.ToPtr("cuenta_cobro.html"),
		PDFOutputPath: lo.ToPtr("pdfs/2026"),
		Active:        true,
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}))
}

func (s *PdfBatchServiceSuite) seedInvoice(id string, paymentLink *string) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:             id,
		CustomerID:     "cust-1",
		SubscriptionID: "subs-1",
		BillingDate:    s.billingDate,
		TotalValue:     decimal.NewFromInt(100000),
		PackageValue:   decimal.NewFromInt(100000),
		InvoiceStatus:  types.InvoiceStatusPending,
		PaymentLink:    paymentLink,
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}
	s.NoError(s.invoiceRepo.CreateWithLineItems(s.GetContext(), inv))
	return inv
}

func (s *PdfBatchServiceSuite) TestRenderPendingForDate() {
	s.seedTemplate()
	s.seedInvoice("inv-1", nil)

	result, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Equal(1, result.Succeeded)
	s.Empty(result.Skipped)
	s.Empty(result.Failed)

	inv, err := s.invoiceRepo.Get(s.GetContext(), "inv-1")
	s.NoError(err)
	s.Require().NotNil(inv.PaymentLink)
	s.Equal("https://pay.example/ln_1", *inv.PaymentLink)
	s.Require().NotNil(inv.PDFURL)
	s.Equal("pdfs/2026/inv-1_1020304050.pdf", *inv.PDFURL)

	// payment link first, then the render call
	requests := s.httpClient.Requests()
	s.Require().Len(requests, 2)

	var linkReq payments.CreatePaymentLinkRequest
	s.NoError(json.Unmarshal(requests[0].Body, &linkReq))
	s.Equal("inv-1", linkReq.InvoiceID)
	s.Equal("CC-inv-1", linkReq.Reference)
	s.Equal("CC", linkReq.DocumentType)
	s.Equal("maria@example.com", linkReq.ClientEmail)
	s.Equal("2026-03-20", linkReq.DueDate)

	var renderReq pdfrender.RenderRequest
	s.NoError(json.Unmarshal(requests[1].Body, &renderReq))
	s.Equal("cuenta_cobro.html", renderReq.Template)
	s.Equal("pdfs/2026", renderReq.OutputPath)
	s.Equal("inv-1_1020304050.pdf", renderReq.FileName)
	s.Equal("https://pay.example/ln_1", renderReq.Data["cuenta.link_pago"])
	s.Equal("$ 100.000,00", renderReq.Data["cuenta.valor_total"])
	s.Equal("María Gómez", renderReq.Data["cliente.nombre"])
	s.Equal("Conexión Total SAS", renderReq.Data["empresa.nombre"])
	s.Equal("20 de marzo de 2026", renderReq.Data["cuenta.fecha_limite_pago"])

	events := s.GetPublisher().PdfsGeneratedEvents()
	s.Require().Len(events, 1)
	s.Equal(1, events[0].PdfCount)
}

func (s *PdfBatchServiceSuite) TestRenderReusesExistingPaymentLink() {
	s.seedTemplate()
	s.seedInvoice("inv-1", lo.ToPtr("https://pay.example/ln_existing"))

	result, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Equal(1, result.Succeeded)

	// only the render call went out
	requests := s.httpClient.Requests()
	s.Require().Len(requests, 1)

	var renderReq pdfrender.RenderRequest
	s.NoError(json.Unmarshal(requests[0].Body, &renderReq))
	s.Equal("https://pay.example/ln_existing", renderReq.Data["cuenta.link_pago"])
}

func (s *PdfBatchServiceSuite) TestRenderSkipsWithoutTemplate() {
	s.seedInvoice("inv-1", nil)

	result, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Equal(0, result.Succeeded)
	s.Require().Len(result.Skipped, 1)
	s.Equal("inv-1", result.Skipped[0].ID)
	s.Equal("no active invoice template", result.Skipped[0].Reason)

	inv, err := s.invoiceRepo.Get(s.GetContext(), "inv-1")
	s.NoError(err)
	s.Nil(inv.PDFURL)
}

func (s *PdfBatchServiceSuite) TestRenderSkipsTemplateWithoutPdfConfig() {
	s.NoError(s.GetStores().TemplateRepo.Create(s.GetContext(), &domainTemplate.Template{
		ID:            "tmpl-1",
		Type:          types.TemplateTypeInvoice,
		EmailTemplate: "<p>hola</p>",
		Active:        true,
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}))
	s.seedInvoice("inv-1", nil)

	result, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Require().Len(result.Skipped, 1)
	s.Equal("template has no pdf template or output path", result.Skipped[0].Reason)
}

func (s *PdfBatchServiceSuite) TestRenderSkipsMissingCustomer() {
	s.seedTemplate()
	inv := s.seedInvoice("inv-1", nil)
	inv.CustomerID = "cust-missing"

	result, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Require().Len(result.Skipped, 1)
	s.Contains(result.Skipped[0].Reason, "cust-missing")
}

func (s *PdfBatchServiceSuite) TestRenderFailureIsIsolated() {
	s.seedTemplate()
	s.seedInvoice("inv-1", nil)
	s.seedInvoice("inv-2", nil)

	s.httpClient.RegisterResponse("/v1/render", testutil.MockResponse{
		StatusCode: http.StatusBadGateway,
		Body:       []byte(`{"error":"renderer down"}`),
	})

	result, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Equal(0, result.Succeeded)
	s.Len(result.Failed, 2)

	inv, err := s.invoiceRepo.Get(s.GetContext(), "inv-1")
	s.NoError(err)
	s.Nil(inv.PDFURL)
	// the payment link persisted before the render failed, so a re-run will
	// not issue a second one
	s.NotNil(inv.PaymentLink)
}

func (s *PdfBatchServiceSuite) TestRerunExcludesRenderedInvoices() {
	s.seedTemplate()
	s.seedInvoice("inv-1", nil)

	first, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Equal(1, first.Succeeded)

	second, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Equal(0, second.Processed())

	// one render call total
	renderCalls := 0
	for _, req := range s.httpClient.Requests() {
		if req.URL == "http://pdfrender.test/v1/render" {
			renderCalls++
		}
	}
	s.Equal(1, renderCalls)
}

func (s *PdfBatchServiceSuite) TestRenderIgnoresOtherBillingDates() {
	s.seedTemplate()
	inv := s.seedInvoice("inv-1", nil)
	inv.BillingDate = s.billingDate.AddDate(0, 0, -1)

	result, err := s.service.RenderPendingForDate(s.GetContext(), s.billingDate)
	s.NoError(err)
	s.Equal(0, result.Processed())
}
