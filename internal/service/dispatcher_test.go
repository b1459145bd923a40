package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/billrun/billrun/internal/domain/customer"
	"github.com/billrun/billrun/internal/domain/invoice"
	"github.com/billrun/billrun/internal/domain/subscription"
	domainTemplate "github.com/billrun/billrun/internal/domain/template"
	"github.com/billrun/billrun/internal/domain/tenant"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/notifications"
	"github.com/billrun/billrun/internal/payments"
	"github.com/billrun/billrun/internal/pdfrender"
	"github.com/billrun/billrun/internal/testutil"
	"github.com/billrun/billrun/internal/types"
)

type FulfillmentDispatcherSuite struct {
	testutil.BaseServiceTestSuite
	dispatcher  *FulfillmentDispatcher
	invoiceRepo *testutil.InMemoryInvoiceStore
	billingDate time.Time
}

func TestFulfillmentDispatcher(t *testing.T) {
	suite.Run(t, new(FulfillmentDispatcherSuite))
}

func (s *FulfillmentDispatcherSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.invoiceRepo = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	httpClient := s.GetHTTPClient()

	params := ServiceParams{
		Logger:              s.GetLogger(),
		Config:              s.GetConfig(),
		DB:                  s.GetDB(),
		Storage:             s.GetStorage(),
		Cache:               s.GetCache(),
		Renderer:            s.GetRenderer(),
		TenantRepo:          s.GetStores().TenantRepo,
		CustomerRepo:        s.GetStores().CustomerRepo,
		SubRepo:             s.GetStores().SubRepo,
		InvoiceRepo:         s.invoiceRepo,
		TemplateRepo:        s.GetStores().TemplateRepo,
		EventPublisher:      s.GetPublisher(),
		PaymentsClient:      payments.NewClient(s.GetConfig(), httpClient, s.GetLogger()),
		PdfRenderClient:     pdfrender.NewClient(s.GetConfig(), httpClient, s.GetLogger()),
		NotificationsClient: notifications.NewClient(s.GetConfig(), httpClient, s.GetLogger()),
	}

	s.dispatcher = NewFulfillmentDispatcher(
		NewPdfBatchService(params),
		NewEmailBatchService(params),
		testutil.NewInMemoryPubSub(),
		s.GetLogger(),
	)

	s.billingDate = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	s.seedFixtures()

	httpClient.RegisterResponse("/v1/payment-links", testutil.MockResponse{
		StatusCode: http.StatusCreated,
		Body:       []byte(`{"paymentLink":"https://pay.example/ln_1"}`),
	})
	httpClient.RegisterResponse("/v1/render", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"pdfUrl":"pdfs/2026/inv-1_1020304050.pdf"}`),
	})
	httpClient.RegisterResponse("/v1/emails", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"sent":true}`),
	})
}

func (s *FulfillmentDispatcherSuite) seedFixtures() {
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
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}))

	s.NoError(s.GetStores().TemplateRepo.Create(s.GetContext(), &domainTemplate.Template{
		ID:            "tmpl-1",
		Type:          types.TemplateTypeInvoice,
		EmailTemplate: "<p>Hola {{cliente.primer_nombre}}</p>",
		PDFTemplate:   lo.ToPtr("cuenta_cobro.html"),
		PDFOutputPath: lo.ToPtr("pdfs/2026"),
		Active:        true,
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}))

	s.NoError(s.invoiceRepo.CreateWithLineItems(s.GetContext(), &invoice.Invoice{
		ID:             "inv-1",
		CustomerID:     "cust-1",
		SubscriptionID: "subs-1",
		BillingDate:    s.billingDate,
		TotalValue:     decimal.NewFromInt(100000),
		PackageValue:   decimal.NewFromInt(100000),
		InvoiceStatus:  types.InvoiceStatusPending,
		BaseModel: types.BaseModel{
			TenantID: "tenant-1",
			Status:   types.StatusPublished,
		},
	}))
}

func (s *FulfillmentDispatcherSuite) eventMessage(event any) *message.Message {
	payload, err := json.Marshal(event)
	s.Require().NoError(err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func (s *FulfillmentDispatcherSuite) TestGenerationCompletedTriggersPdfBatch() {
	msg := s.eventMessage(types.GenerationCompletedEvent{
		BillingDate:  s.billingDate,
		CreatedCount: 1,
		Timestamp:    time.Now().UTC(),
	})

	s.NoError(s.dispatcher.handleGenerationCompleted(msg))

	inv, err := s.invoiceRepo.Get(s.GetContext(), "inv-1")
	s.NoError(err)
	s.Require().NotNil(inv.PDFURL)
	s.Equal("pdfs/2026/inv-1_1020304050.pdf", *inv.PDFURL)

	// the pdf batch announces itself for the email stage
	events := s.GetPublisher().PdfsGeneratedEvents()
	s.Require().Len(events, 1)
	s.Equal(1, events[0].PdfCount)
}

func (s *FulfillmentDispatcherSuite) TestPdfsGeneratedTriggersEmailBatch() {
	pdfPath := "pdfs/2026/inv-1_1020304050.pdf"
	s.NoError(s.invoiceRepo.UpdatePDFURL(s.GetContext(), "inv-1", pdfPath))
	s.GetStorage().Put(pdfPath, []byte("%PDF-1.7 fake"))

	msg := s.eventMessage(types.PdfsGeneratedEvent{
		BillingDate: s.billingDate,
		PdfCount:    1,
		Timestamp:   time.Now().UTC(),
	})

	s.NoError(s.dispatcher.handlePdfsGenerated(msg))

	inv, err := s.invoiceRepo.Get(s.GetContext(), "inv-1")
	s.NoError(err)
	s.True(inv.EmailSent)
}

// a closing router cancels message contexts; the batch must see that instead
// of running on a detached context
func (s *FulfillmentDispatcherSuite) TestCanceledMessageContextStopsBatch() {
	msg := s.eventMessage(types.GenerationCompletedEvent{
		BillingDate:  s.billingDate,
		CreatedCount: 1,
		Timestamp:    time.Now().UTC(),
	})
	ctx, cancel := context.WithCancel(s.GetContext())
	cancel()
	msg.SetContext(ctx)

	err := s.dispatcher.handleGenerationCompleted(msg)
	s.ErrorIs(err, context.Canceled)

	inv, getErr := s.invoiceRepo.Get(s.GetContext(), "inv-1")
	s.NoError(getErr)
	s.Nil(inv.PDFURL)
	s.Empty(s.GetHTTPClient().Requests())
}

func (s *FulfillmentDispatcherSuite) TestInvalidPayloadIsRejected() {
	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))

	err := s.dispatcher.handleGenerationCompleted(msg)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	err = s.dispatcher.handlePdfsGenerated(msg)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
