package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/billrun/billrun/internal/domain/charge"
	"github.com/billrun/billrun/internal/domain/customer"
	"github.com/billrun/billrun/internal/domain/invoice"
	"github.com/billrun/billrun/internal/domain/subscription"
	"github.com/billrun/billrun/internal/domain/tenant"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/testutil"
	"github.com/billrun/billrun/internal/types"
)

type GenerationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     GenerationService
	invoiceRepo *testutil.InMemoryInvoiceStore
	processRepo *testutil.InMemoryProcessStore
	chargeRepo  *testutil.InMemoryChargeStore
	testData    struct {
		tenant       *tenant.Tenant
		customer     *customer.Customer
		subscription *subscription.Subscription
		billingDate  time.Time
	}
}

func TestGenerationService(t *testing.T) {
	suite.Run(t, new(GenerationServiceSuite))
}

func (s *GenerationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *GenerationServiceSuite) setupService() {
	s.invoiceRepo = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	s.processRepo = s.GetStores().ProcessRepo.(*testutil.InMemoryProcessStore)
	s.chargeRepo = s.GetStores().ChargeRepo.(*testutil.InMemoryChargeStore)

	s.service = NewGenerationService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		TenantRepo:     s.GetStores().TenantRepo,
		CustomerRepo:   s.GetStores().CustomerRepo,
		SubRepo:        s.GetStores().SubRepo,
		ChargeRepo:     s.chargeRepo,
		InvoiceRepo:    s.invoiceRepo,
		ProcessRepo:    s.processRepo,
		EventPublisher: s.GetPublisher(),
	})
}

func (s *GenerationServiceSuite) setupTestData() {
	s.testData.billingDate = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	s.testData.tenant = &tenant.Tenant{
		ID:   "tenant-1",
		Name: "Conexión Total SAS",
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), s.testData.tenant))

	s.testData.customer = &customer.Customer{
		ID:             "cust-1",
		FirstName:      "María",
		LastName:       "Gómez",
		Email:          "maria@example.com",
		Identification: "1020304050",
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}
	s.NoError(s.GetStores().CustomerRepo.Create(s.GetContext(), s.testData.customer))

	s.testData.subscription = &subscription.Subscription{
		ID:                 "subs-1",
		CustomerID:         s.testData.customer.ID,
		AgreedValue:        decimal.NewFromInt(85000),
		BillingDay:         lo.ToPtr(15),
		FrequencyType:      types.BillingFrequencyMonthly,
		StartDate:          time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		SubscriptionStatus: types.SubscriptionStatusActive,
		ServiceLines: []*subscription.ServiceLine{
			{
				ID:             "line-1",
				SubscriptionID: "subs-1",
				Name:           "Internet 300MB",
				OriginalValue:  decimal.NewFromInt(95000),
				AgreedValue:    decimal.NewFromInt(85000),
				BaseModel: types.BaseModel{
					TenantID: types.DefaultTenantID,
					Status:   types.StatusPublished,
				},
			},
			{
				ID:             "line-2",
				SubscriptionID: "subs-1",
				Name:           "Servicio retirado",
				OriginalValue:  decimal.NewFromInt(20000),
				AgreedValue:    decimal.NewFromInt(20000),
				BaseModel: types.BaseModel{
					TenantID: types.DefaultTenantID,
					Status:   types.StatusDeleted,
				},
			},
		},
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}
	s.NoError(s.GetStores().SubRepo.Create(s.GetContext(), s.testData.subscription))
}

func (s *GenerationServiceSuite) createPendingCharge(id string, value int64) *charge.AdditionalCharge {
	c := &charge.AdditionalCharge{
		ID:                id,
		CustomerID:        s.testData.customer.ID,
		Concept:           "Reconexión",
		Value:             decimal.NewFromInt(value),
		RollToNextInvoice: true,
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}
	s.NoError(s.chargeRepo.Create(s.GetContext(), c))
	return c
}

func (s *GenerationServiceSuite) listInvoicesForDate(billingDate time.Time) []*invoice.Invoice {
	start, end := types.DayBounds(billingDate)
	invoices, err := s.invoiceRepo.ListUnrendered(s.GetContext(), start, end, "", 1000)
	s.NoError(err)
	return invoices
}

func (s *GenerationServiceSuite) TestGenerateForDateCreatesInvoice() {
	s.createPendingCharge("chrg-1", 15000)

	result, err := s.service.GenerateForDate(s.GetContext(), s.testData.billingDate)
	s.NoError(err)
	s.NotNil(result)
	s.Equal(1, result.EligibleCount)
	s.Equal(1, result.CreatedCount)
	s.Equal(0, result.SkippedCount)

	invoices := s.listInvoicesForDate(s.testData.billingDate)
	s.Require().Len(invoices, 1)

	inv := invoices[0]
	s.Equal(s.testData.customer.ID, inv.CustomerID)
	s.Equal(s.testData.subscription.ID, inv.SubscriptionID)
	s.True(inv.PackageValue.Equal(decimal.NewFromInt(85000)))
	s.True(inv.AdditionalChargesValue.Equal(decimal.NewFromInt(15000)))
	s.True(inv.TotalValue.Equal(decimal.NewFromInt(100000)))
	s.Equal(types.InvoiceStatusPending, inv.InvoiceStatus)
	s.Equal(types.DefaultTenantID, inv.TenantID)

	// only the published service line is snapshotted
	s.Require().Len(inv.LineItems, 1)
	s.Equal("Internet 300MB", inv.LineItems[0].Name)
	s.True(inv.LineItems[0].AgreedValue.Equal(decimal.NewFromInt(85000)))

	// the charge is consumed by this invoice
	c, err := s.chargeRepo.Get(s.GetContext(), "chrg-1")
	s.NoError(err)
	s.True(c.Applied)
	s.Require().NotNil(c.InvoiceID)
	s.Equal(inv.ID, *c.InvoiceID)
	s.Require().NotNil(c.AppliedMonth)
	s.Equal(int(time.March), *c.AppliedMonth)
	s.Require().NotNil(c.AppliedYear)
	s.Equal(2026, *c.AppliedYear)

	run, err := s.processRepo.Get(s.GetContext(), result.ProcessID)
	s.NoError(err)
	s.Equal(types.ProcessStatusSuccess, run.ProcessStatus)
	s.Equal(1, run.CreatedCount)
	s.Equal(15, run.TargetDay)
	s.NotNil(run.FinishedAt)

	events := s.GetPublisher().GenerationCompletedEvents()
	s.Require().Len(events, 1)
	s.Equal(1, events[0].CreatedCount)
	s.True(events[0].BillingDate.Equal(s.testData.billingDate))
}

func (s *GenerationServiceSuite) TestGenerateForDateWithoutCharges() {
	result, err := s.service.GenerateForDate(s.GetContext(), s.testData.billingDate)
	s.NoError(err)
	s.Equal(1, result.CreatedCount)

	invoices := s.listInvoicesForDate(s.testData.billingDate)
	s.Require().Len(invoices, 1)
	s.True(invoices[0].AdditionalChargesValue.IsZero())
	s.True(invoices[0].TotalValue.Equal(invoices[0].PackageValue))
}

func (s *GenerationServiceSuite) TestGenerateForDateIsIdempotent() {
	first, err := s.service.GenerateForDate(s.GetContext(), s.testData.billingDate)
	s.NoError(err)
	s.Equal(1, first.CreatedCount)

	second, err := s.service.GenerateForDate(s.GetContext(), s.testData.billingDate)
	s.NoError(err)
	s.Equal(1, second.EligibleCount)
	s.Equal(0, second.CreatedCount)
	s.Equal(1, second.SkippedCount)

	s.Len(s.listInvoicesForDate(s.testData.billingDate), 1)

	// both runs close SUCCESS
	run, err := s.processRepo.Get(s.GetContext(), second.ProcessID)
	s.NoError(err)
	s.Equal(types.ProcessStatusSuccess, run.ProcessStatus)
}

func (s *GenerationServiceSuite) TestGenerateForDateGuardsWithinCalendarMonth() {
	// an invoice earlier in the same month blocks a second one even though
	// the billing date differs
	earlier := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	s.NoError(s.invoiceRepo.CreateWithLineItems(s.GetContext(), &invoice.Invoice{
		ID:             "inv-existing",
		CustomerID:     s.testData.customer.ID,
		SubscriptionID: s.testData.subscription.ID,
		BillingDate:    earlier,
		TotalValue:     decimal.NewFromInt(85000),
		PackageValue:   decimal.NewFromInt(85000),
		InvoiceStatus:  types.InvoiceStatusPending,
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}))

	result, err := s.service.GenerateForDate(s.GetContext(), s.testData.billingDate)
	s.NoError(err)
	s.Equal(0, result.CreatedCount)
	s.Equal(1, result.SkippedCount)
}

func (s *GenerationServiceSuite) TestGenerateForDateNoEligibleSubscriptions() {
	// the 10th matches nobody's billing day
	offDay := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	result, err := s.service.GenerateForDate(s.GetContext(), offDay)
	s.NoError(err)
	s.Equal(0, result.EligibleCount)
	s.Equal(0, result.CreatedCount)

	run, err := s.processRepo.Get(s.GetContext(), result.ProcessID)
	s.NoError(err)
	s.Equal(types.ProcessStatusSuccess, run.ProcessStatus)
	s.Equal(0, run.CreatedCount)
	s.Require().NotNil(run.Notes)
	s.Equal("no eligible subscriptions found", *run.Notes)

	s.Empty(s.GetPublisher().GenerationCompletedEvents())
}

func (s *GenerationServiceSuite) TestGenerateForDateFailureClosesRunAsFailed() {
	s.createPendingCharge("chrg-1", 15000)
	s.invoiceRepo.SetCreateError(ierr.NewError("connection reset").Mark(ierr.ErrDatabase))

	result, err := s.service.GenerateForDate(s.GetContext(), s.testData.billingDate)
	s.Error(err)
	s.Nil(result)

	// nothing committed, nothing announced
	s.Empty(s.listInvoicesForDate(s.testData.billingDate))
	s.Empty(s.GetPublisher().GenerationCompletedEvents())

	c, err := s.chargeRepo.Get(s.GetContext(), "chrg-1")
	s.NoError(err)
	s.False(c.Applied)

	// the lone run record is FAILED with the cause in the notes
	runs := s.processRepo.All()
	s.Require().Len(runs, 1)
	s.Equal(types.ProcessStatusFailed, runs[0].ProcessStatus)
	s.Require().NotNil(runs[0].Notes)
	s.NotEmpty(*runs[0].Notes)
}

func (s *GenerationServiceSuite) TestGenerateForDateWeeklySubscription() {
	// 2026-03-16 is a Monday; a 2-week subscription started 4 weeks earlier
	// is due on it
	weekly := &subscription.Subscription{
		ID:                 "subs-2",
		CustomerID:         s.testData.customer.ID,
		AgreedValue:        decimal.NewFromInt(40000),
		FrequencyType:      types.BillingFrequencyWeeks,
		FrequencyValue:     lo.ToPtr(2),
		StartDate:          time.Date(2026, time.February, 16, 0, 0, 0, 0, time.UTC),
		SubscriptionStatus: types.SubscriptionStatusActive,
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}
	s.NoError(s.GetStores().SubRepo.Create(s.GetContext(), weekly))

	billingDate := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	result, err := s.service.GenerateForDate(s.GetContext(), billingDate)
	s.NoError(err)
	s.Equal(1, result.EligibleCount)
	s.Equal(1, result.CreatedCount)

	invoices := s.listInvoicesForDate(billingDate)
	s.Require().Len(invoices, 1)
	s.Equal("subs-2", invoices[0].SubscriptionID)
}
