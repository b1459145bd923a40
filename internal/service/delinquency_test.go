package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/billrun/billrun/internal/domain/invoice"
	"github.com/billrun/billrun/internal/testutil"
	"github.com/billrun/billrun/internal/types"
)

type DelinquencyServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     DelinquencyService
	invoiceRepo *testutil.InMemoryInvoiceStore
}

func TestDelinquencyService(t *testing.T) {
	suite.Run(t, new(DelinquencyServiceSuite))
}

func (s *DelinquencyServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.invoiceRepo = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	s.service = NewDelinquencyService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		InvoiceRepo: s.invoiceRepo,
	})
}

func (s *DelinquencyServiceSuite) seedInvoice(id string, billingDate time.Time, status types.InvoiceStatus) {
	s.NoError(s.invoiceRepo.CreateWithLineItems(s.GetContext(), &invoice.Invoice{
		ID:             id,
		CustomerID:     "cust-1",
		SubscriptionID: "subs-1",
		BillingDate:    billingDate,
		TotalValue:     decimal.NewFromInt(50000),
		PackageValue:   decimal.NewFromInt(50000),
		InvoiceStatus:  status,
		BaseModel: types.BaseModel{
			TenantID: types.DefaultTenantID,
			Status:   types.StatusPublished,
		},
	}))
}

func (s *DelinquencyServiceSuite) TestMarkOverdue() {
	today := types.StartOfDay(time.Now().UTC())

	s.seedInvoice("inv-old-pending", today.AddDate(0, 0, -30), types.InvoiceStatusPending)
	s.seedInvoice("inv-yesterday-pending", today.AddDate(0, 0, -1), types.InvoiceStatusPending)
	s.seedInvoice("inv-today-pending", today, types.InvoiceStatusPending)
	s.seedInvoice("inv-old-paid", today.AddDate(0, 0, -30), types.InvoiceStatusPaid)
	s.seedInvoice("inv-old-delinquent", today.AddDate(0, 0, -60), types.InvoiceStatusDelinquent)

	count, err := s.service.MarkOverdue(s.GetContext())
	s.NoError(err)
	s.Equal(2, count)

	s.assertStatus("inv-old-pending", types.InvoiceStatusDelinquent)
	s.assertStatus("inv-yesterday-pending", types.InvoiceStatusDelinquent)
	s.assertStatus("inv-today-pending", types.InvoiceStatusPending)
	s.assertStatus("inv-old-paid", types.InvoiceStatusPaid)
	s.assertStatus("inv-old-delinquent", types.InvoiceStatusDelinquent)
}

func (s *DelinquencyServiceSuite) TestMarkOverdueIsIdempotent() {
	today := types.StartOfDay(time.Now().UTC())
	s.seedInvoice("inv-1", today.AddDate(0, 0, -10), types.InvoiceStatusPending)

	first, err := s.service.MarkOverdue(s.GetContext())
	s.NoError(err)
	s.Equal(1, first)

	second, err := s.service.MarkOverdue(s.GetContext())
	s.NoError(err)
	s.Equal(0, second)
}

func (s *DelinquencyServiceSuite) TestMarkOverdueEmptyStore() {
	count, err := s.service.MarkOverdue(s.GetContext())
	s.NoError(err)
	s.Equal(0, count)
}

func (s *DelinquencyServiceSuite) assertStatus(id string, expected types.InvoiceStatus) {
	inv, err := s.invoiceRepo.Get(s.GetContext(), id)
	s.NoError(err)
	s.Equal(expected, inv.InvoiceStatus)
}
