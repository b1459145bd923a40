package testutil

import (
	"context"
	"time"

	"github.com/billrun/billrun/internal/cache"
	"github.com/billrun/billrun/internal/config"
	"github.com/billrun/billrun/internal/domain/charge"
	"github.com/billrun/billrun/internal/domain/customer"
	"github.com/billrun/billrun/internal/domain/invoice"
	"github.com/billrun/billrun/internal/domain/process"
	"github.com/billrun/billrun/internal/domain/subscription"
	domainTemplate "github.com/billrun/billrun/internal/domain/template"
	"github.com/billrun/billrun/internal/domain/tenant"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/template"
	"github.com/billrun/billrun/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TenantRepo   tenant.Repository
	CustomerRepo customer.Repository
	SubRepo      subscription.Repository
	ChargeRepo   charge.Repository
	InvoiceRepo  invoice.Repository
	ProcessRepo  process.Repository
	TemplateRepo domainTemplate.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	publisher  *InMemoryEventPublisher
	httpClient *MockHTTPClient
	storage    *InMemoryStorage
	cache      cache.Cache
	renderer   template.Renderer
	db         postgres.IClient
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Services = config.ServicesConfig{
		PaymentsBaseURL:      "http://payments.test",
		PdfRenderBaseURL:     "http://pdfrender.test",
		NotificationsBaseURL: "http://notifications.test",
		Timeout:              5 * time.Second,
	}
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxTenantID, types.DefaultTenantID)
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		TenantRepo:   NewInMemoryTenantStore(),
		CustomerRepo: NewInMemoryCustomerStore(),
		SubRepo:      NewInMemorySubscriptionStore(),
		ChargeRepo:   NewInMemoryChargeStore(),
		InvoiceRepo:  NewInMemoryInvoiceStore(),
		ProcessRepo:  NewInMemoryProcessStore(),
		TemplateRepo: NewInMemoryTemplateStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewInMemoryEventPublisher()
	s.httpClient = NewMockHTTPClient()
	s.storage = NewInMemoryStorage()
	s.cache = cache.NewInMemoryCache()
	s.renderer = template.NewRenderer()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.TenantRepo.(*InMemoryTenantStore).Clear()
	s.stores.CustomerRepo.(*InMemoryCustomerStore).Clear()
	s.stores.SubRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.ChargeRepo.(*InMemoryChargeStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.ProcessRepo.(*InMemoryProcessStore).Clear()
	s.stores.TemplateRepo.(*InMemoryTemplateStore).Clear()
	s.publisher.Clear()
	s.httpClient.Clear()
	s.storage.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the recording event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetHTTPClient returns the mock HTTP client
func (s *BaseServiceTestSuite) GetHTTPClient() *MockHTTPClient {
	return s.httpClient
}

// GetStorage returns the in-memory storage backend
func (s *BaseServiceTestSuite) GetStorage() *InMemoryStorage {
	return s.storage
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetRenderer returns the template renderer
func (s *BaseServiceTestSuite) GetRenderer() template.Renderer {
	return s.renderer
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
