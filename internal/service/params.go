package service

import (
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
	"github.com/billrun/billrun/internal/notifications"
	"github.com/billrun/billrun/internal/payments"
	"github.com/billrun/billrun/internal/pdfrender"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/publisher"
	"github.com/billrun/billrun/internal/storage"
	"github.com/billrun/billrun/internal/template"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Storage storage.Storage
	Cache   cache.Cache

	// template rendering for email bodies and variable maps
	Renderer template.Renderer

	// Repositories
	TenantRepo   tenant.Repository
	CustomerRepo customer.Repository
	SubRepo      subscription.Repository
	ChargeRepo   charge.Repository
	InvoiceRepo  invoice.Repository
	ProcessRepo  process.Repository
	TemplateRepo domainTemplate.Repository

	// Publishers
	EventPublisher publisher.EventPublisher

	// outbound collaborators
	PaymentsClient      payments.Client
	PdfRenderClient     pdfrender.Client
	NotificationsClient notifications.Client
}

// NewServiceParams assembles the shared dependency bundle
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	storage storage.Storage,
	cache cache.Cache,
	renderer template.Renderer,
	tenantRepo tenant.Repository,
	customerRepo customer.Repository,
	subRepo subscription.Repository,
	chargeRepo charge.Repository,
	invoiceRepo invoice.Repository,
	processRepo process.Repository,
	templateRepo domainTemplate.Repository,
	eventPublisher publisher.EventPublisher,
	paymentsClient payments.Client,
	pdfRenderClient pdfrender.Client,
	notificationsClient notifications.Client,
) ServiceParams {
	return ServiceParams{
		Logger:              logger,
		Config:              config,
		DB:                  db,
		Storage:             storage,
		Cache:               cache,
		Renderer:            renderer,
		TenantRepo:          tenantRepo,
		CustomerRepo:        customerRepo,
		SubRepo:             subRepo,
		ChargeRepo:          chargeRepo,
		InvoiceRepo:         invoiceRepo,
		ProcessRepo:         processRepo,
		TemplateRepo:        templateRepo,
		EventPublisher:      eventPublisher,
		PaymentsClient:      paymentsClient,
		PdfRenderClient:     pdfRenderClient,
		NotificationsClient: notificationsClient,
	}
}
