package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/billrun/billrun/internal/api"
	v1 "github.com/billrun/billrun/internal/api/v1"
	"github.com/billrun/billrun/internal/cache"
	"github.com/billrun/billrun/internal/config"
	"github.com/billrun/billrun/internal/httpclient"
	"github.com/billrun/billrun/internal/kafka"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/notifications"
	"github.com/billrun/billrun/internal/payments"
	"github.com/billrun/billrun/internal/pdfrender"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/publisher"
	"github.com/billrun/billrun/internal/pubsub"
	pubsubKafka "github.com/billrun/billrun/internal/pubsub/kafka"
	pubsubMemory "github.com/billrun/billrun/internal/pubsub/memory"
	pubsubRouter "github.com/billrun/billrun/internal/pubsub/router"
	"github.com/billrun/billrun/internal/repository"
	"github.com/billrun/billrun/internal/sentry"
	"github.com/billrun/billrun/internal/service"
	"github.com/billrun/billrun/internal/storage"
	"github.com/billrun/billrun/internal/template"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		// Monitoring
		sentry.Module(),

		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// PDF storage
			storage.NewStorage,

			// Template rendering
			template.NewRenderer,

			// Messaging
			providePubSub,
			providePublisher,
			pubsubRouter.NewRouter,

			// Outbound HTTP
			provideHTTPClient,
			payments.NewClient,
			pdfrender.NewClient,
			notifications.NewClient,

			// Repositories
			repository.NewTenantRepository,
			repository.NewCustomerRepository,
			repository.NewSubscriptionRepository,
			repository.NewChargeRepository,
			repository.NewInvoiceRepository,
			repository.NewProcessRepository,
			repository.NewTemplateRepository,

			// Services
			service.NewServiceParams,
			service.NewGenerationService,
			service.NewPdfBatchService,
			service.NewEmailBatchService,
			service.NewDelinquencyService,
			provideDispatcher,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app.Run()
}

// providePubSub selects the messaging backend. Local deployments can run on
// the in-process channel pubsub; everything else goes through Kafka.
func providePubSub(cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	if cfg.PubSub.InMemory {
		return pubsubMemory.NewPubSub(log), nil
	}

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}
	consumer, err := kafka.NewConsumer(cfg)
	if err != nil {
		return nil, err
	}
	return pubsubKafka.NewPubSub(log, producer, consumer), nil
}

func providePublisher(ps pubsub.PubSub, log *logger.Logger) publisher.EventPublisher {
	return publisher.NewEventPublisher(ps, log)
}

func provideHTTPClient(cfg *config.Configuration) httpclient.Client {
	return httpclient.NewDefaultClient(cfg.Services.Timeout)
}

func provideDispatcher(
	pdfService service.PdfBatchService,
	emailService service.EmailBatchService,
	ps pubsub.PubSub,
	log *logger.Logger,
) *service.FulfillmentDispatcher {
	return service.NewFulfillmentDispatcher(pdfService, emailService, ps, log)
}

func provideHandlers(
	cfg *config.Configuration,
	log *logger.Logger,
	generationService service.GenerationService,
	pdfBatchService service.PdfBatchService,
	emailBatchService service.EmailBatchService,
	delinquencyService service.DelinquencyService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(log),
		Billing: v1.NewBillingHandler(generationService, pdfBatchService, emailBatchService, delinquencyService, cfg, log),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	dispatcher *service.FulfillmentDispatcher,
	log *logger.Logger,
) {
	dispatcher.RegisterHandlers(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting api server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			go func() {
				if err := router.Run(); err != nil {
					log.Fatalf("failed to run message router: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down")
			return router.Close()
		},
	})
}
