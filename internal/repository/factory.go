package repository

import (
	"github.com/billrun/billrun/internal/domain/charge"
	"github.com/billrun/billrun/internal/domain/customer"
	"github.com/billrun/billrun/internal/domain/invoice"
	"github.com/billrun/billrun/internal/domain/process"
	"github.com/billrun/billrun/internal/domain/subscription"
	"github.com/billrun/billrun/internal/domain/template"
	"github.com/billrun/billrun/internal/domain/tenant"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	postgresRepo "github.com/billrun/billrun/internal/repository/postgres"
)

func NewTenantRepository(client postgres.IClient, logger *logger.Logger) tenant.Repository {
	return postgresRepo.NewTenantRepository(client, logger)
}

func NewCustomerRepository(client postgres.IClient, logger *logger.Logger) customer.Repository {
	return postgresRepo.NewCustomerRepository(client, logger)
}

func NewSubscriptionRepository(client postgres.IClient, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(client, logger)
}

func NewChargeRepository(client postgres.IClient, logger *logger.Logger) charge.Repository {
	return postgresRepo.NewChargeRepository(client, logger)
}

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(client, logger)
}

func NewProcessRepository(client postgres.IClient, logger *logger.Logger) process.Repository {
	return postgresRepo.NewProcessRepository(client, logger)
}

func NewTemplateRepository(client postgres.IClient, logger *logger.Logger) template.Repository {
	return postgresRepo.NewTemplateRepository(client, logger)
}
