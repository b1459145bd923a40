package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/billrun/billrun/internal/api/v1"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Billing *v1.BillingHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/generate", handlers.Billing.GenerateInvoices)
		billing.POST("/pdfs", handlers.Billing.RenderPdfs)
		billing.POST("/emails", handlers.Billing.SendEmails)
		billing.POST("/delinquency", handlers.Billing.MarkDelinquent)
	}
}
