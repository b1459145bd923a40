package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/billrun/billrun/internal/api/dto"
	"github.com/billrun/billrun/internal/batch"
	"github.com/billrun/billrun/internal/config"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/service"
	"github.com/billrun/billrun/internal/types"
)

type BillingHandler struct {
	generation  service.GenerationService
	pdfBatch    service.PdfBatchService
	emailBatch  service.EmailBatchService
	delinquency service.DelinquencyService
	config      *config.Configuration
	logger      *logger.Logger
}

func NewBillingHandler(
	generation service.GenerationService,
	pdfBatch service.PdfBatchService,
	emailBatch service.EmailBatchService,
	delinquency service.DelinquencyService,
	config *config.Configuration,
	logger *logger.Logger,
) *BillingHandler {
	return &BillingHandler{
		generation:  generation,
		pdfBatch:    pdfBatch,
		emailBatch:  emailBatch,
		delinquency: delinquency,
		config:      config,
		logger:      logger,
	}
}

// @Summary Run invoice generation
// @Description Starts a generation run for every subscription due daysAhead from today
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.GenerateInvoicesRequest false "Generation request"
// @Success 202 {object} dto.TriggerResponse
// @Failure 400 {object} ErrorResponse
// @Router /billing/generate [post]
func (h *BillingHandler) GenerateInvoices(c *gin.Context) {
	var req dto.GenerateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		NewErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	daysAhead := h.config.Billing.LeadDays
	if req.DaysAhead != nil {
		daysAhead = *req.DaysAhead
	}

	billingDate := types.StartOfDay(time.Now().In(h.config.Billing.Location()).AddDate(0, 0, daysAhead))

	// the run can take minutes on a large tenant; acknowledge and detach. The
	// request context dies with this response, so the run gets its own.
	go func() {
		if _, err := h.generation.GenerateForDate(context.Background(), billingDate); err != nil {
			h.logger.Errorw("generation run failed",
				"billing_date", billingDate.Format("2006-01-02"),
				"error", err,
			)
		}
	}()

	c.JSON(http.StatusAccepted, dto.TriggerAccepted(billingDate))
}

// @Summary Render pending PDFs
// @Description Starts a batch rendering the PDF for every invoice billed on the given date that has none yet
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.BatchRequest true "Batch request"
// @Success 202 {object} dto.TriggerResponse
// @Failure 400 {object} ErrorResponse
// @Router /billing/pdfs [post]
func (h *BillingHandler) RenderPdfs(c *gin.Context) {
	h.runBatch(c, "pdf batch", h.pdfBatch.RenderPendingForDate)
}

// @Summary Send pending emails
// @Description Starts a batch emailing every invoice billed on the given date that has a PDF and no email yet
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.BatchRequest true "Batch request"
// @Success 202 {object} dto.TriggerResponse
// @Failure 400 {object} ErrorResponse
// @Router /billing/emails [post]
func (h *BillingHandler) SendEmails(c *gin.Context) {
	h.runBatch(c, "email batch", h.emailBatch.SendPendingForDate)
}

func (h *BillingHandler) runBatch(c *gin.Context, name string, run func(context.Context, time.Time) (*batch.Result, error)) {
	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		NewErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	billingDate, err := req.ParseDate(h.config.Billing.Location())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	go func() {
		if _, err := run(context.Background(), billingDate); err != nil {
			h.logger.Errorw(name+" failed",
				"billing_date", billingDate.Format("2006-01-02"),
				"error", err,
			)
		}
	}()

	c.JSON(http.StatusAccepted, dto.TriggerAccepted(billingDate))
}

// @Summary Run the delinquency sweep
// @Description Flags every pending invoice whose billing date has passed as delinquent
// @Tags Billing
// @Produce json
// @Success 204
// @Router /billing/delinquency [post]
func (h *BillingHandler) MarkDelinquent(c *gin.Context) {
	// the sweep is a single bulk statement, but it may still scan a large
	// table; respond immediately and let it run in the background
	go func() {
		if _, err := h.delinquency.MarkOverdue(context.Background()); err != nil {
			h.logger.Errorw("delinquency sweep failed", "error", err)
		}
	}()

	c.Status(http.StatusNoContent)
}
