package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/billrun/billrun/internal/config"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/httpclient"
	"github.com/billrun/billrun/internal/logger"
)

// Client talks to the payment provider to create payment links for invoices
type Client interface {
	CreatePaymentLink(ctx context.Context, req *CreatePaymentLinkRequest) (string, error)
}

// CreatePaymentLinkRequest is the payment provider contract
type CreatePaymentLinkRequest struct {
	InvoiceID            string          `json:"invoiceId"`
	TotalValue           decimal.Decimal `json:"totalValue"`
	Reference            string          `json:"reference"`
	Description          string          `json:"description"`
	ClientEmail          string          `json:"clientEmail"`
	ClientName           string          `json:"clientName"`
	DueDate              string          `json:"dueDate"`
	ClientIdentification string          `json:"clientIdentification"`
	ClientPhone          string          `json:"clientPhone"`
	DocumentType         string          `json:"documentType"`
}

type createPaymentLinkResponse struct {
	PaymentLink string `json:"paymentLink"`
}

type client struct {
	baseURL    string
	httpClient httpclient.Client
	logger     *logger.Logger
}

// NewClient creates a payment provider client
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, logger *logger.Logger) Client {
	return &client{
		baseURL:    cfg.Services.PaymentsBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *client) CreatePaymentLink(ctx context.Context, req *CreatePaymentLinkRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to marshal payment link request").
			Mark(ierr.ErrSystem)
	}

	httpReq := &httpclient.Request{
		Method: "POST",
		URL:    fmt.Sprintf("%s/v1/payment-links", c.baseURL),
		Body:   payload,
	}

	resp, err := c.httpClient.Send(ctx, httpReq)
	if err != nil {
		return "", ierr.WithError(err).
			WithHintf("failed to create payment link for invoice %s", req.InvoiceID).
			Mark(ierr.ErrHTTPClient)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Errorw("payment provider error",
			"status", resp.StatusCode,
			"body", string(resp.Body),
			"invoice_id", req.InvoiceID)
		return "", ierr.NewError("failed to create payment link").
			WithHintf("payment provider returned status %d", resp.StatusCode).
			Mark(ierr.ErrHTTPClient)
	}

	var out createPaymentLinkResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to decode payment link response").
			Mark(ierr.ErrHTTPClient)
	}

	if out.PaymentLink == "" {
		return "", ierr.NewError("payment provider returned empty payment link").
			Mark(ierr.ErrHTTPClient)
	}

	return out.PaymentLink, nil
}
