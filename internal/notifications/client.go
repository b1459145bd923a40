package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/billrun/billrun/internal/config"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/httpclient"
	"github.com/billrun/billrun/internal/logger"
)

// Client talks to the notification service that delivers customer email
type Client interface {
	SendEmail(ctx context.Context, req *SendEmailRequest) error
}

// Attachment is a file attached to an outgoing email
type Attachment struct {
	FileName      string `json:"fileName"`
	Base64Content string `json:"base64Content"`
}

// SendEmailRequest is the notification service contract
type SendEmailRequest struct {
	Recipient  string      `json:"recipient"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	BodyType   string      `json:"bodyType"`
	PdfURL     string      `json:"pdfUrl,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

type sendEmailResponse struct {
	Sent bool `json:"sent"`
}

type client struct {
	baseURL    string
	httpClient httpclient.Client
	logger     *logger.Logger
}

// NewClient creates a notification service client
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, logger *logger.Logger) Client {
	return &client{
		baseURL:    cfg.Services.NotificationsBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *client) SendEmail(ctx context.Context, req *SendEmailRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to marshal email request").
			Mark(ierr.ErrSystem)
	}

	httpReq := &httpclient.Request{
		Method: "POST",
		URL:    fmt.Sprintf("%s/v1/emails", c.baseURL),
		Body:   payload,
	}

	resp, err := c.httpClient.Send(ctx, httpReq)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to send email to %s", req.Recipient).
			Mark(ierr.ErrHTTPClient)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		c.logger.Errorw("notification service error",
			"status", resp.StatusCode,
			"body", string(resp.Body),
			"recipient", req.Recipient)
		return ierr.NewError("failed to send email").
			WithHintf("notification service returned status %d", resp.StatusCode).
			Mark(ierr.ErrHTTPClient)
	}

	var out sendEmailResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return ierr.WithError(err).
			WithHint("failed to decode email response").
			Mark(ierr.ErrHTTPClient)
	}

	if !out.Sent {
		return ierr.NewError("notification service did not accept the email").
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}
