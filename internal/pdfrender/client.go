package pdfrender

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

// Client talks to the PDF rendering service
type Client interface {
	Render(ctx context.Context, req *RenderRequest) (string, error)
}

// RenderRequest is the rendering service contract. Data carries the already
// substituted template variables.
type RenderRequest struct {
	Template    string            `json:"template"`
	Data        map[string]string `json:"data"`
	OutputPath  string            `json:"outputPath"`
	FileName    string            `json:"fileName"`
	HasPassword bool              `json:"hasPassword"`
}

type renderResponse struct {
	PdfURL string `json:"pdfUrl"`
}

type client struct {
	baseURL    string
	httpClient httpclient.Client
	logger     *logger.Logger
}

// NewClient creates a PDF rendering client
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, logger *logger.Logger) Client {
	return &client{
		baseURL:    cfg.Services.PdfRenderBaseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *client) Render(ctx context.Context, req *RenderRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to marshal render request").
			Mark(ierr.ErrSystem)
	}

	httpReq := &httpclient.Request{
		Method: "POST",
		URL:    fmt.Sprintf("%s/v1/render", c.baseURL),
		Body:   payload,
	}

	resp, err := c.httpClient.Send(ctx, httpReq)
	if err != nil {
		return "", ierr.WithError(err).
			WithHintf("failed to render pdf %s", req.FileName).
			Mark(ierr.ErrHTTPClient)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Errorw("pdf render service error",
			"status", resp.StatusCode,
			"body", string(resp.Body),
			"file_name", req.FileName)
		return "", ierr.NewError("failed to render pdf").
			WithHintf("pdf render service returned status %d", resp.StatusCode).
			Mark(ierr.ErrHTTPClient)
	}

	var out renderResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to decode render response").
			Mark(ierr.ErrHTTPClient)
	}

	if out.PdfURL == "" {
		return "", ierr.NewError("pdf render service returned empty pdf url").
			Mark(ierr.ErrHTTPClient)
	}

	return out.PdfURL, nil
}
