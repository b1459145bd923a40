package postgres

import (
	"context"
	"database/sql"

	"github.com/billrun/billrun/internal/domain/template"
	ierr "github.com/billrun/billrun/internal/errors"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/postgres"
	"github.com/billrun/billrun/internal/types"
)

type templateRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewTemplateRepository(client postgres.IClient, logger *logger.Logger) template.Repository {
	return &templateRepository{client: client, logger: logger}
}

func (r *templateRepository) Create(ctx context.Context, t *template.Template) error {
	query := `
	INSERT INTO templates (
		id, type, email_template, pdf_template, pdf_output_path, active,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	)
	`

	_, err := r.client.Querier(ctx).ExecContext(ctx, query,
		t.ID,
		t.Type,
		t.EmailTemplate,
		t.PDFTemplate,
		t.PDFOutputPath,
		t.Active,
		t.TenantID,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
		t.CreatedBy,
		t.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("failed to insert template %s", t.ID).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *templateRepository) GetActiveByType(ctx context.Context, tenantID, templateType string) (*template.Template, error) {
	query := `
	SELECT id, type, email_template, pdf_template, pdf_output_path, active,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	FROM templates
	WHERE tenant_id = $1 AND type = $2 AND active = true AND status = $3
	ORDER BY created_at DESC
	LIMIT 1
	`

	var t template.Template
	err := r.client.Querier(ctx).GetContext(ctx, &t, query, tenantID, templateType, types.StatusPublished)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewErrorf("no active %s template for tenant %s", templateType, tenantID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("failed to get active %s template", templateType).
			Mark(ierr.ErrDatabase)
	}

	return &t, nil
}
