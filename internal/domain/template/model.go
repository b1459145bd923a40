package template

import (
	"github.com/billrun/billrun/internal/types"
)

// Template holds the tenant's email and PDF templates for a document type
type Template struct {
	ID            string  `db:"id" json:"id"`
	Type          string  `db:"type" json:"type"`
	EmailTemplate string  `db:"email_template" json:"email_template"`
	PDFTemplate   *string `db:"pdf_template" json:"pdf_template,omitempty"`
	PDFOutputPath *string `db:"pdf_output_path" json:"pdf_output_path,omitempty"`
	Active        bool    `db:"active" json:"active"`
	types.BaseModel
}

// CanRenderPDF reports whether the template carries everything the PDF
// renderer needs
func (t *Template) CanRenderPDF() bool {
	return t.PDFTemplate != nil && *t.PDFTemplate != "" &&
		t.PDFOutputPath != nil && *t.PDFOutputPath != ""
}
