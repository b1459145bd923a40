package service

import (
	"context"
	"time"

	"github.com/billrun/billrun/internal/cache"
	"github.com/billrun/billrun/internal/domain/customer"
	"github.com/billrun/billrun/internal/domain/invoice"
	domainTemplate "github.com/billrun/billrun/internal/domain/template"
	"github.com/billrun/billrun/internal/types"
)

// identityDocumentType is the document type sent to the payment provider for
// Colombian national IDs
const identityDocumentType = "CC"

const paymentReferencePrefix = "CC-"

func (p ServiceParams) tenantName(ctx context.Context, tenantID string) (string, error) {
	key := cache.GenerateKey(cache.PrefixTenant, tenantID)
	if cached, ok := p.Cache.Get(ctx, key); ok {
		if name, ok := cached.(string); ok {
			return name, nil
		}
	}

	t, err := p.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}

	p.Cache.Set(ctx, key, t.Name, cache.DefaultExpiration)
	return t.Name, nil
}

func (p ServiceParams) activeInvoiceTemplate(ctx context.Context, tenantID string) (*domainTemplate.Template, error) {
	key := cache.GenerateKey(cache.PrefixTemplate, tenantID, types.TemplateTypeInvoice)
	if cached, ok := p.Cache.Get(ctx, key); ok {
		if tpl, ok := cached.(*domainTemplate.Template); ok {
			return tpl, nil
		}
	}

	tpl, err := p.TemplateRepo.GetActiveByType(ctx, tenantID, types.TemplateTypeInvoice)
	if err != nil {
		return nil, err
	}

	p.Cache.Set(ctx, key, tpl, cache.DefaultExpiration)
	return tpl, nil
}

// invoiceVars builds the substitution map shared by the PDF and email
// templates. Amounts and dates are formatted for the es-CO locale.
func invoiceVars(inv *invoice.Invoice, cust *customer.Customer, tenantName string, dueDate time.Time) map[string]string {
	vars := map[string]string{
		"cliente.primer_nombre":    cust.FirstName,
		"cliente.primer_apellido":  cust.LastName,
		"cliente.nombre":           cust.FullName(),
		"cliente.identificacion":   cust.Identification,
		"empresa.nombre":           tenantName,
		"cuenta.id":                inv.ID,
		"cuenta.valor_total":       types.FormatCurrencyCOP(inv.TotalValue),
		"cuenta.fecha_emision":     types.FormatLongDate(inv.BillingDate),
		"cuenta.fecha_limite_pago": types.FormatLongDate(dueDate),
	}
	// older stored email templates use the cuentaCobro naming
	vars["cuentaCobro.valorTotal"] = vars["cuenta.valor_total"]
	vars["cuentaCobro.fechaCobro"] = vars["cuenta.fecha_emision"]
	if inv.PaymentLink != nil {
		vars["cuenta.link_pago"] = *inv.PaymentLink
	}
	if inv.PDFURL != nil {
		vars["urlPdf"] = *inv.PDFURL
	}
	return vars
}
