package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	r := NewRenderer()

	out := r.Render("Hola {{cliente.primer_nombre}}, tu cuenta por {{cuenta.valor_total}} vence el {{cuenta.fecha_limite_pago}}.",
		map[string]string{
			"cliente.primer_nombre":   "Laura",
			"cuenta.valor_total":      "$ 1.234.567,89",
			"cuenta.fecha_limite_pago": "05 de septiembre de 2026",
		})

	assert.Equal(t, "Hola Laura, tu cuenta por $ 1.234.567,89 vence el 05 de septiembre de 2026.", out)
}

func TestRenderUnknownPlaceholderBecomesEmpty(t *testing.T) {
	r := NewRenderer()

	out := r.Render("Hola {{cliente.primer_nombre}} {{cliente.segundo_nombre}}!", map[string]string{
		"cliente.primer_nombre": "Laura",
	})

	assert.Equal(t, "Hola Laura !", out)
}

func TestRenderToleratesWhitespaceInsideBraces(t *testing.T) {
	r := NewRenderer()

	out := r.Render("Total: {{ cuenta.valor_total }}", map[string]string{
		"cuenta.valor_total": "$ 50.000,00",
	})

	assert.Equal(t, "Total: $ 50.000,00", out)
}

func TestRenderLeavesPlainTextAlone(t *testing.T) {
	r := NewRenderer()

	assert.Equal(t, "sin variables", r.Render("sin variables", nil))
}
