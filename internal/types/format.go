package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatCurrencyCOP renders an amount the way the es-CO locale does for COP,
// e.g. 1234567.89 -> "$ 1.234.567,89". Customer-facing documents and emails
// rely on this exact shape.
func FormatCurrencyCOP(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s$ %s,%s", sign, grouped.String(), fracPart)
}

// FormatLongDate renders t as a Spanish long date, e.g. "15 de marzo de 2024".
// Billing dates are already normalized to midnight UTC, so no timezone
// conversion happens here.
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}
