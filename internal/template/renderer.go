package template

import (
	"regexp"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// Renderer substitutes {{key}} placeholders in a template body. Keys may be
// dotted, e.g. {{cliente.primer_nombre}}. Unknown placeholders are replaced
// with the empty string so a stale template never leaks braces to a customer.
type Renderer interface {
	Render(template string, vars map[string]string) string
}

type renderer struct{}

// NewRenderer creates the placeholder renderer
func NewRenderer() Renderer {
	return &renderer{}
}

func (r *renderer) Render(template string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		return vars[key]
	})
}
