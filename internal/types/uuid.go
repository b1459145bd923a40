package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_TENANT            = "tenant"
	UUID_PREFIX_CUSTOMER          = "cust"
	UUID_PREFIX_SUBSCRIPTION      = "subs"
	UUID_PREFIX_SERVICE_LINE      = "subs_line"
	UUID_PREFIX_CHARGE            = "chrg"
	UUID_PREFIX_INVOICE           = "inv"
	UUID_PREFIX_INVOICE_LINE_ITEM = "inv_line"
	UUID_PREFIX_GENERATION_RUN    = "run"
	UUID_PREFIX_TEMPLATE          = "tmpl"
)
