package tenant

import (
	"github.com/billrun/billrun/internal/types"
)

// Tenant represents the tenant domain model
type Tenant struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	types.BaseModel
}
