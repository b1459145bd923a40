package customer

import (
	"strings"

	"github.com/billrun/billrun/internal/types"
)

// Customer represents the customer domain model
type Customer struct {
	ID             string `db:"id" json:"id"`
	FirstName      string `db:"first_name" json:"first_name"`
	LastName       string `db:"last_name" json:"last_name"`
	Email          string `db:"email" json:"email"`
	Phone          string `db:"phone" json:"phone"`
	Identification string `db:"identification" json:"identification"`
	types.BaseModel
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
