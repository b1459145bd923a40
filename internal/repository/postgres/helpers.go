package postgres

import (
	"github.com/lib/pq"
)

// pqStringArray adapts a string slice to a postgres array parameter for
// queries using ANY($n)
func pqStringArray(values []string) interface{} {
	return pq.Array(values)
}
