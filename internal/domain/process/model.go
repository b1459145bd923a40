package process

import (
	"time"

	"github.com/billrun/billrun/internal/types"
)

// Process is the audit record of one scheduled generation run
type Process struct {
	ID            string              `db:"id" json:"id"`
	ProcessKind   types.ProcessKind   `db:"process_kind" json:"process_kind"`
	ProcessStatus types.ProcessStatus `db:"process_status" json:"process_status"`
	TargetDay     int                 `db:"target_day" json:"target_day"`
	StartedAt     time.Time           `db:"started_at" json:"started_at"`
	FinishedAt    *time.Time          `db:"finished_at" json:"finished_at,omitempty"`
	CreatedCount  int                 `db:"created_count" json:"created_count"`
	Notes         *string             `db:"notes" json:"notes,omitempty"`
	types.BaseModel
}

// New opens a run record in IN_PROGRESS for the given kind and target day
func New(kind types.ProcessKind, targetDay int) *Process {
	return &Process{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_GENERATION_RUN),
		ProcessKind:   kind,
		ProcessStatus: types.ProcessStatusInProgress,
		TargetDay:     targetDay,
		StartedAt:     time.Now().UTC(),
	}
}
