package types

// ProcessKind identifies the kind of scheduled run recorded in the audit table
type ProcessKind string

const (
	ProcessKindInvoiceGeneration ProcessKind = "INVOICE_GENERATION"
)

// ProcessStatus is the state of a generation run.
// A run transitions IN_PROGRESS -> SUCCESS or IN_PROGRESS -> FAILED exactly once;
// terminal states are never mutated.
type ProcessStatus string

const (
	ProcessStatusInProgress ProcessStatus = "IN_PROGRESS"
	ProcessStatusSuccess    ProcessStatus = "SUCCESS"
	ProcessStatusFailed     ProcessStatus = "FAILED"
)

// IsTerminal reports whether the status is a terminal state
func (s ProcessStatus) IsTerminal() bool {
	return s == ProcessStatusSuccess || s == ProcessStatusFailed
}
