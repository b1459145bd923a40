package batch

import (
	"errors"
	"fmt"
)

// Skipped records an item that was intentionally left unprocessed
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Failure records an item whose handler returned an unexpected error
type Failure struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
}

// Result is the outcome of a pipeline run. Counts are exact: every fetched
// item lands in exactly one of the three buckets.
type Result struct {
	Succeeded int       `json:"succeeded"`
	Skipped   []Skipped `json:"skipped"`
	Failed    []Failure `json:"failed"`
}

// NewResult returns an empty result
func NewResult() *Result {
	return &Result{
		Skipped: make([]Skipped, 0),
		Failed:  make([]Failure, 0),
	}
}

// Processed returns the total number of items the run looked at
func (r *Result) Processed() int {
	return r.Succeeded + len(r.Skipped) + len(r.Failed)
}

// HasFailures reports whether any item failed
func (r *Result) HasFailures() bool {
	return len(r.Failed) > 0
}

// Summary renders a one-line human readable summary for logs and responses
func (r *Result) Summary() string {
	return fmt.Sprintf("succeeded=%d skipped=%d failed=%d",
		r.Succeeded, len(r.Skipped), len(r.Failed))
}

type skipError struct {
	reason string
}

func (e *skipError) Error() string {
	return "skipped: " + e.reason
}

// Skip builds the sentinel error a handler returns when an item must be
// left alone rather than treated as a failure
func Skip(reason string) error {
	return &skipError{reason: reason}
}

// Skipf is Skip with formatting
func Skipf(format string, args ...any) error {
	return &skipError{reason: fmt.Sprintf(format, args...)}
}

// SkipReason extracts the skip reason when err came from Skip
func SkipReason(err error) (string, bool) {
	var se *skipError
	if errors.As(err, &se) {
		return se.reason, true
	}
	return "", false
}
