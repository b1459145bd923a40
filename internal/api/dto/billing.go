package dto

import (
	"time"

	ierr "github.com/billrun/billrun/internal/errors"
)

// GenerateInvoicesRequest triggers a generation run. When DaysAhead is nil the
// configured lead is used; the billing date is today plus the lead, in the
// billing timezone.
type GenerateInvoicesRequest struct {
	DaysAhead *int `json:"daysAhead" binding:"omitempty,min=0"`
}

// BatchRequest names the billing date a fulfillment batch should cover
type BatchRequest struct {
	Date string `json:"date" binding:"required"`
}

// ParseDate parses the request date in the given location
func (r *BatchRequest) ParseDate(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", r.Date, loc)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHint("date must be in YYYY-MM-DD format").
			Mark(ierr.ErrValidation)
	}
	return t, nil
}

// TriggerResponse acknowledges that a background run was started. Triggers
// never carry the run's outcome; that lives in the process audit records and
// the logs.
type TriggerResponse struct {
	BillingDate string `json:"billingDate"`
	Status      string `json:"status"`
}

// TriggerAccepted builds the acknowledgment for a detached run
func TriggerAccepted(billingDate time.Time) TriggerResponse {
	return TriggerResponse{
		BillingDate: billingDate.Format("2006-01-02"),
		Status:      "accepted",
	}
}
