package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/billrun/billrun/internal/types"
)

// Subscription represents a customer's subscribed service package with a
// recurring charge schedule
type Subscription struct {
	ID                 string                   `db:"id" json:"id"`
	CustomerID         string                   `db:"customer_id" json:"customer_id"`
	AgreedValue        decimal.Decimal          `db:"agreed_value" json:"agreed_value"`
	BillingDay         *int                     `db:"billing_day" json:"billing_day,omitempty"`
	FrequencyType      types.BillingFrequency   `db:"frequency_type" json:"frequency_type"`
	FrequencyValue     *int                     `db:"frequency_value" json:"frequency_value,omitempty"`
	StartDate          time.Time                `db:"start_date" json:"start_date"`
	EndDate            *time.Time               `db:"end_date" json:"end_date,omitempty"`
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	GracePeriodDays    *int                     `db:"grace_period_days" json:"grace_period_days,omitempty"`
	ServiceLines       []*ServiceLine           `json:"service_lines,omitempty"`
	types.BaseModel
}

// ServiceLine is a single service included in the subscription package
type ServiceLine struct {
	ID             string          `db:"id" json:"id"`
	SubscriptionID string          `db:"subscription_id" json:"subscription_id"`
	Name           string          `db:"name" json:"name"`
	OriginalValue  decimal.Decimal `db:"original_value" json:"original_value"`
	AgreedValue    decimal.Decimal `db:"agreed_value" json:"agreed_value"`
	types.BaseModel
}

// IsDueOn reports whether the subscription is due for billing on the target
// calendar date. The rule is pure and deterministic:
//   - never due before StartDate or after EndDate (when set)
//   - MONTHLY: due when BillingDay matches the target's day of month
//   - WEEKS with FrequencyValue N > 0: due when the target falls on the same
//     weekday as StartDate and a whole number of N-week cycles has elapsed
//
// Any other frequency, or WEEKS without a positive FrequencyValue, is never due.
func (s *Subscription) IsDueOn(target time.Time) bool {
	target = types.StartOfDay(target)
	start := types.StartOfDay(s.StartDate)

	if start.After(target) {
		return false
	}
	if s.EndDate != nil && types.StartOfDay(*s.EndDate).Before(target) {
		return false
	}

	switch s.FrequencyType {
	case types.BillingFrequencyMonthly:
		return s.BillingDay != nil && *s.BillingDay == target.Day()
	case types.BillingFrequencyWeeks:
		if s.FrequencyValue == nil || *s.FrequencyValue <= 0 {
			return false
		}
		if start.Weekday() != target.Weekday() {
			return false
		}
		days := types.WholeDaysBetween(start, target)
		if days < 0 || days%7 != 0 {
			return false
		}
		return (days/7)%*s.FrequencyValue == 0
	default:
		return false
	}
}

// DueDate computes the payment due date for an invoice billed on billingDate,
// extending it by the subscription's grace period when one is set
func (s *Subscription) DueDate(billingDate time.Time) time.Time {
	due := types.StartOfDay(billingDate)
	if s.GracePeriodDays != nil && *s.GracePeriodDays > 0 {
		due = due.AddDate(0, 0, *s.GracePeriodDays)
	}
	return due
}

// ActiveServiceLines returns the service lines that are still published
func (s *Subscription) ActiveServiceLines() []*ServiceLine {
	lines := make([]*ServiceLine, 0, len(s.ServiceLines))
	for _, line := range s.ServiceLines {
		if line.Status == types.StatusPublished {
			lines = append(lines, line)
		}
	}
	return lines
}
