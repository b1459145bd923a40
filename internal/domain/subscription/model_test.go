package subscription

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/billrun/billrun/internal/types"
)

func TestIsDueOnMonthly(t *testing.T) {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		billingDay *int
		endDate    *time.Time
		target     time.Time
		expected   bool
	}{
		{
			name:       "billing_day_matches",
			billingDay: lo.ToPtr(15),
			target:     time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			expected:   true,
		},
		{
			name:       "billing_day_does_not_match",
			billingDay: lo.ToPtr(15),
			target:     time.Date(2026, time.January, 16, 0, 0, 0, 0, time.UTC),
			expected:   false,
		},
		{
			name:       "before_start_date",
			billingDay: lo.ToPtr(15),
			target:     time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC),
			expected:   false,
		},
		{
			name:       "after_end_date",
			billingDay: lo.ToPtr(15),
			endDate:    lo.ToPtr(time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)),
			target:     time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			expected:   false,
		},
		{
			name:       "on_end_date",
			billingDay: lo.ToPtr(15),
			endDate:    lo.ToPtr(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)),
			target:     time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			expected:   true,
		},
		{
			name:       "nil_billing_day_never_due",
			billingDay: nil,
			target:     time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
			expected:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub := &Subscription{
				FrequencyType: types.BillingFrequencyMonthly,
				BillingDay:    tc.billingDay,
				StartDate:     start,
				EndDate:       tc.endDate,
			}
			assert.Equal(t, tc.expected, sub.IsDueOn(tc.target))
		})
	}
}

func TestIsDueOnWeeks(t *testing.T) {
	// 2026-01-05 is a Monday
	start := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name           string
		frequencyValue *int
		target         time.Time
		expected       bool
	}{
		{
			name:           "due_on_start_date",
			frequencyValue: lo.ToPtr(2),
			target:         start,
			expected:       true,
		},
		{
			name:           "due_after_one_full_cycle",
			frequencyValue: lo.ToPtr(2),
			target:         start.AddDate(0, 0, 14),
			expected:       true,
		},
		{
			name:           "not_due_mid_cycle",
			frequencyValue: lo.ToPtr(2),
			target:         start.AddDate(0, 0, 7),
			expected:       false,
		},
		{
			name:           "not_due_on_other_weekday",
			frequencyValue: lo.ToPtr(2),
			target:         start.AddDate(0, 0, 15),
			expected:       false,
		},
		{
			name:           "weekly_due_every_monday",
			frequencyValue: lo.ToPtr(1),
			target:         start.AddDate(0, 0, 7),
			expected:       true,
		},
		{
			name:           "nil_frequency_value_never_due",
			frequencyValue: nil,
			target:         start.AddDate(0, 0, 14),
			expected:       false,
		},
		{
			name:           "zero_frequency_value_never_due",
			frequencyValue: lo.ToPtr(0),
			target:         start.AddDate(0, 0, 14),
			expected:       false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub := &Subscription{
				FrequencyType:  types.BillingFrequencyWeeks,
				FrequencyValue: tc.frequencyValue,
				StartDate:      start,
			}
			assert.Equal(t, tc.expected, sub.IsDueOn(tc.target))
		})
	}
}

func TestIsDueOnIgnoresTimeOfDay(t *testing.T) {
	sub := &Subscription{
		FrequencyType: types.BillingFrequencyMonthly,
		BillingDay:    lo.ToPtr(10),
		StartDate:     time.Date(2025, time.January, 10, 18, 45, 0, 0, time.UTC),
	}

	target := time.Date(2025, time.January, 10, 3, 0, 0, 0, time.UTC)
	assert.True(t, sub.IsDueOn(target))
}

func TestIsDueOnUnknownFrequency(t *testing.T) {
	sub := &Subscription{
		FrequencyType: types.BillingFrequency("DAILY"),
		StartDate:     time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.False(t, sub.IsDueOn(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDueDate(t *testing.T) {
	billingDate := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	noGrace := &Subscription{}
	assert.Equal(t, billingDate, noGrace.DueDate(billingDate))

	withGrace := &Subscription{GracePeriodDays: lo.ToPtr(5)}
	assert.Equal(t, billingDate.AddDate(0, 0, 5), withGrace.DueDate(billingDate))

	zeroGrace := &Subscription{GracePeriodDays: lo.ToPtr(0)}
	assert.Equal(t, billingDate, zeroGrace.DueDate(billingDate))
}

func TestActiveServiceLines(t *testing.T) {
	sub := &Subscription{
		ServiceLines: []*ServiceLine{
			{ID: "line-1", BaseModel: types.BaseModel{Status: types.StatusPublished}},
			{ID: "line-2", BaseModel: types.BaseModel{Status: types.StatusDeleted}},
			{ID: "line-3", BaseModel: types.BaseModel{Status: types.StatusPublished}},
		},
	}

	active := sub.ActiveServiceLines()
	assert.Len(t, active, 2)
	assert.Equal(t, "line-1", active[0].ID)
	assert.Equal(t, "line-3", active[1].ID)
}
