package reconcile

import (
	"time"

	"github.com/tiltakhub/participant-api/internal/models"
)

// PeriodActive reports whether today falls inside the enrollment period.
// Comparison is at day granularity: the start day itself is active, the end
// day is not.
func PeriodActive(period models.EnrollmentPeriod, today time.Time) bool {
	day := toDay(today)
	if day.Before(toDay(period.Start)) {
		return false
	}
	if period.End != nil && !day.Before(toDay(*period.End)) {
		return false
	}
	return true
}

// AnyPeriodActive reports whether at least one of the periods is active.
func AnyPeriodActive(periods []models.EnrollmentPeriod, today time.Time) bool {
	for _, period := range periods {
		if PeriodActive(period, today) {
			return true
		}
	}
	return false
}

func toDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
