package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tiltakhub/participant-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodActiveOpenEnded(t *testing.T) {
	period := models.EnrollmentPeriod{Start: date(2023, 2, 1)}

	assert.False(t, PeriodActive(period, date(2023, 1, 31)))
	assert.True(t, PeriodActive(period, date(2023, 2, 1)))
	assert.True(t, PeriodActive(period, date(2024, 7, 19)))
}

func TestPeriodActiveClosed(t *testing.T) {
	end := date(2023, 6, 1)
	period := models.EnrollmentPeriod{Start: date(2023, 2, 1), End: &end}

	assert.True(t, PeriodActive(period, date(2023, 5, 31)))
	assert.False(t, PeriodActive(period, date(2023, 6, 1)))
	assert.False(t, PeriodActive(period, date(2023, 6, 2)))
}

func TestPeriodActiveIgnoresTimeOfDay(t *testing.T) {
	end := date(2023, 6, 1)
	period := models.EnrollmentPeriod{
		Start: time.Date(2023, 2, 1, 23, 59, 0, 0, time.UTC),
		End:   &end,
	}

	// The start day counts even when the period starts late in the day.
	assert.True(t, PeriodActive(period, time.Date(2023, 2, 1, 8, 0, 0, 0, time.UTC)))
	assert.False(t, PeriodActive(period, time.Date(2023, 6, 1, 0, 0, 1, 0, time.UTC)))
}

func TestAnyPeriodActive(t *testing.T) {
	closedEnd := date(2023, 3, 1)
	periods := []models.EnrollmentPeriod{
		{Start: date(2023, 1, 1), End: &closedEnd},
		{Start: date(2023, 5, 1)},
	}

	assert.False(t, AnyPeriodActive(periods, date(2023, 4, 1)))
	assert.True(t, AnyPeriodActive(periods, date(2023, 5, 1)))
	assert.False(t, AnyPeriodActive(nil, date(2023, 5, 1)))
}
