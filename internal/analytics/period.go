package analytics

import (
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-dashboard/internal/model"
)

// ValidFrequency reports whether f is a supported schedule frequency.
func ValidFrequency(f string) bool {
	switch f {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyBiweekly, model.FrequencyMonthly:
		return true
	}
	return false
}

// NextDate advances date by one period of frequency. Monthly steps land on
// anchorDay, clamped to the last day of the target month; anchorDay <= 0
// uses the day of date.
func NextDate(date time.Time, frequency string, anchorDay int) (time.Time, error) {
	switch frequency {
	case model.FrequencyDaily:
		return date.AddDate(0, 0, 1), nil
	case model.FrequencyWeekly:
		return date.AddDate(0, 0, 7), nil
	case model.FrequencyBiweekly:
		return date.AddDate(0, 0, 14), nil
	case model.FrequencyMonthly:
		if anchorDay <= 0 {
			anchorDay = date.Day()
		}
		y, m, _ := date.Date()
		firstOfNext := time.Date(y, m+1, 1, 0, 0, 0, 0, date.Location())
		lastDay := firstOfNext.AddDate(0, 1, -1).Day()
		day := min(anchorDay, lastDay)
		return time.Date(firstOfNext.Year(), firstOfNext.Month(), day,
			date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unknown frequency %q", frequency)
	}
}

// Truncate returns midnight UTC of the calendar day t falls on in its own location.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
