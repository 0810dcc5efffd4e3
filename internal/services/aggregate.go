package services

import "github.com/dmitrijs2005/waterkeeper/internal/models"

// WeekSpan is how many days before today the weekly window reaches back.
// The boundary day itself is included, so the window covers eight calendar
// days.
const WeekSpan = 7

// ComputeTotal sums u's consumption over window as seen on day today.
//
// A user with an empty log reports LegacyTotal as lifetime and 0 for the
// shorter windows. Unknown windows are treated as lifetime.
func ComputeTotal(u *models.User, window models.Window, today models.Date) float64 {
	if len(u.Log) == 0 {
		if window == models.WindowDaily || window == models.WindowWeekly {
			return 0
		}
		return u.LegacyTotal
	}

	var include func(models.Date) bool
	switch window {
	case models.WindowDaily:
		include = func(d models.Date) bool { return d.Equal(today) }
	case models.WindowWeekly:
		from := today.AddDays(-WeekSpan)
		include = func(d models.Date) bool { return !d.Before(from) }
	default:
		return u.LifetimeTotal()
	}

	var sum float64
	for _, e := range u.Log {
		if include(e.Date) {
			sum += e.Amount
		}
	}
	return sum
}
