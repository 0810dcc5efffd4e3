// Package services holds the water tracker's business logic: window totals,
// leaderboards, profile management and the login session.
package services

import (
	"time"

	"github.com/dmitrijs2005/waterkeeper/internal/models"
)

// Clock supplies "now". Day boundaries follow the location of the returned
// time, which for the system clock is the local time zone.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func SystemClock() Clock { return ClockFunc(time.Now) }

// Today is the calendar day of c.Now().
func Today(c Clock) models.Date {
	return models.DateOf(c.Now())
}
