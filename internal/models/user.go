// Package models defines the user record, its append-only consumption log and
// the aggregation windows. The JSON shape matches the blob the legacy web
// tracker kept under its "waterUsers" key, so old exports load unchanged.
package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
)

// Window selects the time range a total is computed over.
type Window string

const (
	WindowDaily    Window = "daily"
	WindowWeekly   Window = "weekly"
	WindowLifetime Window = "lifetime"
)

// ParseWindow maps user input ("daily", "Week", "all", ...) to a Window.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "today":
		return WindowDaily, nil
	case "weekly", "week":
		return WindowWeekly, nil
	case "lifetime", "all", "total":
		return WindowLifetime, nil
	}
	return "", fmt.Errorf("%w: unknown window %q", common.ErrValidation, s)
}

// Entry is one recorded drinking event.
type Entry struct {
	Date   Date    `json:"date"`
	Amount float64 `json:"amount"`
}

// User is one account. LegacyTotal predates the entry log and is only
// consulted while Log is empty.
type User struct {
	ID          string  `json:"id"`
	Pass        string  `json:"pass"`
	Name        string  `json:"name"`
	Sex         string  `json:"sex"`
	Loc         string  `json:"loc"`
	LegacyTotal float64 `json:"water"`
	Log         []Entry `json:"logs"`
	Avatar      string  `json:"pic"`
}

// Patch is a partial profile update. A nil field, or an empty string, means
// "keep the current value". ID is deliberately absent.
type Patch struct {
	Name        *string
	Sex         *string
	Loc         *string
	Pass        *string
	LegacyTotal *float64
}

// ValidateAmount rejects zero, negative and non-finite liters.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", common.ErrValidation)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %g", common.ErrValidation, amount)
	}
	return nil
}

// AppendEntry records amount liters on date. The log is append-only and
// LegacyTotal is left alone.
func (u *User) AppendEntry(date Date, amount float64) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	u.Log = append(u.Log, Entry{Date: date, Amount: amount})
	return nil
}

// LifetimeTotal is the sum of the log, or LegacyTotal for users that never
// logged an entry. The two are never added together.
func (u *User) LifetimeTotal() float64 {
	if len(u.Log) == 0 {
		return u.LegacyTotal
	}
	var sum float64
	for _, e := range u.Log {
		sum += e.Amount
	}
	return sum
}

// Clone returns a copy that shares no slice storage with u.
func (u User) Clone() User {
	if u.Log != nil {
		u.Log = append([]Entry(nil), u.Log...)
	}
	return u
}

// Apply copies the non-empty fields of p into u. The password is only
// touched when allowPassword is set.
func (u *User) Apply(p Patch, allowPassword bool) {
	set := func(dst *string, src *string) {
		if src == nil {
			return
		}
		if v := strings.TrimSpace(*src); v != "" {
			*dst = v
		}
	}
	set(&u.Name, p.Name)
	set(&u.Sex, p.Sex)
	set(&u.Loc, p.Loc)
	if allowPassword && p.Pass != nil && *p.Pass != "" {
		u.Pass = *p.Pass
	}
	if p.LegacyTotal != nil {
		u.LegacyTotal = *p.LegacyTotal
	}
}
