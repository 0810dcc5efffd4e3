// Package views turns the user collection into what the screens show:
// the dashboard, leaderboards, the all-users page and the admin overview.
// Chart data is returned as a Series; drawing it is up to the caller.
package views

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/services"
)

// Round1 rounds liters to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

type ProfileSummary struct {
	ID       string
	Name     string
	Sex      string
	Loc      string
	Avatar   string
	Today    float64
	Lifetime float64
}

type RankRow struct {
	Rank  int
	ID    string
	Name  string
	Total float64
}

// Series is one bar chart: a dataset label plus parallel labels and values.
type Series struct {
	Label  string
	Labels []string
	Values []float64
}

type Dashboard struct {
	Profile    ProfileSummary
	Daily      []RankRow
	Weekly     []RankRow
	Comparison Series
}

type AllUsersPage struct {
	Rows  []RankRow
	Chart Series
}

// AdminRow includes the plaintext password; only the admin console shows it.
type AdminRow struct {
	ID       string
	Pass     string
	Name     string
	Sex      string
	Loc      string
	Avatar   string
	Lifetime float64
}

type AdminOverview struct {
	Count int
	Rows  []AdminRow
	Chart Series
}

func rows(standings []services.Standing) []RankRow {
	out := make([]RankRow, len(standings))
	for i, s := range standings {
		out[i] = RankRow{Rank: s.Rank, ID: s.User.ID, Name: s.User.Name, Total: Round1(s.Total)}
	}
	return out
}

// BuildRankings returns the top n users for window; a negative n lists
// everyone.
func BuildRankings(users []models.User, window models.Window, n int, today models.Date) []RankRow {
	return rows(services.TopN(users, window, n, today))
}

// BuildComparison is the "me vs top" chart for today.
func BuildComparison(viewer *models.User, users []models.User, today models.Date) Series {
	cmp := services.Compare(viewer, users, models.WindowDaily, today)

	s := Series{
		Label:  "Liters Today",
		Labels: []string{"Me (Today)"},
		Values: []float64{Round1(cmp.Me.Total)},
	}
	if cmp.Top != nil {
		s.Labels = append(s.Labels, fmt.Sprintf("Top: %s", cmp.Top.User.Name))
		s.Values = append(s.Values, Round1(cmp.Top.Total))
	}
	return s
}

// BuildDashboard assembles the logged-in user's home screen with leaderboards
// of size entries.
func BuildDashboard(viewer *models.User, users []models.User, today models.Date, size int) Dashboard {
	return Dashboard{
		Profile: ProfileSummary{
			ID:       viewer.ID,
			Name:     viewer.Name,
			Sex:      viewer.Sex,
			Loc:      viewer.Loc,
			Avatar:   viewer.Avatar,
			Today:    Round1(services.ComputeTotal(viewer, models.WindowDaily, today)),
			Lifetime: Round1(services.ComputeTotal(viewer, models.WindowLifetime, today)),
		},
		Daily:      BuildRankings(users, models.WindowDaily, size, today),
		Weekly:     BuildRankings(users, models.WindowWeekly, size, today),
		Comparison: BuildComparison(viewer, users, today),
	}
}

// BuildAllUsers ranks every user by lifetime total.
func BuildAllUsers(users []models.User, today models.Date) AllUsersPage {
	page := AllUsersPage{
		Rows:  BuildRankings(users, models.WindowLifetime, services.AllUsers, today),
		Chart: Series{Label: "Water (L)"},
	}
	for _, r := range page.Rows {
		page.Chart.Labels = append(page.Chart.Labels, r.Name)
		page.Chart.Values = append(page.Chart.Values, r.Total)
	}
	return page
}

// BuildAdminOverview lists users in stored order with their credentials.
func BuildAdminOverview(users []models.User, today models.Date) AdminOverview {
	ov := AdminOverview{
		Count: len(users),
		Rows:  make([]AdminRow, 0, len(users)),
		Chart: Series{Label: "Total Water (L)"},
	}
	for i := range users {
		u := &users[i]
		total := Round1(services.ComputeTotal(u, models.WindowLifetime, today))
		ov.Rows = append(ov.Rows, AdminRow{
			ID:       u.ID,
			Pass:     u.Pass,
			Name:     u.Name,
			Sex:      u.Sex,
			Loc:      u.Loc,
			Avatar:   u.Avatar,
			Lifetime: total,
		})
		ov.Chart.Labels = append(ov.Chart.Labels, u.Name)
		ov.Chart.Values = append(ov.Chart.Values, total)
	}
	return ov
}
