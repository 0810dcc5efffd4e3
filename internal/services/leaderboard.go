package services

import (
	"sort"

	"github.com/dmitrijs2005/waterkeeper/internal/models"
)

// AllUsers passed as n to TopN returns the full ranking.
const AllUsers = -1

// Standing is one leaderboard row. Rank starts at 1.
type Standing struct {
	Rank  int
	User  models.User
	Total float64
}

// rank totals every user and sorts them descending. Users with equal totals
// keep their collection order.
func rank(users []models.User, window models.Window, today models.Date) []Standing {
	rows := make([]Standing, len(users))
	for i := range users {
		rows[i] = Standing{User: users[i].Clone(), Total: ComputeTotal(&users[i], window, today)}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// TopN returns the first n standings for window. A negative n returns all of
// them. users is not modified.
func TopN(users []models.User, window models.Window, n int, today models.Date) []Standing {
	rows := rank(users, window, today)
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// Comparison pits the viewer against the leader of a window. Top is nil when
// the collection is empty or when the viewer is the leader.
type Comparison struct {
	Me  Standing
	Top *Standing
}

func Compare(viewer *models.User, users []models.User, window models.Window, today models.Date) Comparison {
	rows := rank(users, window, today)

	cmp := Comparison{Me: Standing{User: viewer.Clone(), Total: ComputeTotal(viewer, window, today)}}
	for _, r := range rows {
		if r.User.ID == viewer.ID {
			cmp.Me.Rank = r.Rank
			break
		}
	}

	if len(rows) > 0 && rows[0].User.ID != viewer.ID {
		top := rows[0]
		cmp.Top = &top
	}
	return cmp
}
