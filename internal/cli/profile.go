package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/views"
)

const defaultDrink = 0.5

func (a *App) requireUser(ctx context.Context) (*models.User, error) {
	if a.isAdmin() {
		return nil, fmt.Errorf("%w: log in as a user for this command", common.ErrAuth)
	}
	return a.session.ResolveCurrent(ctx)
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return fmt.Errorf("%w: not logged in", common.ErrAuth)
	}
	return nil
}

// Drink logs consumption for the current user: "drink 0.3", or "drink"
// to be asked (0.5 L by default).
func (a *App) Drink(ctx context.Context, args []string) error {
	u, err := a.requireUser(ctx)
	if err != nil {
		return err
	}

	input := strings.Join(args, " ")
	if input == "" {
		if input, err = a.text(fmt.Sprintf("How many liters did you just drink? [%.1f]", defaultDrink)); err != nil {
			return err
		}
	}
	amount, err := parseLiters(input, defaultDrink)
	if err != nil {
		return err
	}

	if _, err := a.profiles.LogConsumption(ctx, u.ID, amount); err != nil {
		return err
	}
	return a.Dashboard(ctx)
}

// Dashboard shows the current user's profile, today's leaderboards and the
// comparison with today's leader.
func (a *App) Dashboard(ctx context.Context) error {
	u, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	list, err := a.profiles.List(ctx)
	if err != nil {
		return err
	}

	renderDashboard(a.out, views.BuildDashboard(u, list, a.profiles.Today(), a.config.LeaderboardSize))
	return nil
}

// Rankings prints the daily and weekly leaderboards, or only the window
// named in args.
func (a *App) Rankings(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	windows := []models.Window{models.WindowDaily, models.WindowWeekly}
	if len(args) > 0 {
		w, err := models.ParseWindow(args[0])
		if err != nil {
			return err
		}
		windows = []models.Window{w}
	}

	list, err := a.profiles.List(ctx)
	if err != nil {
		return err
	}
	today := a.profiles.Today()
	for _, w := range windows {
		renderRanking(a.out, w, views.BuildRankings(list, w, a.config.LeaderboardSize, today))
	}
	return nil
}

// AllUsers ranks everybody by lifetime total.
func (a *App) AllUsers(ctx context.Context) error {
	list, err := a.profiles.List(ctx)
	if err != nil {
		return err
	}
	renderAllUsers(a.out, views.BuildAllUsers(list, a.profiles.Today()))
	return nil
}

// editPatch prompts for every editable field, showing the current value.
// Blank answers keep the value.
func (a *App) editPatch(u *models.User, withPassword bool) (models.Patch, error) {
	var p models.Patch

	fields := []struct {
		prompt  string
		current string
		dst     **string
	}{
		{"Name", u.Name, &p.Name},
		{"Sex", u.Sex, &p.Sex},
		{"Location", u.Loc, &p.Loc},
	}
	for _, f := range fields {
		v, err := GetOptionalText(a.reader, f.prompt, f.current, a.out)
		if err != nil {
			return p, err
		}
		*f.dst = &v
	}

	total, err := GetOptionalText(a.reader, "Total water (L)", fmt.Sprintf("%g", u.LegacyTotal), a.out)
	if err != nil {
		return p, err
	}
	if total != "" {
		v, err := parseLiters(total, 0)
		if err != nil {
			return p, err
		}
		p.LegacyTotal = &v
	}

	if withPassword {
		pw, err := a.password(fmt.Sprintf("Password [%s]", u.Pass))
		if err != nil {
			return p, err
		}
		p.Pass = &pw
	}
	return p, nil
}

// Edit changes the current user's profile, or with the admin logged in, the
// profile (including the password) of the user named in args.
func (a *App) Edit(ctx context.Context, args []string) error {
	if a.isAdmin() {
		if len(args) != 1 {
			return fmt.Errorf("%w: usage: edit <id>", common.ErrValidation)
		}
		u, err := a.profiles.Get(ctx, args[0])
		if err != nil {
			return err
		}
		patch, err := a.editPatch(u, true)
		if err != nil {
			return err
		}
		if _, err := a.profiles.Update(ctx, u.ID, patch, true); err != nil {
			return err
		}
		return a.Users(ctx)
	}

	u, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	patch, err := a.editPatch(u, false)
	if err != nil {
		return err
	}
	if _, err := a.profiles.Update(ctx, u.ID, patch, false); err != nil {
		return err
	}
	return a.Dashboard(ctx)
}

// Delete removes the current user's account and logs out, or with the admin
// logged in, removes the user named in args.
func (a *App) Delete(ctx context.Context, args []string) error {
	if a.isAdmin() {
		if len(args) != 1 {
			return fmt.Errorf("%w: usage: delete <id>", common.ErrValidation)
		}
		ok, err := GetConfirmation(a.reader, fmt.Sprintf("ADMIN: Delete user %q?", args[0]), a.out)
		if err != nil || !ok {
			return err
		}
		if err := a.profiles.Remove(ctx, args[0]); err != nil {
			return err
		}
		return a.Users(ctx)
	}

	if len(args) > 0 {
		return fmt.Errorf("%w: only the administrator can delete other accounts", common.ErrAuth)
	}
	u, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := GetConfirmation(a.reader, "Delete your account?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.profiles.Remove(ctx, u.ID); err != nil {
		return err
	}
	return a.Logout(ctx)
}
