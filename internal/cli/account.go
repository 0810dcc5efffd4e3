package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/waterkeeper/internal/avatar"
	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/services"
)

// getPassword is an indirection over GetPassword used by tests.
var getPassword = GetPassword

// password reads a secret: without echo on a terminal, as a plain line
// otherwise (piped input, tests).
func (a *App) password(prompt string) (string, error) {
	if !a.tty {
		return a.readRaw(prompt)
	}
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// readRaw reads one line without trimming spaces, which are significant in
// passwords.
func (a *App) readRaw(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) text(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}

// parseLiters reads a liters value; blank input yields def.
func parseLiters(s string, def float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a number of liters", common.ErrValidation, s)
	}
	return v, nil
}

// Register walks through the sign-up form. The avatar file, if any, is read
// before the account is created.
func (a *App) Register(ctx context.Context) error {
	var req services.RegisterRequest
	var err error

	if req.ID, err = a.text("User ID"); err != nil {
		return err
	}
	if req.Pass, err = a.password("Password"); err != nil {
		return err
	}
	if req.Name, err = a.text("Display name (optional, defaults to the ID)"); err != nil {
		return err
	}
	if req.Sex, err = a.text("Sex (optional)"); err != nil {
		return err
	}
	if req.Loc, err = a.text("Location (optional)"); err != nil {
		return err
	}

	amount, err := a.text("Water already drunk today in liters (optional)")
	if err != nil {
		return err
	}
	if req.InitialAmount, err = parseLiters(amount, 0); err != nil {
		return err
	}

	pic, err := a.text("Avatar image file (optional)")
	if err != nil {
		return err
	}
	if pic != "" {
		if req.Avatar, err = avatar.FromFile(pic); err != nil {
			return err
		}
	}

	if _, err := a.profiles.Register(ctx, req); err != nil {
		return err
	}
	a.println("Registration successful! Please log in.")
	return nil
}

// Login authenticates with id and password. The admin credentials open the
// admin console instead of a dashboard.
func (a *App) Login(ctx context.Context) error {
	id, err := a.text("User ID")
	if err != nil {
		return err
	}
	pass, err := a.password("Password")
	if err != nil {
		return err
	}
	return a.authenticate(ctx, id, pass)
}

// AdminLogin only asks for the administrator password.
func (a *App) AdminLogin(ctx context.Context) error {
	pass, err := a.password("Admin password")
	if err != nil {
		return err
	}
	return a.authenticate(ctx, services.AdminID, pass)
}

func (a *App) authenticate(ctx context.Context, id, pass string) error {
	p, err := a.session.Authenticate(ctx, id, pass)
	if err != nil {
		return err
	}
	if _, ok := p.(services.AdminPrincipal); ok {
		return a.Users(ctx)
	}
	return a.Dashboard(ctx)
}

// Recover looks an account up by display name and shows its credentials.
func (a *App) Recover(ctx context.Context) error {
	name, err := a.text("Display name")
	if err != nil {
		return err
	}
	c, err := a.profiles.RecoverCredentials(ctx, name)
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("ID: %s\nPassword: %s", c.ID, c.Pass))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}
