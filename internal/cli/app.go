// Package cli is the interactive terminal client: a REPL over the profile,
// session and view layers.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/waterkeeper/internal/auth"
	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/config"
	"github.com/dmitrijs2005/waterkeeper/internal/logging"
	"github.com/dmitrijs2005/waterkeeper/internal/services"
	"github.com/dmitrijs2005/waterkeeper/internal/store/blob"
	"github.com/dmitrijs2005/waterkeeper/internal/store/users"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    blob.Store
	profiles *services.ProfileService
	session  *services.SessionService
	reader   *bufio.Reader
	out      io.Writer
	// tty is set when passwords can be read from a terminal without echo.
	tty bool
}

// deps are the pieces NewApp builds from config; tests supply their own.
type deps struct {
	store  blob.Store
	logger logging.Logger
	clock  services.Clock
	in     io.Reader
	out    io.Writer
	tty    bool
}

func newApp(ctx context.Context, c *config.Config, d deps) (*App, error) {
	repo := users.NewBlobRepository(d.store, c.StoreKey, d.logger)

	opts := []services.ProfileOption{services.WithLegacyDualWrite(c.LegacyDualWrite)}
	if d.clock != nil {
		opts = append(opts, services.WithClock(d.clock))
	}
	profiles := services.NewProfileService(repo, d.logger, opts...)

	var keeper services.SessionKeeper
	if c.RememberSession {
		k, err := auth.NewKeeper(ctx, d.store, c.StoreKey, []byte(c.SessionSecret), c.SessionTTL)
		if err != nil {
			return nil, err
		}
		keeper = k
	}

	return &App{
		config:   c,
		logger:   d.logger,
		store:    d.store,
		profiles: profiles,
		session:  services.NewSessionService(repo, d.logger, keeper),
		reader:   bufio.NewReader(d.in),
		out:      d.out,
		tty:      d.tty,
	}, nil
}

// NewApp opens the configured store and wires the services. Diagnostics go
// to stderr, user-facing output to stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	store, err := blob.Open(ctx, c.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}
	logger.Debug(ctx, "store opened", "driver", c.StoreDriver, "key", c.StoreKey)

	app, err := newApp(ctx, c, deps{
		store:  store,
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
		tty:    term.IsTerminal(int(os.Stdin.Fd())),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.Current() != nil
}

func (a *App) isAdmin() bool {
	return a.session.IsAdmin()
}

func (a *App) status() string {
	switch p := a.session.Current().(type) {
	case services.AdminPrincipal:
		return " (admin)"
	case services.UserPrincipal:
		return fmt.Sprintf(" (%s)", p.UserID)
	}
	return ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// resume restores a remembered login, if any.
func (a *App) resume(ctx context.Context) {
	if !a.config.RememberSession {
		return
	}
	p, err := a.session.Resume(ctx)
	if err != nil {
		if errors.Is(err, common.ErrSessionInvalidated) {
			a.println(describe(err))
		}
		a.logger.Debug(ctx, "no session resumed", "error", err)
		return
	}
	if _, ok := p.(services.AdminPrincipal); ok {
		a.println("Welcome back, admin.")
		return
	}
	if err := a.Dashboard(ctx); err != nil {
		a.println(describe(err))
	}
}

// Run resumes a remembered login and then serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to waterkeeper (type 'help' for commands)")
	a.resume(ctx)
	runREPL(ctx, a, a.status, a.reader)
}
