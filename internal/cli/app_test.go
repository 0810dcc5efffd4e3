package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/config"
	"github.com/dmitrijs2005/waterkeeper/internal/logging"
	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/services"
	"github.com/dmitrijs2005/waterkeeper/internal/store/blob"
)

var testClock = services.ClockFunc(func() time.Time {
	return time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)
})

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StoreDriver = blob.DriverMemory
	return c
}

func newTestApp(t *testing.T, store blob.Store, cfg *config.Config, input string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	app, err := newApp(context.Background(), cfg, deps{
		store:  store,
		logger: logging.Discard(),
		clock:  testClock,
		in:     strings.NewReader(input),
		out:    out,
	})
	require.NoError(t, err)
	return app, out
}

func seedUsers(t *testing.T, app *App) {
	t.Helper()
	ctx := context.Background()
	_, err := app.profiles.Register(ctx, services.RegisterRequest{ID: "ann", Pass: "secret", Name: "Ann", InitialAmount: 1})
	require.NoError(t, err)
	_, err = app.profiles.Register(ctx, services.RegisterRequest{ID: "bob", Pass: "hunter2", Name: "Bob", InitialAmount: 2})
	require.NoError(t, err)
}

func TestApp_RegisterLoginDrink(t *testing.T) {
	input := strings.Join([]string{
		// register: id, password, name, sex, location, liters, avatar
		"ann", "secret", "Ann", "F", "Riga", "1", "",
		// login
		"ann", "secret",
	}, "\n") + "\n"
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), input)
	ctx := context.Background()

	require.NoError(t, app.Register(ctx))
	assert.Contains(t, out.String(), "Registration successful! Please log in.")
	assert.False(t, app.isLoggedIn())

	require.NoError(t, app.Login(ctx))
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, " (ann)", app.status())
	assert.Contains(t, out.String(), "ID: ann | Loc: Riga")
	assert.Contains(t, out.String(), "Today: 1.0 L")

	out.Reset()
	require.NoError(t, app.Drink(ctx, []string{"0.5"}))
	assert.Contains(t, out.String(), "Today: 1.5 L")
	assert.Contains(t, out.String(), "Me (Today)")
	assert.NotContains(t, out.String(), "Top:", "ann leads, so no second bar")

	err := app.Drink(ctx, []string{"-1"})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestApp_RegisterRejectsBadAvatar(t *testing.T) {
	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("hello"), 0o600))

	input := strings.Join([]string{"ann", "secret", "", "", "", "", notImage}, "\n") + "\n"
	app, _ := newTestApp(t, blob.NewMemoryStore(), testConfig(), input)

	err := app.Register(context.Background())
	require.ErrorIs(t, err, common.ErrValidation)

	list, err := app.profiles.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list, "nothing is stored when the avatar is rejected")
}

func TestApp_DrinkPromptsWithDefault(t *testing.T) {
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), "\n")
	seedUsers(t, app)
	ctx := context.Background()

	_, err := app.session.Authenticate(ctx, "ann", "secret")
	require.NoError(t, err)

	require.NoError(t, app.Drink(ctx, nil))
	assert.Contains(t, out.String(), "How many liters did you just drink? [0.5]")
	assert.Contains(t, out.String(), "Today: 1.5 L")
	assert.Contains(t, out.String(), "Top: Bob")
}

func TestApp_LoginFailure(t *testing.T) {
	app, _ := newTestApp(t, blob.NewMemoryStore(), testConfig(), "ann\nwrong\n")
	seedUsers(t, app)

	err := app.Login(context.Background())
	require.ErrorIs(t, err, common.ErrAuth)
	assert.False(t, app.isLoggedIn())
}

func TestApp_Recover(t *testing.T) {
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), " ANN \nnobody\n")
	seedUsers(t, app)
	ctx := context.Background()

	require.NoError(t, app.Recover(ctx))
	assert.Contains(t, out.String(), "ID: ann\nPassword: secret")

	require.ErrorIs(t, app.Recover(ctx), common.ErrNotFound)
}

func TestApp_Rankings(t *testing.T) {
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), "")
	seedUsers(t, app)
	ctx := context.Background()

	require.ErrorIs(t, app.Rankings(ctx, nil), common.ErrAuth)

	_, err := app.session.Authenticate(ctx, "ann", "secret")
	require.NoError(t, err)

	require.NoError(t, app.Rankings(ctx, nil))
	s := out.String()
	assert.Contains(t, s, "Today's leaders")
	assert.Contains(t, s, "This week's leaders")
	assert.Less(t, strings.Index(s, "#1 Bob"), strings.Index(s, "#2 Ann"))

	require.ErrorIs(t, app.Rankings(ctx, []string{"monthly"}), common.ErrValidation)
}

func TestApp_AllUsersWithoutLogin(t *testing.T) {
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), "")
	ctx := context.Background()

	require.NoError(t, app.AllUsers(ctx))
	assert.Contains(t, out.String(), "No users found.")

	seedUsers(t, app)
	out.Reset()
	require.NoError(t, app.AllUsers(ctx))
	assert.Contains(t, out.String(), "#1 Bob")
	assert.Contains(t, out.String(), "Water (L)")
}

func TestApp_SelfEditKeepsPassword(t *testing.T) {
	// name, sex, location, total
	app, _ := newTestApp(t, blob.NewMemoryStore(), testConfig(), "Annie\n\nTallinn\n\n")
	seedUsers(t, app)
	ctx := context.Background()

	_, err := app.session.Authenticate(ctx, "ann", "secret")
	require.NoError(t, err)
	require.NoError(t, app.Edit(ctx, nil))

	u, err := app.profiles.Get(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.Name)
	assert.Equal(t, "Tallinn", u.Loc)
	assert.Equal(t, "secret", u.Pass)
}

func TestApp_SelfDelete(t *testing.T) {
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), "y\n")
	seedUsers(t, app)
	ctx := context.Background()

	_, err := app.session.Authenticate(ctx, "ann", "secret")
	require.NoError(t, err)

	require.ErrorIs(t, app.Delete(ctx, []string{"bob"}), common.ErrAuth)
	require.NoError(t, app.Delete(ctx, nil))
	assert.False(t, app.isLoggedIn())
	assert.Contains(t, out.String(), "Logged out.")

	_, err = app.profiles.Get(ctx, "ann")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestApp_AdminConsole(t *testing.T) {
	input := strings.Join([]string{
		"admin",                         // admin password
		"Bobby", "", "", "5", "newpass", // edit bob
		"y",                             // delete ann
	}, "\n") + "\n"
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), input)
	seedUsers(t, app)
	ctx := context.Background()

	require.ErrorIs(t, app.Users(ctx), common.ErrAuth)

	require.NoError(t, app.AdminLogin(ctx))
	assert.True(t, app.isAdmin())
	assert.Equal(t, " (admin)", app.status())
	assert.Contains(t, out.String(), "Total users: 2")
	assert.Contains(t, out.String(), "hunter2")

	require.ErrorIs(t, app.Edit(ctx, nil), common.ErrValidation)
	require.NoError(t, app.Edit(ctx, []string{"bob"}))
	bob, err := app.profiles.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bobby", bob.Name)
	assert.Equal(t, "newpass", bob.Pass)
	assert.Equal(t, 5.0, bob.LegacyTotal)

	require.NoError(t, app.Delete(ctx, []string{"ann"}))
	list, err := app.profiles.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.ErrorIs(t, app.Dashboard(ctx), common.ErrAuth)
}

func TestApp_SessionInvalidatedAfterAdminDelete(t *testing.T) {
	app, _ := newTestApp(t, blob.NewMemoryStore(), testConfig(), "")
	seedUsers(t, app)
	ctx := context.Background()

	_, err := app.session.Authenticate(ctx, "ann", "secret")
	require.NoError(t, err)
	require.NoError(t, app.profiles.Remove(ctx, "ann"))

	err = app.Dashboard(ctx)
	require.ErrorIs(t, err, common.ErrSessionInvalidated)
	assert.False(t, app.isLoggedIn())
}

func TestApp_ExportImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")

	app, _ := newTestApp(t, blob.NewMemoryStore(), testConfig(), "")
	seedUsers(t, app)
	ctx := context.Background()

	require.ErrorIs(t, app.Export(ctx, []string{path}), common.ErrAuth)

	_, err := app.session.Authenticate(ctx, services.AdminID, services.AdminPassword)
	require.NoError(t, err)
	require.ErrorIs(t, app.Export(ctx, nil), common.ErrValidation)
	require.NoError(t, app.Export(ctx, []string{path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"bob"`)

	other, otherOut := newTestApp(t, blob.NewMemoryStore(), testConfig(), "y\n")
	_, err = other.session.Authenticate(ctx, services.AdminID, services.AdminPassword)
	require.NoError(t, err)
	require.NoError(t, other.Import(ctx, []string{path}))
	assert.Contains(t, otherOut.String(), "Imported 2 users.")

	u, err := other.profiles.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2.0, services.ComputeTotal(u, models.WindowLifetime, other.profiles.Today()))
}

func TestApp_RememberedSession(t *testing.T) {
	store := blob.NewMemoryStore()
	cfg := testConfig()
	cfg.RememberSession = true
	ctx := context.Background()

	first, _ := newTestApp(t, store, cfg, "")
	seedUsers(t, first)
	_, err := first.session.Authenticate(ctx, "ann", "secret")
	require.NoError(t, err)

	second, out := newTestApp(t, store, cfg, "")
	second.resume(ctx)
	assert.True(t, second.isLoggedIn())
	assert.Contains(t, out.String(), "ID: ann")

	require.NoError(t, second.profiles.Remove(ctx, "ann"))
	third, out := newTestApp(t, store, cfg, "")
	third.resume(ctx)
	assert.False(t, third.isLoggedIn())
	assert.Contains(t, out.String(), "Your account no longer exists.")
}

func TestApp_RunServesREPL(t *testing.T) {
	lines := capturePrintln(t)
	app, out := newTestApp(t, blob.NewMemoryStore(), testConfig(), "all\nexit\n")

	app.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome to waterkeeper")
	assert.Contains(t, out.String(), "No users found.")
	assert.Contains(t, *lines, "Bye!")
}
