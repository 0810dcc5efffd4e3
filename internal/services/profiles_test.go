package services

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/waterkeeper/internal/avatar"
	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/models"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestRegister_Defaults(t *testing.T) {
	s, repo := newProfiles(t)
	ctx := context.Background()

	u, err := s.Register(ctx, RegisterRequest{ID: "  ann ", Pass: "secret", Sex: " F ", Loc: "Riga"})
	require.NoError(t, err)

	assert.Equal(t, "ann", u.ID)
	assert.Equal(t, "ann", u.Name)
	assert.Equal(t, "F", u.Sex)
	assert.Equal(t, avatar.Placeholder("ann"), u.Avatar)
	assert.Equal(t, 0.0, u.LegacyTotal)
	assert.Empty(t, u.Log)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "secret", stored[0].Pass)
}

func TestRegister_InitialAmountSeedsLog(t *testing.T) {
	s, _ := newProfiles(t)

	u, err := s.Register(context.Background(), RegisterRequest{ID: "bob", Pass: "p", Name: "Bob", InitialAmount: 1.5})
	require.NoError(t, err)

	assert.Equal(t, 1.5, u.LegacyTotal)
	require.Len(t, u.Log, 1)
	assert.Equal(t, "2024-03-10", u.Log[0].Date.String())
	// log and legacy are not double counted
	assert.Equal(t, 1.5, ComputeTotal(u, models.WindowLifetime, today))
}

func TestRegister_KeepsUploadedAvatar(t *testing.T) {
	s, _ := newProfiles(t)

	u, err := s.Register(context.Background(), RegisterRequest{ID: "cid", Pass: "p", Avatar: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", u.Avatar)
}

func TestRegister_Errors(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "ann", Pass: "p", Name: "Ann"})

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"empty id", RegisterRequest{ID: "  ", Pass: "p"}, common.ErrValidation},
		{"empty pass", RegisterRequest{ID: "x"}, common.ErrValidation},
		{"empty beats reserved", RegisterRequest{ID: "admin"}, common.ErrValidation},
		{"reserved", RegisterRequest{ID: "Admin", Pass: "p"}, common.ErrReservedID},
		{"duplicate", RegisterRequest{ID: "ann", Pass: "q"}, common.ErrDuplicateID},
		{"negative amount", RegisterRequest{ID: "neg", Pass: "p", InitialAmount: -1}, common.ErrValidation},
		{"nan amount", RegisterRequest{ID: "nan", Pass: "p", InitialAmount: math.NaN()}, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}

	list, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegister_IDIsCaseSensitive(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "ann", Pass: "p"})

	_, err := s.Register(context.Background(), RegisterRequest{ID: "Ann", Pass: "p"})
	require.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "ann", Pass: "p", Name: "Ann", Sex: "F", Loc: "Riga", LegacyTotal: 2})
	ctx := context.Background()

	u, err := s.Update(ctx, "ann", models.Patch{Name: strPtr("Anna"), Loc: strPtr(""), Pass: strPtr("new")}, false)
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.Name)
	assert.Equal(t, "Riga", u.Loc)
	assert.Equal(t, "F", u.Sex)
	assert.Equal(t, "p", u.Pass, "self-service edit never touches the password")

	u, err = s.Update(ctx, "ann", models.Patch{Pass: strPtr("new"), LegacyTotal: floatPtr(7)}, true)
	require.NoError(t, err)
	assert.Equal(t, "new", u.Pass)
	assert.Equal(t, 7.0, u.LegacyTotal)
	assert.Equal(t, "ann", u.ID)

	stored, err := s.Get(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Pass)
}

func TestUpdate_Errors(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "ann", Pass: "p"})
	ctx := context.Background()

	_, err := s.Update(ctx, "ghost", models.Patch{Name: strPtr("x")}, false)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.Update(ctx, "ann", models.Patch{LegacyTotal: floatPtr(-1)}, true)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Update(ctx, "ann", models.Patch{LegacyTotal: floatPtr(math.Inf(1))}, true)
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRemove_Idempotent(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "ann", Pass: "p"}, models.User{ID: "bob", Pass: "q"})
	ctx := context.Background()

	require.NoError(t, s.Remove(ctx, "ann"))
	require.NoError(t, s.Remove(ctx, "ann"))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].ID)
}

func TestRecoverCredentials(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo,
		models.User{ID: "a1", Pass: "first", Name: "Sam"},
		models.User{ID: "a2", Pass: "second", Name: "sam"},
	)
	ctx := context.Background()

	c, err := s.RecoverCredentials(ctx, "  SAM ")
	require.NoError(t, err)
	assert.Equal(t, &Credentials{ID: "a1", Pass: "first"}, c)

	_, err = s.RecoverCredentials(ctx, "nobody")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestLogConsumption(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "ann", Pass: "p", LegacyTotal: 5})
	ctx := context.Background()

	u, err := s.LogConsumption(ctx, "ann", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, u.LegacyTotal)
	require.Len(t, u.Log, 1)
	assert.Equal(t, 0.5, ComputeTotal(u, models.WindowDaily, today))
	assert.Equal(t, 0.5, ComputeTotal(u, models.WindowLifetime, today))

	_, err = s.LogConsumption(ctx, "ann", 0)
	require.ErrorIs(t, err, common.ErrValidation)
	_, err = s.LogConsumption(ctx, "ann", math.NaN())
	require.ErrorIs(t, err, common.ErrValidation)

	stored, err := s.Get(ctx, "ann")
	require.NoError(t, err)
	assert.Len(t, stored.Log, 1)

	_, err = s.LogConsumption(ctx, "ghost", 1)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestLogConsumption_LegacyDualWrite(t *testing.T) {
	s, repo := newProfiles(t, WithLegacyDualWrite(true))
	seed(t, repo, models.User{ID: "ann", Pass: "p", LegacyTotal: 5})

	u, err := s.LogConsumption(context.Background(), "ann", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 5.5, u.LegacyTotal)
	assert.Equal(t, 0.5, ComputeTotal(u, models.WindowLifetime, today))
}

func TestGet_NotFound(t *testing.T) {
	s, _ := newProfiles(t)
	_, err := s.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestExportImport(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "ann", Pass: "p", Name: "Ann", Log: []models.Entry{entry(0, 1)}})
	ctx := context.Background()

	data, err := s.Export(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `[{"id":"ann"`))

	other, _ := newProfiles(t)
	n, err := other.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, err := other.Get(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, 1.0, u.LifetimeTotal())
}

func TestImport_Rejects(t *testing.T) {
	s, repo := newProfiles(t)
	seed(t, repo, models.User{ID: "keep", Pass: "p"})
	ctx := context.Background()

	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{`, common.ErrValidation},
		{"missing pass", `[{"id":"x"}]`, common.ErrValidation},
		{"reserved", `[{"id":"ADMIN","pass":"p"}]`, common.ErrReservedID},
		{"duplicate", `[{"id":"x","pass":"p"},{"id":"x","pass":"q"}]`, common.ErrDuplicateID},
		{"bad amount", `[{"id":"x","pass":"p","logs":[{"date":"2024-03-10","amount":-1}]}]`, common.ErrValidation},
		{"no date", `[{"id":"x","pass":"p","logs":[{"amount":1}]}]`, common.ErrValidation},
		{"negative legacy", `[{"id":"x","pass":"p","water":-3}]`, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Import(ctx, []byte(tt.data))
			require.ErrorIs(t, err, tt.want)
		})
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "keep", list[0].ID)
}
