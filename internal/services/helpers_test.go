package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/waterkeeper/internal/logging"
	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/store/blob"
	"github.com/dmitrijs2005/waterkeeper/internal/store/users"
)

var fixedClock = ClockFunc(func() time.Time {
	return time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
})

func newRepo(t *testing.T) *users.BlobRepository {
	t.Helper()
	return users.NewBlobRepository(blob.NewMemoryStore(), "waterUsers", logging.Discard())
}

func newProfiles(t *testing.T, opts ...ProfileOption) (*ProfileService, *users.BlobRepository) {
	t.Helper()
	repo := newRepo(t)
	opts = append([]ProfileOption{WithClock(fixedClock)}, opts...)
	return NewProfileService(repo, logging.Discard(), opts...), repo
}

func seed(t *testing.T, repo users.Repository, list ...models.User) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), list))
}
