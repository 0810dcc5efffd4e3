// Package users persists the whole user collection as one JSON blob.
package users

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/waterkeeper/internal/models"
)

// ErrSkipSave may be returned by a Mutate callback to finish without
// writing anything. Mutate then returns nil.
var ErrSkipSave = errors.New("skip save")

// MutateFunc receives the freshly loaded collection and returns the
// collection to persist.
type MutateFunc func(users []models.User) ([]models.User, error)

type Repository interface {
	// Load returns the stored collection; an absent or unreadable blob
	// yields an empty one.
	Load(ctx context.Context) ([]models.User, error)
	// Save replaces the stored collection.
	Save(ctx context.Context, users []models.User) error
	// Mutate loads, applies fn and saves in one read-modify-write.
	Mutate(ctx context.Context, fn MutateFunc) error
}
