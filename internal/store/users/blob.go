package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/waterkeeper/internal/logging"
	"github.com/dmitrijs2005/waterkeeper/internal/models"
	"github.com/dmitrijs2005/waterkeeper/internal/store/blob"
)

type BlobRepository struct {
	store  blob.Store
	key    string
	logger logging.Logger
}

func NewBlobRepository(store blob.Store, key string, logger logging.Logger) *BlobRepository {
	return &BlobRepository{store: store, key: key, logger: logger}
}

// Decode parses a collection in the stored JSON shape. Missing "logs" decode
// as an empty log.
func Decode(data []byte) ([]models.User, error) {
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	for i := range users {
		if users[i].Log == nil {
			users[i].Log = []models.Entry{}
		}
	}
	return users, nil
}

// Encode renders users as the stored JSON array. Empty logs are written as
// [] rather than null so other readers can iterate them.
func Encode(users []models.User) ([]byte, error) {
	out := make([]models.User, len(users))
	for i, u := range users {
		out[i] = u
		if out[i].Log == nil {
			out[i].Log = []models.Entry{}
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode users: %w", err)
	}
	return data, nil
}

func (r *BlobRepository) decode(ctx context.Context, data []byte) []models.User {
	if data == nil {
		return []models.User{}
	}
	users, err := Decode(data)
	if err != nil {
		r.logger.Warn(ctx, "stored user collection is unreadable, starting empty", "key", r.key, "error", err)
		return []models.User{}
	}
	return users
}

func (r *BlobRepository) Load(ctx context.Context) ([]models.User, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return r.decode(ctx, data), nil
}

func (r *BlobRepository) Save(ctx context.Context, users []models.User) error {
	data, err := Encode(users)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}
	return nil
}

func (r *BlobRepository) Mutate(ctx context.Context, fn MutateFunc) error {
	err := r.store.Update(ctx, r.key, func(cur []byte) ([]byte, error) {
		next, err := fn(r.decode(ctx, cur))
		if err != nil {
			return nil, err
		}
		return Encode(next)
	})
	if errors.Is(err, ErrSkipSave) {
		return nil
	}
	return err
}
