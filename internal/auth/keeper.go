package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
	"github.com/dmitrijs2005/waterkeeper/internal/store/blob"
)

const secretSize = 32

// Keeper stores the current session token in the blob store, under
// "<prefix>:session", signed with a key kept under "<prefix>:session-key".
type Keeper struct {
	store  blob.Store
	key    string
	secret []byte
	ttl    time.Duration
}

// NewKeeper returns a Keeper for the collection stored under prefix. When
// secret is empty the signing key is loaded from the store, or generated and
// saved on first use.
func NewKeeper(ctx context.Context, store blob.Store, prefix string, secret []byte, ttl time.Duration) (*Keeper, error) {
	if len(secret) == 0 {
		var err error
		secret, err = loadOrCreateSecret(ctx, store, prefix+":session-key")
		if err != nil {
			return nil, err
		}
	}
	return &Keeper{store: store, key: prefix + ":session", secret: secret, ttl: ttl}, nil
}

func loadOrCreateSecret(ctx context.Context, store blob.Store, key string) ([]byte, error) {
	var secret []byte
	err := store.Update(ctx, key, func(cur []byte) ([]byte, error) {
		if len(cur) >= secretSize {
			secret = cur
			return cur, nil
		}
		secret = common.GenerateRandByteArray(secretSize)
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare session key: %w", err)
	}
	return secret, nil
}

func (k *Keeper) Save(ctx context.Context, kind, subject string) error {
	token, err := GenerateToken(kind, subject, k.secret, k.ttl)
	if err != nil {
		return err
	}
	if err := k.store.Set(ctx, k.key, []byte(token)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the kind and subject of the saved session. A missing or
// invalid token wraps common.ErrAuth; an invalid one is also removed.
func (k *Keeper) Load(ctx context.Context) (string, string, error) {
	raw, err := k.store.Get(ctx, k.key)
	if err != nil {
		return "", "", fmt.Errorf("failed to load session: %w", err)
	}
	if len(raw) == 0 {
		return "", "", fmt.Errorf("%w: no saved session", common.ErrAuth)
	}

	claims, err := ParseToken(string(raw), k.secret)
	if err != nil {
		_ = k.Clear(ctx)
		return "", "", err
	}
	return claims.Kind, claims.Subject, nil
}

func (k *Keeper) Clear(ctx context.Context) error {
	if err := k.store.Delete(ctx, k.key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
