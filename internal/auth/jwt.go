// Package auth signs and verifies the token that lets a login survive a
// restart of the client.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/waterkeeper/internal/common"
)

// Claims carries the standard claims plus the principal kind ("user" or
// "admin"). The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

func GenerateToken(kind, subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Kind: kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns its claims. Expired, forged and
// malformed tokens all yield an error wrapping common.ErrAuth.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: session expired", common.ErrAuth)
		}
		return nil, fmt.Errorf("%w: invalid session token: %v", common.ErrAuth, err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid session token", common.ErrAuth)
	}

	return claims, nil
}
