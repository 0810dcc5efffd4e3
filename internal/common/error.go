// Package common defines sentinel errors and small helpers shared by the
// waterkeeper services, stores and CLI. Callers should use errors.Is to match
// these values; call sites add detail by wrapping them with %w.
package common

import "errors"

var (
	// Input errors: empty id/password, non-positive amount, bad window name.
	ErrValidation = errors.New("validation error")

	// Profile errors.
	ErrDuplicateID = errors.New("user id already exists")
	ErrReservedID  = errors.New("user id is reserved")

	// Lookup errors (credential recovery, unknown id).
	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrAuth               = errors.New("invalid id or password")
	ErrSessionInvalidated = errors.New("session invalidated")
)
