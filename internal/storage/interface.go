package storage

import (
	"context"
	"errors"
)

// ErrNoToken is returned by Get when the slot is empty
var ErrNoToken = errors.New("no session token stored")

// TokenStore is the single persistent slot holding the bearer credential.
// Expiry is never tracked here; a rejected request is the only signal.
type TokenStore interface {
	// Get returns the stored token or ErrNoToken
	Get(ctx context.Context) (string, error)
	// Set replaces the stored token
	Set(ctx context.Context, token string) error
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// HasToken reports whether the store currently holds a token. Backend
// errors are treated as no token.
func HasToken(ctx context.Context, s TokenStore) bool {
	token, err := s.Get(ctx)
	return err == nil && token != ""
}
