package memory

import (
	"context"
	"sync"

	"github.com/mcoot/sovereign-client/internal/storage"
)

// Storage is an in-memory token slot. It does not survive a restart and is
// meant for tests and throwaway sessions.
type Storage struct {
	mu    sync.RWMutex
	token string
}

// New creates an empty in-memory store
func New() *Storage {
	return &Storage{}
}

// NewWithToken creates a store pre-loaded with a token
func NewWithToken(token string) *Storage {
	return &Storage{token: token}
}

// Ensure Storage implements the interface
var _ storage.TokenStore = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", storage.ErrNoToken
	}
	return s.token, nil
}

func (s *Storage) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
