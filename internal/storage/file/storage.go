package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mcoot/sovereign-client/internal/storage"
)

// TokenFileName is the fixed name of the slot inside the state directory
const TokenFileName = "token"

// Storage keeps the token in a single file, readable only by the owner
type Storage struct {
	mu   sync.Mutex
	path string
}

// New creates a file-backed store at path. The file and its directory are
// created lazily on the first Set.
func New(path string) *Storage {
	return &Storage{path: path}
}

// DefaultPath returns ~/.sovereign/token, falling back to a relative path
// when the home directory is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sovereign", TokenFileName)
	}
	return filepath.Join(home, ".sovereign", TokenFileName)
}

// Path returns the file backing the slot
func (s *Storage) Path() string {
	return s.path
}

// Ensure Storage implements the interface
var _ storage.TokenStore = (*Storage)(nil)

func (s *Storage) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", storage.ErrNoToken
		}
		return "", fmt.Errorf("read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", storage.ErrNoToken
	}
	return token, nil
}

func (s *Storage) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
