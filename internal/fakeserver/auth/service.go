package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/sovereign-client/internal/dependencies/clock"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username must be 3-20 chars")
	ErrInvalidPassword    = errors.New("password must be 8-100 chars")
	ErrUserNotFound       = errors.New("user not found")
)

// User is a registered account
type User struct {
	ID                 string
	PlayerID           string
	Username           string
	PasswordHash       string
	IsAdmin            bool
	MustChangePassword bool
	CreatedAt          time.Time

	// generation invalidates every token issued before it was bumped
	generation int
}

// Claims are carried in the bearer token
type Claims struct {
	UserID     string `json:"uid"`
	PlayerID   string `json:"pid"`
	Generation int    `json:"gen"`
	jwt.StandardClaims
}

// Valid defers the time checks to the service clock
func (c *Claims) Valid() error {
	return nil
}

// Service handles accounts and token issuance
type Service struct {
	clock  clock.Clock
	secret []byte

	mu    sync.RWMutex
	users map[string]*User // by lower-cased username
	byID  map[string]*User

	tokenDuration time.Duration
	bcryptCost    int
}

// Config holds configuration for the auth service
type Config struct {
	Secret        string
	TokenDuration time.Duration
	// BcryptCost is lowered in tests to keep hashing fast
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Secret:        "dev-secret-change-me",
		TokenDuration: 7 * 24 * time.Hour,
		BcryptCost:    bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(clock clock.Clock, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.Secret == "" {
		cfg.Secret = def.Secret
	}
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = def.TokenDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = def.BcryptCost
	}
	return &Service{
		clock:         clock,
		secret:        []byte(cfg.Secret),
		users:         make(map[string]*User),
		byID:          make(map[string]*User),
		tokenDuration: cfg.TokenDuration,
		bcryptCost:    cfg.BcryptCost,
	}
}

// Register creates an account. Player and user IDs are fresh UUIDs.
func (s *Service) Register(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 20 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 8 || len(password) > 100 {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(username)
	if _, exists := s.users[key]; exists {
		return nil, ErrUsernameExists
	}

	user := &User{
		ID:           uuid.Must(uuid.NewV4()).String(),
		PlayerID:     uuid.Must(uuid.NewV4()).String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	s.users[key] = user
	s.byID[user.ID] = user

	c := *user
	return &c, nil
}

// Login verifies credentials
func (s *Service) Login(username, password string) (*User, error) {
	s.mu.RLock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	c := *user
	return &c, nil
}

// ChangePassword replaces a password and lifts any forced change
func (s *Service) ChangePassword(userID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 || len(newPassword) > 100 {
		return ErrInvalidPassword
	}

	s.mu.RLock()
	user, ok := s.byID[userID]
	s.mu.RUnlock()
	if !ok {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	return nil
}

// IssueToken signs a bearer token for the user
func (s *Service) IssueToken(user *User) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID:     user.ID,
		PlayerID:   user.PlayerID,
		Generation: user.generation,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenDuration).Unix(),
			Id:        uuid.Must(uuid.NewV4()).String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses a bearer token and checks it is still current
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !claims.VerifyExpiresAt(s.clock.Now().Unix(), true) {
		return nil, ErrInvalidToken
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[claims.UserID]
	if !ok || user.generation != claims.Generation {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// User returns a copy of the account with the given ID
func (s *Service) User(userID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *user
	return &c, nil
}

// RevokeTokens invalidates every token issued to username so far
func (s *Service) RevokeTokens(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(username)]
	if !ok {
		return ErrUserNotFound
	}
	user.generation++
	return nil
}

// RequirePasswordChange forces username to change password on next login
func (s *Service) RequirePasswordChange(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(username)]
	if !ok {
		return ErrUserNotFound
	}
	user.MustChangePassword = true
	return nil
}

// SetAdmin grants or revokes admin rights
func (s *Service) SetAdmin(username string, admin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(username)]
	if !ok {
		return ErrUserNotFound
	}
	user.IsAdmin = admin
	return nil
}

// Lookup returns a copy of the account with the given username
func (s *Service) Lookup(username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrUserNotFound
	}
	c := *user
	return &c, nil
}
