// Package fakeserver is an in-process reference implementation of the game
// HTTP API. The dev server runs it for local play and tests drive the real
// client against it.
package fakeserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/mcoot/sovereign-client/internal/dependencies/clock"
	"github.com/mcoot/sovereign-client/internal/dependencies/random"
	"github.com/mcoot/sovereign-client/internal/fakeserver/auth"
	"github.com/mcoot/sovereign-client/internal/fakeserver/handler"
	"github.com/mcoot/sovereign-client/internal/fakeserver/world"
	"github.com/mcoot/sovereign-client/internal/model"
)

// Register response shapes, re-exported for callers outside the package
const (
	RegisterFull      = handler.RegisterFull
	RegisterTokenOnly = handler.RegisterTokenOnly
	RegisterNoToken   = handler.RegisterNoToken
)

// Name is reported by the health endpoint
const Name = "Sovereign Conquest"

// Options configures a Backend. Zero values fall back to defaults.
type Options struct {
	Logger       *slog.Logger
	Clock        clock.Clock
	Random       random.Random
	Auth         auth.Config
	World        world.Config
	RegisterMode handler.RegisterMode
	Version      string
}

// Backend bundles the services behind the API with a request recorder
type Backend struct {
	Auth     *auth.Service
	World    *world.World
	Recorder *Recorder

	handler http.Handler
	server  *httptest.Server
}

// New builds a Backend and its router
func New(opts Options) *Backend {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Random == nil {
		opts.Random = random.New()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	b := &Backend{
		Auth:     auth.New(opts.Clock, opts.Auth),
		World:    world.New(opts.Clock, opts.Random, opts.World),
		Recorder: NewRecorder(),
	}
	b.handler = NewRouter(RouterConfig{
		Logger:       opts.Logger,
		AuthService:  b.Auth,
		World:        b.World,
		Recorder:     b.Recorder,
		RegisterMode: opts.RegisterMode,
		Name:         Name,
		Version:      opts.Version,
	})
	return b
}

// Handler returns the API router
func (b *Backend) Handler() http.Handler {
	return b.handler
}

// Start serves the API on a loopback listener and returns its base URL
func (b *Backend) Start() string {
	if b.server == nil {
		b.server = httptest.NewServer(b.handler)
	}
	return b.server.URL
}

// Close stops the loopback listener if one was started
func (b *Backend) Close() {
	if b.server != nil {
		b.server.Close()
		b.server = nil
	}
}

// CreateAccount registers an account and its pilot directly
func (b *Backend) CreateAccount(username, password string) (*auth.User, error) {
	user, err := b.Auth.Register(username, password)
	if err != nil {
		return nil, err
	}
	if _, err := b.World.AddPlayer(user.PlayerID, user.ID, user.Username); err != nil {
		return nil, err
	}
	return user, nil
}

// RevokeTokens makes every token issued to username so far answer 401
func (b *Backend) RevokeTokens(username string) error {
	return b.Auth.RevokeTokens(username)
}

// RequirePasswordChange flags username for a forced password change
func (b *Backend) RequirePasswordChange(username string) error {
	if err := b.Auth.RequirePasswordChange(username); err != nil {
		return err
	}
	user, err := b.Auth.Lookup(username)
	if err != nil {
		return err
	}
	return b.World.SetMustChangePassword(user.PlayerID, true)
}

// SetAdmin grants or revokes admin rights
func (b *Backend) SetAdmin(username string, admin bool) error {
	if err := b.Auth.SetAdmin(username, admin); err != nil {
		return err
	}
	user, err := b.Auth.Lookup(username)
	if err != nil {
		return err
	}
	return b.World.SetAdmin(user.PlayerID, admin)
}

// SeedMessage delivers a message without going through the send endpoint.
// An empty sender is the game itself.
func (b *Backend) SeedMessage(kind model.MessageKind, from, to, subject, body string) (int64, error) {
	return b.World.SeedMessage(kind, from, to, subject, body)
}
