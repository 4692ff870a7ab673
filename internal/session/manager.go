package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/reconcile"
	"github.com/mcoot/sovereign-client/internal/storage"
	"github.com/mcoot/sovereign-client/internal/transport"
)

// API is the part of the server surface the session owns
type API interface {
	Login(ctx context.Context, username, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, username, password string) (*model.AuthResponse, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	State(ctx context.Context) (*model.Snapshot, error)
}

// Poller is the unread-count poller bound to the session's lifetime
type Poller interface {
	Start()
	Stop()
	Refresh(ctx context.Context)
}

// Manager owns the session state machine. Every path to Anonymous (logout,
// any 401, a failed resume) runs the same teardown: stop the poller, clear
// the token, reset the view, run teardown hooks.
type Manager struct {
	api    API
	store  storage.TokenStore
	view   *reconcile.View
	poller Poller
	logger *slog.Logger

	mu    sync.Mutex
	state State
	hooks []func()
	// epoch changes on every teardown
	epoch uint64
}

// NewManager creates a Manager in the Anonymous state
func NewManager(api API, store storage.TokenStore, view *reconcile.View, poller Poller, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Manager{
		api:    api,
		store:  store,
		view:   view,
		poller: poller,
		logger: logger,
		state:  Anonymous,
	}
}

// OnTeardown registers fn to run whenever the session is torn down
func (m *Manager) OnTeardown(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Epoch identifies the current session. Every teardown moves it on, so a
// result fetched under one epoch can be told apart from a later session.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// Commit runs apply only while the session that started at epoch is still
// Authenticated. Teardown cannot interleave with apply. It reports whether
// apply ran.
func (m *Manager) Commit(epoch uint64, apply func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch || m.state != Authenticated {
		return false
	}
	apply()
	return true
}

// Playable returns nil when commands may be submitted
func (m *Manager) Playable() error {
	switch m.State() {
	case Authenticated:
		return nil
	case PasswordChangeRequired:
		return model.ErrPasswordChangeRequired
	default:
		return model.ErrNotAuthenticated
	}
}

// Login authenticates and enters the game
func (m *Manager) Login(ctx context.Context, username, password string) error {
	resp, err := m.api.Login(ctx, username, password)
	if err != nil {
		return m.Guard(ctx, err)
	}
	return m.establish(ctx, resp)
}

// Register creates an account and enters the game. A response without a
// token falls back to logging in with the same credentials.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	resp, err := m.api.Register(ctx, username, password)
	if err != nil {
		return m.Guard(ctx, err)
	}
	if resp.Token == "" {
		m.logger.Debug("register returned no token, logging in", "username", username)
		return m.Login(ctx, username, password)
	}
	return m.establish(ctx, resp)
}

// ChangePassword completes a forced (or voluntary) password change and
// enters the game with a full refresh
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if m.State() == Anonymous {
		return model.ErrNotAuthenticated
	}
	if err := m.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return m.Guard(ctx, err)
	}

	m.mu.Lock()
	m.state = Authenticated
	m.mu.Unlock()
	m.logger.Info("password changed")

	if err := m.Refresh(ctx); err != nil {
		return err
	}
	m.poller.Start()
	return nil
}

// Resume re-enters a persisted session. It reports false when no token is
// stored. Any failure of the initial refresh forces Anonymous.
func (m *Manager) Resume(ctx context.Context) (bool, error) {
	if !storage.HasToken(ctx, m.store) {
		return false, nil
	}

	snap, err := m.api.State(ctx)
	if err != nil {
		m.teardown("resume failed")
		return false, fmt.Errorf("session expired: %w", err)
	}

	m.enter(*snap)
	return true, nil
}

// Refresh fetches the full state and replaces the view with it
func (m *Manager) Refresh(ctx context.Context) error {
	snap, err := m.api.State(ctx)
	if err != nil {
		return m.Guard(ctx, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Anonymous {
		return model.ErrNotAuthenticated
	}
	m.view.Refresh(*snap)
	if snap.State != nil && snap.State.MustChangePassword && m.state == Authenticated {
		m.state = PasswordChangeRequired
		m.poller.Stop()
	}
	return nil
}

// Logout tears the session down from any state
func (m *Manager) Logout(ctx context.Context) {
	m.teardown("logout")
}

// Guard tears the session down when err is an auth failure. It always
// returns err so callers can write `return m.Guard(ctx, err)`.
func (m *Manager) Guard(ctx context.Context, err error) error {
	if err != nil && transport.IsUnauthorized(err) {
		m.teardown("unauthorized")
	}
	return err
}

// establish stores the token and enters the game from an auth response
func (m *Manager) establish(ctx context.Context, resp *model.AuthResponse) error {
	if resp.Token == "" {
		return model.ErrMissingToken
	}
	if m.State() != Anonymous {
		m.teardown("switching session")
	}
	if err := m.store.Set(ctx, resp.Token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}

	snap := resp.Snapshot
	if snap.State == nil {
		full, err := m.api.State(ctx)
		if err != nil {
			m.teardown("initial refresh failed")
			return err
		}
		snap = *full
	}

	m.enter(snap)
	return nil
}

// enter applies the first snapshot of a session and picks the resulting state
func (m *Manager) enter(snap model.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.view.Refresh(snap)
	if snap.State != nil && snap.State.MustChangePassword {
		m.state = PasswordChangeRequired
		m.logger.Info("password change required")
		return
	}

	m.state = Authenticated
	m.poller.Start()
	if snap.State != nil {
		m.logger.Info("session established", "username", snap.State.Username)
	}
}

func (m *Manager) teardown(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.poller.Stop()
	if err := m.store.Clear(context.Background()); err != nil && !errors.Is(err, storage.ErrNoToken) {
		m.logger.Warn("failed to clear session token", "error", err)
	}
	m.view.Reset()
	for _, fn := range m.hooks {
		fn()
	}

	if m.state != Anonymous {
		m.logger.Info("session ended", "reason", reason)
	}
	m.state = Anonymous
	m.epoch++
}
