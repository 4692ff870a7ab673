package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/sovereign-client/internal/dependencies/clock"
	"github.com/mcoot/sovereign-client/internal/dispatch"
	"github.com/mcoot/sovereign-client/internal/messages"
	"github.com/mcoot/sovereign-client/internal/notify"
	"github.com/mcoot/sovereign-client/internal/reconcile"
	"github.com/mcoot/sovereign-client/internal/session"
	"github.com/mcoot/sovereign-client/internal/storage"
	"github.com/mcoot/sovereign-client/internal/storage/file"
	"github.com/mcoot/sovereign-client/internal/storage/memory"
	redisstorage "github.com/mcoot/sovereign-client/internal/storage/redis"
	"github.com/mcoot/sovereign-client/internal/transport"
)

// Storage type constants
const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired client components
type App struct {
	// Storage
	Store storage.TokenStore

	// External dependencies
	Clock  clock.Clock
	Logger *slog.Logger

	// Client components
	Transport  *transport.Client
	View       *reconcile.View
	Poller     *notify.Poller
	Session    *session.Manager
	Dispatcher *dispatch.Dispatcher
	Messages   *messages.Manager

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Transport holds the server URL and request timeout
	// If zero value, defaults to transport.DefaultConfig()
	Transport transport.Config
	// Poll holds the unread polling interval (optional)
	Poll notify.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the token slot ("file", "memory" or "redis")
	// If empty, defaults to "file"
	StorageType string
	// TokenPath overrides the token file location for the file backend
	TokenPath string
	// Token pins the session to a fixed token held only in memory. It takes
	// precedence over StorageType.
	Token string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.TokenStore
	var closers []func() error
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	if cfg.Token != "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeFile:
		path := cfg.TokenPath
		if path == "" {
			path = file.DefaultPath()
		}
		store = file.New(path)
	case StorageTypeMemory:
		store = memory.NewWithToken(cfg.Token)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore.Close)
	default:
		return nil, errors.New("invalid StorageType: must be 'file', 'memory' or 'redis'")
	}

	transportCfg := cfg.Transport
	if transportCfg.BaseURL == "" {
		transportCfg.BaseURL = transport.DefaultConfig().BaseURL
	}
	if transportCfg.Timeout <= 0 {
		transportCfg.Timeout = transport.DefaultConfig().Timeout
	}
	httpClient := &http.Client{Timeout: transportCfg.Timeout}

	app := newWithDependencies(store, clock.New(), transportCfg.BaseURL, httpClient, cfg.Poll, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.TokenStore, clk clock.Clock, baseURL string, httpClient *http.Client, pollCfg notify.Config, logger *slog.Logger) *App {
	api := transport.NewWithHTTPClient(baseURL, store, httpClient, logger)
	view := reconcile.New()
	poller := notify.New(api, store, clk, pollCfg, logger)
	sess := session.NewManager(api, store, view, poller, logger)
	dispatcher := dispatch.New(api, view, poller, sess, logger)
	msgs := messages.NewManager(api, poller, sess, clk, logger)

	// Every teardown also forgets cached messages and the reply context
	sess.OnTeardown(msgs.Reset)

	return &App{
		Store:      store,
		Clock:      clk,
		Logger:     logger,
		Transport:  api,
		View:       view,
		Poller:     poller,
		Session:    sess,
		Dispatcher: dispatcher,
		Messages:   msgs,
	}
}

// Close stops background work and releases the token store
func (a *App) Close() error {
	a.Poller.Stop()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
