package factory

import (
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/sovereign-client/internal/dependencies/mocks"
	"github.com/mcoot/sovereign-client/internal/fakeserver"
	"github.com/mcoot/sovereign-client/internal/notify"
	"github.com/mcoot/sovereign-client/internal/storage/memory"
	"github.com/mcoot/sovereign-client/internal/testutil"
)

// TestPassword is the password CreateAccount gives every test account
const TestPassword = "correct-horse"

// TestPollInterval is the poll period of test apps
const TestPollInterval = 20 * time.Second

// TestApp extends App with a running reference server and test controls
type TestApp struct {
	*App

	// Server is the in-process game server the client talks to
	Server *fakeserver.Backend
	// MemoryStore is the token slot, for direct inspection
	MemoryStore *memory.Storage

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App wired to a fresh reference server
func NewTestApp() *TestApp {
	return NewTestAppWithServer(fakeserver.Options{})
}

// NewTestAppWithServer creates an App wired to a reference server built
// from opts. Password hashing is forced to its cheapest cost.
func NewTestAppWithServer(opts fakeserver.Options) *TestApp {
	if opts.Logger == nil {
		opts.Logger = testutil.NopLogger()
	}
	if opts.Auth.BcryptCost == 0 {
		opts.Auth.BcryptCost = bcrypt.MinCost
	}
	if opts.Random == nil {
		opts.Random = mocks.NewMockRandom()
	}
	server := fakeserver.New(opts)
	baseURL := server.Start()

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, mockClock, baseURL, &http.Client{Timeout: 5 * time.Second},
		notify.Config{Interval: TestPollInterval}, testutil.NopLogger())

	return &TestApp{
		App:         app,
		Server:      server,
		MemoryStore: store,
		MockClock:   mockClock,
	}
}

// CreateAccount registers username on the server with TestPassword
func (t *TestApp) CreateAccount(username string) error {
	_, err := t.Server.CreateAccount(username, TestPassword)
	return err
}

// Close stops the client and the server
func (t *TestApp) Close() {
	_ = t.App.Close()
	t.Server.Close()
}
