package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/storage"
	"github.com/mcoot/sovereign-client/internal/storage/file"
	"github.com/mcoot/sovereign-client/internal/storage/memory"
	redisstorage "github.com/mcoot/sovereign-client/internal/storage/redis"
	"github.com/mcoot/sovereign-client/internal/transport"
)

func TestNewDefaultsToFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	app, err := New(Config{TokenPath: path})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	store, ok := app.Store.(*file.Storage)
	require.True(t, ok)
	assert.Equal(t, path, store.Path())
	assert.Equal(t, transport.DefaultConfig().BaseURL, app.Transport.BaseURL())
}

func TestNewMemoryStore(t *testing.T) {
	app, err := New(Config{StorageType: StorageTypeMemory})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	_, ok := app.Store.(*memory.Storage)
	assert.True(t, ok)
	assert.False(t, storage.HasToken(context.Background(), app.Store))
}

func TestNewPinnedToken(t *testing.T) {
	app, err := New(Config{StorageType: StorageTypeFile, Token: "pinned"})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	token, err := app.Store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pinned", token)
}

func TestNewRedisStore(t *testing.T) {
	mini := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, app.Store.Set(ctx, "tok"))
	token, err := app.Store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	assert.NoError(t, app.Close())
}

func TestNewRejectsBadStorage(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)

	_, err = New(Config{StorageType: "floppy"})
	assert.Error(t, err)
}

func TestTeardownResetsMessages(t *testing.T) {
	app := NewTestApp()
	defer app.Close()
	require.NoError(t, app.CreateAccount("alice"))
	require.NoError(t, app.Session.Login(context.Background(), "alice", TestPassword))

	msg := app.Messages.Reply(model.Message{ID: 7, From: "bob", Subject: "hi"}, "")
	assert.Equal(t, "bob", msg.To)
	_, ok := app.Messages.ReplyContext()
	require.True(t, ok)

	app.Session.Logout(context.Background())

	_, ok = app.Messages.ReplyContext()
	assert.False(t, ok)
	assert.False(t, app.Poller.Running())
	assert.False(t, storage.HasToken(context.Background(), app.MemoryStore))
}
