package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/sovereign-client/internal/storage"
)

func TestEmptyStoreHasNoToken(t *testing.T) {
	s := New()

	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoToken)
	assert.False(t, storage.HasToken(context.Background(), s))
}

func TestSetGetClear(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Set(ctx, "abc"))
	token, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, s.Set(ctx, "def"))
	token, _ = s.Get(ctx)
	assert.Equal(t, "def", token)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Get(ctx)
	assert.ErrorIs(t, err, storage.ErrNoToken)

	// Clearing twice is fine
	assert.NoError(t, s.Clear(ctx))
}

func TestNewWithToken(t *testing.T) {
	s := NewWithToken("seed")
	assert.True(t, storage.HasToken(context.Background(), s))
}
