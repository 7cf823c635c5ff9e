package memory

import (
	"context"
	"testing"

	"github.com/mwantia/didmeta/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ClosedRejectsOperations(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", "a", "owner", "alice"))
	require.NoError(t, s.Close(ctx))

	_, err := s.Get(ctx, "user", "a")
	assert.ErrorIs(t, err, data.ErrClosed)
	assert.ErrorIs(t, err, data.ErrNotImplemented)
	assert.ErrorIs(t, s.Capability(ctx), data.ErrNotImplemented)

	require.NoError(t, s.Open(ctx))
	_, err = s.Get(ctx, "user", "a")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", "a", "owner", "alice"))

	meta, err := s.Get(ctx, "user", "a")
	require.NoError(t, err)
	meta["owner"] = "bob"

	meta, err = s.Get(ctx, "user", "a")
	require.NoError(t, err)
	assert.Equal(t, "alice", meta["owner"])
}

func TestStore_ListScopeBoundary(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", "a", "run", 1))
	require.NoError(t, s.Set(ctx, "user2", "a", "run", 1))
	require.NoError(t, s.Set(ctx, "use", "a", "run", 1))

	results, err := s.List(ctx, "user", data.Filters{"run": 1}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "user", results[0].Scope)
}
