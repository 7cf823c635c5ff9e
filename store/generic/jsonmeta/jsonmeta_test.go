package jsonmeta

import (
	"context"
	"testing"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *store.Database) {
	t.Helper()
	ctx := context.Background()

	db, err := store.OpenDatabase(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitSchema(ctx))

	s := New(db, nil, nil)
	require.NoError(t, s.Open(ctx))
	return s, db
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		version      string
		major, minor int
	}{
		{"3.46.1", 3, 46},
		{"16.2 (Debian 16.2-1.pgdg120+2)", 16, 2},
		{"9.3", 9, 3},
		{"garbage", 0, 0},
	}

	for _, tt := range tests {
		major, minor := parseVersion(tt.version)
		assert.Equal(t, tt.major, major, tt.version)
		assert.Equal(t, tt.minor, minor, tt.version)
	}
}

func TestStore_OldEngineIsNotImplemented(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenDatabase(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitSchema(ctx))

	s := New(db, nil, nil)
	s.serverVersion = func(context.Context) (string, error) {
		return "3.37.2", nil
	}

	assert.ErrorIs(t, s.Open(ctx), data.ErrNotImplemented)

	_, err = s.Get(ctx, "user", "file.root")
	assert.ErrorIs(t, err, data.ErrNotImplemented)
	assert.ErrorIs(t, s.Set(ctx, "user", "file.root", "owner", "alice"), data.ErrNotImplemented)
	assert.ErrorIs(t, s.SetMany(ctx, "user", "file.root", map[string]any{"owner": "alice"}), data.ErrNotImplemented)
	assert.ErrorIs(t, s.Delete(ctx, "user", "file.root", "owner"), data.ErrNotImplemented)
	_, err = s.List(ctx, "user", data.Filters{"owner": "alice"}, nil)
	assert.ErrorIs(t, err, data.ErrNotImplemented)

	// a failed check is not remembered
	s.serverVersion = func(context.Context) (string, error) {
		return "3.38.0", nil
	}
	require.NoError(t, s.Open(ctx))
	assert.Equal(t, "3.38.0", s.GetCapabilities().Version)
}

func TestStore_Capabilities(t *testing.T) {
	s, _ := newTestStore(t)

	caps := s.GetCapabilities()
	assert.True(t, caps.Contains(store.CapabilityGenericQuery))
	assert.True(t, caps.Contains(store.CapabilityTransactional))
	assert.Equal(t, "sqlite", caps.Engine)
	assert.NotEmpty(t, caps.Version)
}

func TestStore_SetJoinsTransaction(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	err := db.RunInTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Set(ctx, "user", "file.root", "owner", "alice"))
		return data.ErrConflict
	})
	require.ErrorIs(t, err, data.ErrConflict)

	_, err = s.Get(ctx, "user", "file.root")
	assert.ErrorIs(t, err, data.ErrNotFound)
}

func TestStore_ListNestedValue(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", "a", "nested", "flat"))
	require.NoError(t, s.Set(ctx, "user", "b", "nested", map[string]any{"k": []any{1, "two"}}))

	results, err := s.List(ctx, "", data.Filters{"nested": map[string]any{"k": []any{1, "two"}}}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Name)
}
