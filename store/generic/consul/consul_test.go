package consul

import (
	"context"
	"testing"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/store/generic/consul/consultest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *consultest.Server) {
	t.Helper()

	server := consultest.NewServer(t)
	s, err := New(&Config{Address: server.Address(), Prefix: "/meta/"}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Open(context.Background()))

	return s, server
}

func TestStore_KeyLayout(t *testing.T) {
	s, server := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", "file.root", "owner", "alice"))

	server.Put("meta/user/other.root", []byte(`{"owner":"bob"}`))
	meta, err := s.Get(ctx, "user", "other.root")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"owner": "bob"}, meta)
}

func TestStore_CapabilityWithoutLeader(t *testing.T) {
	s, server := newTestStore(t)
	server.SetLeader("")

	_, err := s.Get(context.Background(), "user", "file.root")
	assert.ErrorIs(t, err, data.ErrNotImplemented)
}

func TestStore_ConcurrentWriteConflicts(t *testing.T) {
	s, server := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", "file.root", "owner", "alice"))

	server.BeforeWrite = func(key string) {
		server.BeforeWrite = nil
		server.Put(key, []byte(`{"owner":"mallory"}`))
	}

	err := s.Set(ctx, "user", "file.root", "owner", "bob")
	assert.ErrorIs(t, err, data.ErrConflict)

	meta, err := s.Get(ctx, "user", "file.root")
	require.NoError(t, err)
	assert.Equal(t, "mallory", meta["owner"])
}

func TestStore_ListSkipsUndecodable(t *testing.T) {
	s, server := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "user", "a", "run", 1))
	server.Put("meta/user/b", []byte("not json"))

	results, err := s.List(ctx, "user", data.Filters{}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Name)
}
