package generic_test

import (
	"context"
	"testing"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/store"
	"github.com/mwantia/didmeta/store/generic/consul"
	"github.com/mwantia/didmeta/store/generic/consul/consultest"
	"github.com/mwantia/didmeta/store/generic/jsonmeta"
	"github.com/mwantia/didmeta/store/generic/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreFactory creates a new generic store instance for testing.
type TestStoreFactory func(t *testing.T) store.GenericMetadataStore

// GetTestStoreFactories returns all generic store implementations to test.
func GetTestStoreFactories() map[string]TestStoreFactory {
	return map[string]TestStoreFactory{
		"memory": func(t *testing.T) store.GenericMetadataStore {
			return memory.New(nil)
		},
		"jsonmeta": func(t *testing.T) store.GenericMetadataStore {
			ctx := context.Background()
			db, err := store.OpenDatabase(ctx, "sqlite://:memory:")
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			require.NoError(t, db.InitSchema(ctx))
			return jsonmeta.New(db, nil, nil)
		},
		"consul": func(t *testing.T) store.GenericMetadataStore {
			server := consultest.NewServer(t)
			s, err := consul.New(&consul.Config{Address: server.Address()}, nil, nil)
			require.NoError(t, err)
			return s
		},
	}
}

func openStore(t *testing.T, factory TestStoreFactory) store.GenericMetadataStore {
	t.Helper()

	s := factory(t)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// TestAllStores_SetGet verifies that Set creates the record on first write
// and that later writes merge into it.
func TestAllStores_SetGet(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, factory)
			ctx := context.Background()

			_, err := s.Get(ctx, "user", "file.root")
			require.ErrorIs(t, err, data.ErrNotFound)

			require.NoError(t, s.Set(ctx, "user", "file.root", "owner", "alice"))
			require.NoError(t, s.Set(ctx, "user", "file.root", "run", 7))
			require.NoError(t, s.Set(ctx, "user", "file.root", "owner", "bob"))

			meta, err := s.Get(ctx, "user", "file.root")
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"owner": "bob", "run": 7.0}, meta)
		})
	}
}

// TestAllStores_SetMany verifies that several keys merge in one write.
func TestAllStores_SetMany(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, factory)
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, "user", "file.root", "keep", true))
			require.NoError(t, s.SetMany(ctx, "user", "file.root", map[string]any{
				"tags":  []string{"a", "b"},
				"attrs": map[string]any{"x": 1},
			}))

			meta, err := s.Get(ctx, "user", "file.root")
			require.NoError(t, err)
			assert.Equal(t, true, meta["keep"])
			assert.Equal(t, []any{"a", "b"}, meta["tags"])
			assert.Equal(t, map[string]any{"x": 1.0}, meta["attrs"])
		})
	}
}

// TestAllStores_Delete verifies key removal and the missing-key error.
func TestAllStores_Delete(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, factory)
			ctx := context.Background()

			err := s.Delete(ctx, "user", "file.root", "owner")
			require.ErrorIs(t, err, data.ErrKeyNotFound)

			require.NoError(t, s.Set(ctx, "user", "file.root", "owner", "alice"))
			require.NoError(t, s.Set(ctx, "user", "file.root", "run", 7))
			require.NoError(t, s.Delete(ctx, "user", "file.root", "owner"))

			err = s.Delete(ctx, "user", "file.root", "owner")
			require.ErrorIs(t, err, data.ErrKeyNotFound)

			meta, err := s.Get(ctx, "user", "file.root")
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"run": 7.0}, meta)
		})
	}
}

// TestAllStores_List verifies conjunctive equality filtering, scoping and paging.
func TestAllStores_List(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, factory)
			ctx := context.Background()

			require.NoError(t, s.SetMany(ctx, "user", "a", map[string]any{"run": 7, "stream": "physics"}))
			require.NoError(t, s.SetMany(ctx, "user", "b", map[string]any{"run": 7, "stream": "calib"}))
			require.NoError(t, s.SetMany(ctx, "user", "c", map[string]any{"run": 8, "stream": "physics"}))
			require.NoError(t, s.SetMany(ctx, "group", "d", map[string]any{"run": 7, "stream": "physics"}))

			tests := []struct {
				name    string
				scope   string
				filters data.Filters
				opts    *data.ListOptions
				want    []string
			}{
				{name: "single", scope: "user", filters: data.Filters{"run": 7}, want: []string{"user:a", "user:b"}},
				{name: "conjunction", scope: "user", filters: data.Filters{"run": 7, "stream": "physics"}, want: []string{"user:a"}},
				{name: "all scopes", filters: data.Filters{"run": 7, "stream": "physics"}, want: []string{"group:d", "user:a"}},
				{name: "no match", scope: "user", filters: data.Filters{"run": 9}, want: []string{}},
				{name: "paging", scope: "user", filters: data.Filters{}, opts: &data.ListOptions{Limit: 1, Offset: 1}, want: []string{"user:b"}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					results, err := s.List(ctx, tt.scope, tt.filters, tt.opts)
					require.NoError(t, err)

					got := make([]string, 0, len(results))
					for _, r := range results {
						got = append(got, r.Scope+":"+r.Name)
					}
					assert.Equal(t, tt.want, got)
				})
			}
		})
	}
}

// TestAllStores_Capabilities verifies every store advertises generic metadata.
func TestAllStores_Capabilities(t *testing.T) {
	for name, factory := range GetTestStoreFactories() {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, factory)

			require.NoError(t, s.Capability(context.Background()))
			assert.True(t, s.GetCapabilities().Contains(store.CapabilityGenericMetadata))
		})
	}
}
