package builtin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/mwantia/didmeta"
	"github.com/mwantia/didmeta/cmd"
	"github.com/mwantia/didmeta/cmd/builtin"
	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(tst *testing.T) *cmd.Manager {
	tst.Helper()
	ctx := tst.Context()

	db, err := store.OpenDatabase(ctx, "sqlite://:memory:")
	require.NoError(tst, err)
	tst.Cleanup(func() { _ = db.Close() })

	facade, err := didmeta.New(ctx, db, didmeta.WithoutTerminalLog(), didmeta.WithGenericStore(":memory:"))
	require.NoError(tst, err)
	tst.Cleanup(func() { _ = facade.Close(context.Background()) })

	hc := facade.Hardcoded()
	for _, did := range []*data.DID{
		{Scope: "user", Name: "f1", Type: data.DIDTypeFile, Account: "alice", Bytes: 10},
		{Scope: "user", Name: "ds", Type: data.DIDTypeDataset, Account: "alice"},
	} {
		require.NoError(tst, hc.RegisterDID(ctx, did))
	}
	require.NoError(tst, hc.Attach(ctx, "user", "ds", []data.DIDRef{{Scope: "user", Name: "f1"}}))

	manager, err := cmd.NewManager(facade, builtin.All()...)
	require.NoError(tst, err)
	return manager
}

func execute(t *testing.T, m *cmd.Manager, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	code, err := m.Execute(t.Context(), &out, args...)
	require.NoError(t, err, args)
	require.Equal(t, 0, code, args)
	return out.String()
}

func TestCommands_SetGetDelete(t *testing.T) {
	m := newTestManager(t)

	execute(t, m, "set", "user:ds", "datatype=AOD", "owner=bob")

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(execute(t, m, "get", "user:ds")), &meta))
	assert.Equal(t, "AOD", meta["datatype"])
	assert.Equal(t, "bob", meta["owner"])

	assert.Equal(t, "\"bob\"\n", execute(t, m, "get", "-k", "owner", "user:ds"))

	execute(t, m, "delete", "user:ds", "owner")
	require.NoError(t, json.Unmarshal([]byte(execute(t, m, "get", "-m", "generic", "user:ds")), &meta))
	assert.NotContains(t, meta, "owner")
}

func TestCommands_List(t *testing.T) {
	m := newTestManager(t)
	execute(t, m, "set", "user:ds", "datatype=AOD")

	assert.Equal(t, "user:ds\n", execute(t, m, "list", "-f", "datatype=AOD", "user"))
	assert.Equal(t, "user:f1\n", execute(t, m, "list", "-t", "file", "user"))

	out := execute(t, m, "list", "-l", "-t", "all", "user")
	assert.Contains(t, out, "user:ds")
	assert.Contains(t, out, "user:f1")
}

func TestCommands_Keys(t *testing.T) {
	m := newTestManager(t)

	execute(t, m, "add-key", "-t", "dataset", "-v", "string", "physics")
	execute(t, m, "add-value", "physics", "higgs")
	assert.Equal(t, "higgs\n", execute(t, m, "values", "physics"))
	assert.Contains(t, execute(t, m, "keys"), "physics")

	execute(t, m, "del-key", "physics")
	assert.NotContains(t, execute(t, m, "keys"), "physics")
}

func TestCommands_Errors(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "unknown command", args: []string{"nope"}, code: 1},
		{name: "missing args", args: []string{"get"}, code: 2},
		{name: "bad did", args: []string{"get", "nodid"}, code: 1},
		{name: "bad pair", args: []string{"set", "user:ds", "novalue"}, code: 2},
		{name: "hardcoded delete", args: []string{"delete", "user:ds", "bytes"}, code: 1},
		{name: "bad flag", args: []string{"list", "--nope", "user"}, code: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			code, err := m.Execute(t.Context(), &out, tt.args...)
			assert.Error(t, err)
			assert.Equal(t, tt.code, code)
		})
	}
}
