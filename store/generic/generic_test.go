package generic

import (
	"testing"

	"github.com/mwantia/didmeta/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	meta := map[string]any{}
	require.NoError(t, Merge(meta, map[string]any{"run": 7, "tags": []string{"a", "b"}, "owner": "alice"}))

	tests := []struct {
		name    string
		filters data.Filters
		want    bool
	}{
		{name: "empty", filters: data.Filters{}, want: true},
		{name: "integer against float", filters: data.Filters{"run": 7.0}, want: true},
		{name: "conjunction", filters: data.Filters{"run": 7, "owner": "alice"}, want: true},
		{name: "one mismatch", filters: data.Filters{"run": 7, "owner": "bob"}, want: false},
		{name: "list value", filters: data.Filters{"tags": []any{"a", "b"}}, want: true},
		{name: "missing key", filters: data.Filters{"absent": 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Matches(meta, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestMerge_RejectsUnserialisable(t *testing.T) {
	err := Merge(map[string]any{}, map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, data.ErrInvalidMetadata)
}

func TestPage(t *testing.T) {
	results := []*data.ListResult{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	assert.Len(t, Page(results, &data.ListOptions{Limit: 2}), 2)
	assert.Equal(t, "b", Page(results, &data.ListOptions{Offset: 1, Limit: 1})[0].Name)
	assert.Empty(t, Page(results, &data.ListOptions{Offset: 5}))
	assert.Len(t, Page(results, nil), 3)
}

func TestSplitRef(t *testing.T) {
	ref, ok := SplitRef("user/file.root")
	require.True(t, ok)
	assert.Equal(t, data.DIDRef{Scope: "user", Name: "file.root"}, ref)

	_, ok = SplitRef("noscope")
	assert.False(t, ok)
}
