package schema

import (
	"context"
	"testing"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	ctx := context.Background()

	db, err := store.OpenDatabase(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitSchema(ctx))

	return NewRegistry(db, nil)
}

func TestRegistry_AddKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		keyType   string
		valueType string
		regexp    string
		wantType  data.KeyType
		wantErr   error
	}{
		{name: "file alias", key: "owner", keyType: "F", wantType: data.KeyTypeFile},
		{name: "collection", key: "owner", keyType: "collection", wantType: data.KeyTypeCollection},
		{name: "derived", key: "owner", keyType: "DERIVED", wantType: data.KeyTypeDerived},
		{name: "archive", key: "owner", keyType: "ARCHIVE", wantErr: data.ErrUnsupportedKeyType},
		{name: "unknown type", key: "owner", keyType: "BLOB", wantErr: data.ErrUnsupportedKeyType},
		{name: "unknown value type", key: "owner", keyType: "ALL", valueType: "complex", wantErr: data.ErrUnsupportedValueType},
		{name: "invalid regexp", key: "owner", keyType: "ALL", regexp: "([", wantErr: data.ErrInvalidObject},
		{name: "fixed column", key: "project", keyType: "ALL", wantErr: data.ErrInvalidObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t)
			ctx := context.Background()

			err := r.AddKey(ctx, tt.key, tt.keyType, tt.valueType, tt.regexp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			def, err := r.GetKey(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, def.KeyType)
		})
	}
}

func TestRegistry_KeyLifecycle(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.AddKey(ctx, "owner", "ALL", "string", ""))
	require.NoError(t, r.AddKey(ctx, "campaign_tag", "DATASET", "", "mc[0-9]+"))

	err := r.AddKey(ctx, "owner", "ALL", "", "")
	assert.ErrorIs(t, err, data.ErrDuplicate)

	keys, err := r.ListKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "campaign_tag", keys[0].Key)
	assert.Equal(t, "mc[0-9]+", keys[0].ValueRegexp)

	require.NoError(t, r.AddValue(ctx, "campaign_tag", "mc16"))
	err = r.AddValue(ctx, "campaign_tag", "data16")
	assert.ErrorIs(t, err, data.ErrInvalidValueForKey)
	err = r.AddValue(ctx, "campaign_tag", "mc16")
	assert.ErrorIs(t, err, data.ErrDuplicate)

	require.NoError(t, r.DelKey(ctx, "campaign_tag"))
	err = r.DelKey(ctx, "campaign_tag")
	assert.ErrorIs(t, err, data.ErrKeyNotFound)

	_, err = r.ListValues(ctx, "campaign_tag")
	assert.ErrorIs(t, err, data.ErrKeyNotFound)
}

func TestRegistry_ValidateMeta(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.AddKey(ctx, "owner", "ALL", "string", ""))
	require.NoError(t, r.AddKey(ctx, "nevents_expected", "FILE", "int", ""))
	require.NoError(t, r.AddKey(ctx, "campaign_tag", "COLLECTION", "", "mc[0-9]+"))
	require.NoError(t, r.AddKey(ctx, "quality", "ALL", "string", ""))
	require.NoError(t, r.AddValue(ctx, "quality", "good"))
	require.NoError(t, r.AddValue(ctx, "quality", "bad"))
	require.NoError(t, r.AddKey(ctx, "period", "ALL", "", "[a-z]+"))

	tests := []struct {
		name    string
		meta    map[string]any
		didType data.DIDType
		wantErr error
	}{
		{name: "valid", meta: map[string]any{"owner": "alice", "quality": "good"}, didType: data.DIDTypeDataset},
		{name: "hardcoded skipped", meta: map[string]any{"project": 12, "owner": "alice"}, didType: data.DIDTypeFile},
		{name: "whole float as int", meta: map[string]any{"nevents_expected": 100.0}, didType: data.DIDTypeFile},
		{name: "unregistered", meta: map[string]any{"color": "red"}, didType: data.DIDTypeFile, wantErr: data.ErrInvalidObject},
		{name: "wrong did type", meta: map[string]any{"nevents_expected": 100}, didType: data.DIDTypeDataset, wantErr: data.ErrInvalidObject},
		{name: "collection key on file", meta: map[string]any{"campaign_tag": "mc16"}, didType: data.DIDTypeFile, wantErr: data.ErrInvalidObject},
		{name: "wrong value type", meta: map[string]any{"owner": 42}, didType: data.DIDTypeFile, wantErr: data.ErrUnsupportedValueType},
		{name: "regexp mismatch", meta: map[string]any{"campaign_tag": "data16"}, didType: data.DIDTypeContainer, wantErr: data.ErrInvalidValueForKey},
		{name: "regexp match", meta: map[string]any{"campaign_tag": "mc20"}, didType: data.DIDTypeContainer},
		{name: "regexp skips numbers", meta: map[string]any{"period": 2024}, didType: data.DIDTypeDataset},
		{name: "regexp skips lists", meta: map[string]any{"period": []any{"A", 1}}, didType: data.DIDTypeDataset},
		{name: "regexp checks strings", meta: map[string]any{"period": "2024"}, didType: data.DIDTypeDataset, wantErr: data.ErrInvalidValueForKey},
		{name: "not enumerated", meta: map[string]any{"quality": "ugly"}, didType: data.DIDTypeFile, wantErr: data.ErrInvalidValueForKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.ValidateMeta(ctx, tt.meta, tt.didType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
