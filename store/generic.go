package store

import (
	"context"

	"github.com/mwantia/didmeta/data"
)

// GenericMetadataStore keeps the schema-less attribute mapping of each DID.
// One implementation is selected at process start and shared for the
// lifetime of the facade.
type GenericMetadataStore interface {
	Backend

	// Capability returns data.ErrNotImplemented when the underlying engine
	// cannot serve schema-less metadata. Every operation checks it first.
	Capability(ctx context.Context) error

	// Get returns the whole mapping, or data.ErrNotFound if none was written yet.
	Get(ctx context.Context, scope, name string) (map[string]any, error)
	// Set writes one key through a single read-modify-write of the mapping.
	Set(ctx context.Context, scope, name, key string, value any) error
	// SetMany merges several keys in one update.
	SetMany(ctx context.Context, scope, name string, meta map[string]any) error
	// Delete removes one key, failing with data.ErrKeyNotFound if it is absent.
	Delete(ctx context.Context, scope, name, key string) error
	// List returns every DID whose mapping matches all filters by equality.
	// An empty scope searches every scope.
	List(ctx context.Context, scope string, filters data.Filters, opts *data.ListOptions) ([]*data.ListResult, error)
}
