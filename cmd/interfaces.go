package cmd

import (
	"context"
	"io"

	"github.com/mwantia/didmeta"
	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/schema"
)

// API is the subset of the metadata facade available to commands.
type API interface {
	// Get returns the metadata of a DID from the stores selected by mode.
	Get(ctx context.Context, scope, name string, mode didmeta.Mode) (map[string]any, error)

	// GetValue returns a single metadata value, routed by key.
	GetValue(ctx context.Context, scope, name, key string) (any, error)

	// SetMany writes all pairs in one transaction.
	SetMany(ctx context.Context, scope, name string, meta map[string]any, recursive bool) error

	// Delete removes a generic metadata key.
	Delete(ctx context.Context, scope, name, key string) error

	// List returns the identifiers in scope matching filters.
	List(ctx context.Context, scope string, filters data.Filters, opts *data.ListOptions) ([]*data.ListResult, error)

	// Registry returns the key schema registry.
	Registry() *schema.Registry
}

var _ API = (*didmeta.Facade)(nil)

// Command represents an executable metadata command.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "get [-m mode] scope:name")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}
