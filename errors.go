package didmeta

import "github.com/mwantia/didmeta/data"

// Errors returned by the facade, re-exported for callers that only import
// the root package.
var (
	// Lookup errors
	ErrNotFound    = data.ErrNotFound
	ErrKeyNotFound = data.ErrKeyNotFound
	ErrDuplicate   = data.ErrDuplicate

	// Value errors
	ErrInvalidValueForKey   = data.ErrInvalidValueForKey
	ErrInvalidMetadata      = data.ErrInvalidMetadata
	ErrUnsupportedKeyType   = data.ErrUnsupportedKeyType
	ErrUnsupportedValueType = data.ErrUnsupportedValueType
	ErrInvalidObject        = data.ErrInvalidObject

	// Operation errors
	ErrUnsupportedOperation = data.ErrUnsupportedOperation
	ErrNotImplemented       = data.ErrNotImplemented
	ErrConflict             = data.ErrConflict
)
