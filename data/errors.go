package data

import (
	"errors"
	"sync"
)

// Standard errors that metadata stores and the facade return. Callers match
// them with errors.Is; stores wrap them with the offending scope, name or key.
var (
	// Lookup errors
	ErrNotFound    = errors.New("didmeta: data identifier not found")
	ErrKeyNotFound = errors.New("didmeta: key not found")
	ErrDuplicate   = errors.New("didmeta: already exists")

	// Value errors
	ErrInvalidValueForKey   = errors.New("didmeta: invalid value for key")
	ErrInvalidMetadata      = errors.New("didmeta: invalid metadata")
	ErrUnsupportedKeyType   = errors.New("didmeta: unsupported key type")
	ErrUnsupportedValueType = errors.New("didmeta: unsupported value type")
	ErrInvalidObject        = errors.New("didmeta: invalid object")

	// Operation errors
	ErrUnsupportedOperation = errors.New("didmeta: unsupported operation")
	ErrNotImplemented       = errors.New("didmeta: not implemented")
	ErrConflict             = errors.New("didmeta: concurrent modification")
	ErrClosed               = errors.New("didmeta: store already closed")
)

type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
