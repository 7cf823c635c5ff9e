package didmeta

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/notify"
)

// Get returns the metadata of a DID. In ModeAll the generic mapping is
// applied first and the fixed columns on top, so a fixed column wins over a
// generic key of the same name.
func (f *Facade) Get(ctx context.Context, scope, name string, mode Mode) (map[string]any, error) {
	switch mode {
	case ModeHardcoded:
		return f.hardcoded.Get(ctx, scope, name)
	case ModeGeneric:
		return f.generic.Get(ctx, scope, name)
	case ModeAll:
	default:
		return nil, fmt.Errorf("%w: unknown plugin mode '%s'", data.ErrUnsupportedOperation, mode)
	}

	meta := make(map[string]any)

	generic, err := f.generic.Get(ctx, scope, name)
	genericMissing := errors.Is(err, data.ErrNotFound)
	if err != nil && !genericMissing {
		return nil, err
	}
	maps.Copy(meta, generic)

	fixed, err := f.hardcoded.Get(ctx, scope, name)
	if errors.Is(err, data.ErrNotFound) && !genericMissing {
		return meta, nil
	}
	if err != nil {
		return nil, err
	}
	maps.Copy(meta, fixed)

	return meta, nil
}

// GetValue returns a single key, routed by its classification.
func (f *Facade) GetValue(ctx context.Context, scope, name, key string) (any, error) {
	if data.IsHardcoded(key) {
		meta, err := f.hardcoded.Get(ctx, scope, name)
		if err != nil {
			return nil, err
		}
		value, ok := meta[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a stored column", data.ErrKeyNotFound, key)
		}
		return value, nil
	}

	meta, err := f.generic.Get(ctx, scope, name)
	if errors.Is(err, data.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
	}
	if err != nil {
		return nil, err
	}

	value, ok := meta[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
	}
	return value, nil
}

// Set writes one key. With recursive, a fixed column is applied to the
// direct children of a collection as well.
func (f *Facade) Set(ctx context.Context, scope, name, key string, value any, recursive bool) error {
	return f.SetMany(ctx, scope, name, map[string]any{key: value}, recursive)
}

// SetMany writes several keys in one transaction. Generic keys are written
// only for registered DIDs and, with a key policy, only if they validate.
// Generic stores outside the database (memory, consul) are written last and
// are not undone if the final commit fails.
func (f *Facade) SetMany(ctx context.Context, scope, name string, meta map[string]any, recursive bool) error {
	if len(meta) == 0 {
		return nil
	}

	keys := slices.Sorted(maps.Keys(meta))
	generic := make(map[string]any)
	for _, key := range keys {
		if !data.IsHardcoded(key) {
			generic[key] = meta[key]
		}
	}

	err := f.db.RunInTx(ctx, func(ctx context.Context) error {
		if len(generic) > 0 {
			didType, err := f.hardcoded.Type(ctx, scope, name)
			if err != nil {
				return err
			}

			if f.config.KeyPolicy {
				if err := f.registry.ValidateMeta(ctx, generic, didType); err != nil {
					return err
				}
			}
		}

		for _, key := range keys {
			if !data.IsHardcoded(key) {
				continue
			}

			f.log.Debug("Routing %s of %s:%s to the hardcoded store", key, scope, name)
			if err := f.hardcoded.Set(ctx, scope, name, key, meta[key], recursive); err != nil {
				return err
			}
		}

		if len(generic) > 0 {
			f.log.Debug("Routing %d key(s) of %s:%s to the %s store", len(generic), scope, name, f.generic.Name())
			return f.generic.SetMany(ctx, scope, name, generic)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, key := range keys {
		f.publisher.Publish(ctx, notify.KindSetMetadata, map[string]any{
			"scope":     scope,
			"name":      name,
			"key":       key,
			"value":     meta[key],
			"recursive": recursive,
		})
	}
	return nil
}

// Delete removes a generic key. Fixed columns cannot be deleted.
func (f *Facade) Delete(ctx context.Context, scope, name, key string) error {
	if data.IsHardcoded(key) {
		return fmt.Errorf("%w: %s is a fixed attribute and cannot be deleted", data.ErrUnsupportedOperation, key)
	}

	err := f.db.RunInTx(ctx, func(ctx context.Context) error {
		return f.generic.Delete(ctx, scope, name, key)
	})
	if err != nil {
		return err
	}

	f.publisher.Publish(ctx, notify.KindDeleteMetadata, map[string]any{
		"scope": scope,
		"name":  name,
		"key":   key,
	})
	return nil
}

// List routes a filtered listing to the store owning every filter key.
// Filters spanning both stores are rejected; no filters lists the fixed
// columns.
func (f *Facade) List(ctx context.Context, scope string, filters data.Filters, opts *data.ListOptions) ([]*data.ListResult, error) {
	var fixed, generic int
	for key := range filters {
		if data.IsHardcoded(key) {
			fixed++
		} else {
			generic++
		}
	}

	switch {
	case fixed > 0 && generic > 0:
		return nil, fmt.Errorf("%w: mixed hardcoded/generic filtering is not supported", data.ErrUnsupportedOperation)
	case generic > 0:
		return f.generic.List(ctx, scope, filters, opts)
	default:
		return f.hardcoded.List(ctx, scope, filters, opts)
	}
}
