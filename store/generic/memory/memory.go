// Package memory keeps generic metadata in an ordered in-process index.
// It serves tests and single-process deployments without a database.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/metrics"
	"github.com/mwantia/didmeta/store"
	"github.com/mwantia/didmeta/store/generic"
	"github.com/tidwall/btree"
)

// Store implements store.GenericMetadataStore on a btree keyed by
// scope and name, so listings come back in (scope, name) order.
type Store struct {
	mu      sync.RWMutex
	entries *btree.Map[string, map[string]any]
	closed  bool
	metrics *metrics.Metrics
}

func New(m *metrics.Metrics) *Store {
	return &Store{
		entries: btree.NewMap[string, map[string]any](0),
		metrics: m,
	}
}

func entryKey(scope, name string) string {
	return scope + "\x00" + name
}

func (s *Store) Name() string {
	return "memory"
}

func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = false
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = btree.NewMap[string, map[string]any](0)
	return nil
}

func (s *Store) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityGenericMetadata,
			store.CapabilityGenericQuery,
		},
		Engine: "memory",
	}
}

func (s *Store) Capability(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("%w: %w", data.ErrNotImplemented, data.ErrClosed)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, scope, name string) (meta map[string]any, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("get", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries.Get(entryKey(scope, name))
	if !ok {
		return nil, fmt.Errorf("%w: no generic metadata for %s:%s", data.ErrNotFound, scope, name)
	}
	return maps.Clone(entry), nil
}

func (s *Store) Set(ctx context.Context, scope, name, key string, value any) error {
	return s.SetMany(ctx, scope, name, map[string]any{key: value})
}

func (s *Store) SetMany(ctx context.Context, scope, name string, meta map[string]any) (err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("set", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries.Get(entryKey(scope, name))
	if ok {
		entry = maps.Clone(entry)
	} else {
		entry = make(map[string]any, len(meta))
	}

	if err := generic.Merge(entry, meta); err != nil {
		return err
	}

	s.entries.Set(entryKey(scope, name), entry)
	return nil
}

func (s *Store) Delete(ctx context.Context, scope, name, key string) (err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("delete", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries.Get(entryKey(scope, name))
	if !ok {
		return fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
	}
	if _, ok := entry[key]; !ok {
		return fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
	}

	entry = maps.Clone(entry)
	delete(entry, key)
	s.entries.Set(entryKey(scope, name), entry)
	return nil
}

func (s *Store) List(ctx context.Context, scope string, filters data.Filters, opts *data.ListOptions) (results []*data.ListResult, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("list", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results = []*data.ListResult{}
	var matchErr error

	iter := func(key string, entry map[string]any) bool {
		ref, _ := splitEntryKey(key)
		if scope != "" && ref.Scope != scope {
			return ref.Scope < scope
		}

		ok, err := generic.Matches(entry, filters)
		if err != nil {
			matchErr = err
			return false
		}
		if ok {
			results = append(results, &data.ListResult{Scope: ref.Scope, Name: ref.Name})
		}
		return true
	}

	if scope != "" {
		s.entries.Ascend(entryKey(scope, ""), iter)
	} else {
		s.entries.Scan(iter)
	}

	if matchErr != nil {
		return nil, matchErr
	}
	return generic.Page(results, opts), nil
}

func splitEntryKey(key string) (data.DIDRef, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return data.DIDRef{Scope: key[:i], Name: key[i+1:]}, true
		}
	}
	return data.DIDRef{}, false
}

var _ store.GenericMetadataStore = (*Store)(nil)
