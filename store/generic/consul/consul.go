// Package consul keeps generic metadata in the Consul KV store, one JSON
// document per DID under <prefix>/<scope>/<name>.
package consul

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/metrics"
	"github.com/mwantia/didmeta/store"
	"github.com/mwantia/didmeta/store/generic"
)

// Store implements store.GenericMetadataStore on Consul KV. Writes are a
// single check-and-set on the document's modify index; losing the race
// returns data.ErrConflict instead of retrying.
//
// Limitations:
// - Consul KV has a 512KB limit per value
// - Listing reads every document below the scope prefix
type Store struct {
	client *api.Client
	kv     *api.KV
	config *Config
	log    *log.Logger

	metrics *metrics.Metrics
}

// Config contains connection options for the Consul store.
type Config struct {
	// Address of the Consul agent (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "didmeta")
	Prefix string
}

func New(config *Config, logger *log.Logger, m *metrics.Metrics) (*Store, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	config.Prefix = strings.Trim(config.Prefix, "/")
	if config.Prefix == "" {
		config.Prefix = "didmeta"
	}
	if logger == nil {
		logger = log.NewDiscard()
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &Store{
		client:  client,
		kv:      client.KV(),
		config:  config,
		log:     logger,
		metrics: m,
	}, nil
}

func (s *Store) Name() string {
	return "consul"
}

func (s *Store) Open(ctx context.Context) error {
	return s.Capability(ctx)
}

// Close is a no-op; the Consul client holds no session.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

func (s *Store) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityGenericMetadata,
			store.CapabilityGenericQuery,
		},
		Engine: "consul",
	}
}

// Capability requires an elected leader; without one KV writes cannot commit.
func (s *Store) Capability(ctx context.Context) error {
	leader, err := s.client.Status().LeaderWithQueryOptions((&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: consul at %s is unreachable: %v", data.ErrNotImplemented, s.config.Address, err)
	}
	if leader == "" {
		return fmt.Errorf("%w: consul at %s has no leader", data.ErrNotImplemented, s.config.Address)
	}
	return nil
}

func (s *Store) buildKey(scope, name string) string {
	return s.config.Prefix + "/" + scope + "/" + name
}

func (s *Store) read(ctx context.Context, scope, name string) (*api.KVPair, map[string]any, error) {
	pair, _, err := s.kv.Get(s.buildKey(scope, name), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read generic metadata of %s:%s: %w", scope, name, err)
	}
	if pair == nil {
		return nil, nil, fmt.Errorf("%w: no generic metadata for %s:%s", data.ErrNotFound, scope, name)
	}

	meta := make(map[string]any)
	if len(pair.Value) > 0 {
		if err := json.Unmarshal(pair.Value, &meta); err != nil {
			return nil, nil, fmt.Errorf("failed to decode generic metadata of %s:%s: %w", scope, name, err)
		}
	}
	return pair, meta, nil
}

// cas writes meta if the document is still at modifyIndex; zero means
// the document must not exist yet.
func (s *Store) cas(ctx context.Context, scope, name string, modifyIndex uint64, meta map[string]any) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("%w: %v", data.ErrInvalidMetadata, err)
	}

	ok, _, err := s.kv.CAS(&api.KVPair{
		Key:         s.buildKey(scope, name),
		Value:       raw,
		ModifyIndex: modifyIndex,
	}, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to write generic metadata of %s:%s: %w", scope, name, err)
	}
	if !ok {
		s.log.Warn("Concurrent update of %s:%s rejected", scope, name)
		return fmt.Errorf("%w: generic metadata of %s:%s", data.ErrConflict, scope, name)
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

	_, meta, err = s.read(ctx, scope, name)
	return meta, err
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

	var modifyIndex uint64
	pair, current, err := s.read(ctx, scope, name)
	switch {
	case err == nil:
		modifyIndex = pair.ModifyIndex
	case isNotFound(err):
		current = make(map[string]any, len(meta))
	default:
		return err
	}

	if err := generic.Merge(current, meta); err != nil {
		return err
	}
	return s.cas(ctx, scope, name, modifyIndex, current)
}

func (s *Store) Delete(ctx context.Context, scope, name, key string) (err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("delete", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return err
	}

	pair, current, err := s.read(ctx, scope, name)
	if isNotFound(err) {
		return fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
	}
	if err != nil {
		return err
	}

	if _, ok := current[key]; !ok {
		return fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
	}

	delete(current, key)
	return s.cas(ctx, scope, name, pair.ModifyIndex, current)
}

func (s *Store) List(ctx context.Context, scope string, filters data.Filters, opts *data.ListOptions) (results []*data.ListResult, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("list", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return nil, err
	}

	prefix := s.config.Prefix + "/"
	if scope != "" {
		prefix += scope + "/"
	}

	pairs, _, err := s.kv.List(prefix, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to list generic metadata: %w", err)
	}

	// Consul returns pairs sorted by key, which is (scope, name) order
	results = []*data.ListResult{}
	for _, pair := range pairs {
		ref, ok := generic.SplitRef(strings.TrimPrefix(pair.Key, s.config.Prefix+"/"))
		if !ok {
			continue
		}

		meta := make(map[string]any)
		if err := json.Unmarshal(pair.Value, &meta); err != nil {
			s.log.Warn("Skipping undecodable generic metadata at %s: %v", pair.Key, err)
			continue
		}

		matched, err := generic.Matches(meta, filters)
		if err != nil {
			return nil, err
		}
		if matched {
			results = append(results, &data.ListResult{Scope: ref.Scope, Name: ref.Name})
		}
	}

	return generic.Page(results, opts), nil
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, data.ErrNotFound)
}

var _ store.GenericMetadataStore = (*Store)(nil)
