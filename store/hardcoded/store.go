package hardcoded

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/metrics"
	"github.com/mwantia/didmeta/store"
	"github.com/mwantia/didmeta/store/counter"
)

// Store owns the fixed DID columns and the derived values that are
// replicated onto contents, requests, locks and replicas.
type Store struct {
	db       *store.Database
	accounts store.AccountCounter
	rses     store.RSECounter
	log      *log.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Store)

// WithCounters replaces the SQL usage counters.
func WithCounters(accounts store.AccountCounter, rses store.RSECounter) Option {
	return func(s *Store) {
		if accounts != nil {
			s.accounts = accounts
		}
		if rses != nil {
			s.rses = rses
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.log = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for lifetimes and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(db *store.Database, opts ...Option) *Store {
	s := &Store{
		db:       db,
		accounts: counter.NewAccountCounter(db),
		rses:     counter.NewRSECounter(db),
		log:      log.NewDiscard(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) Name() string {
	return "hardcoded"
}

func (s *Store) Open(ctx context.Context) error {
	if err := s.db.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	return nil
}

// Close is a no-op; the database is shared and closed by its owner.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

func (s *Store) GetCapabilities() *store.Capabilities {
	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityTransactional,
		},
		Engine: string(s.db.Dialect()),
	}
}

// Exists reports whether a DID row is registered.
func (s *Store) Exists(ctx context.Context, scope, name string) (bool, error) {
	_, err := s.Type(ctx, scope, name)
	if errors.Is(err, data.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Type returns the did_type of a registered DID.
func (s *Store) Type(ctx context.Context, scope, name string) (data.DIDType, error) {
	var didType string
	err := s.db.QueryRow(ctx, "SELECT did_type FROM dids WHERE scope = ? AND name = ?", scope, name).Scan(&didType)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s:%s", data.ErrNotFound, scope, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up %s:%s: %w", scope, name, err)
	}
	return data.DIDType(didType), nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

var _ store.Backend = (*Store)(nil)
