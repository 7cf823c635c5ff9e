// Package didmeta presents the fixed-column and the schema-less metadata of
// data identifiers as one key space. Fixed attributes are written through
// the hardcoded store, which keeps every derived copy and usage counter in
// step; everything else goes to the configured generic store.
package didmeta

import (
	"context"
	"fmt"
	"time"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/metrics"
	"github.com/mwantia/didmeta/notify"
	"github.com/mwantia/didmeta/schema"
	"github.com/mwantia/didmeta/store"
	"github.com/mwantia/didmeta/store/hardcoded"
)

type Facade struct {
	db        *store.Database
	ownsDB    bool
	hardcoded *hardcoded.Store
	generic   store.GenericMetadataStore
	registry  *schema.Registry
	publisher notify.Publisher
	kafka     *notify.Kafka
	log       *log.Logger
	metrics   *metrics.Metrics
	config    *Config
}

// Open connects to the database at address and builds a facade that owns
// the connection.
func Open(ctx context.Context, address string, opts ...Option) (*Facade, error) {
	db, err := store.OpenDatabase(ctx, address)
	if err != nil {
		return nil, err
	}

	f, err := New(ctx, db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}

	f.ownsDB = true
	return f, nil
}

// New builds a facade on an open database. The generic store is selected
// once here and kept for the lifetime of the facade.
func New(ctx context.Context, db *store.Database, opts ...Option) (*Facade, error) {
	config := newDefaultConfig()
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	logger := log.NewLogger("didmeta", config.LogLevel, config.LogFile, config.NoTerminalLog)

	var m *metrics.Metrics
	if config.Registerer != nil {
		m = metrics.New(config.Registerer)
	}

	if config.InitSchema {
		if err := db.InitSchema(ctx); err != nil {
			return nil, err
		}
	}

	f := &Facade{
		db:       db,
		registry: schema.NewRegistry(db, logger.Named("schema")),
		log:      logger,
		metrics:  m,
		config:   config,
	}

	f.hardcoded = hardcoded.New(db,
		hardcoded.WithLogger(logger.Named("hardcoded")),
		hardcoded.WithMetrics(m),
		hardcoded.WithCounters(config.Accounts, config.RSEs),
	)

	generic := config.Generic
	if generic == nil {
		var err error
		if generic, err = ParseGenericAddress(config.GenericStore, db, logger.Named("generic"), m); err != nil {
			return nil, err
		}
	}
	if err := generic.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open generic store %s: %w", generic.Name(), err)
	}
	f.generic = generic

	switch {
	case config.Publisher != nil:
		f.publisher = config.Publisher
	case config.Kafka != nil:
		kafka, err := notify.NewKafka(*config.Kafka, logger.Named("notify"))
		if err != nil {
			_ = generic.Close(ctx)
			return nil, err
		}
		f.kafka = kafka
		f.publisher = kafka
	default:
		f.publisher = notify.Noop{}
	}

	f.log.Info("Metadata facade ready (database: %s, generic store: %s)", db.Dialect(), generic.Name())
	return f, nil
}

// Close releases the generic store, flushes pending events and closes the
// database if the facade opened it.
func (f *Facade) Close(ctx context.Context) error {
	errs := data.Errors{}

	errs.Add(f.generic.Close(ctx))
	if f.kafka != nil {
		errs.Add(f.kafka.Close(5 * time.Second))
	}
	if f.ownsDB {
		errs.Add(f.db.Close())
	}

	return errs.Errors()
}

// Hardcoded exposes the fixed-column store, including DID registration.
func (f *Facade) Hardcoded() *hardcoded.Store {
	return f.hardcoded
}

// Generic exposes the configured generic store.
func (f *Facade) Generic() store.GenericMetadataStore {
	return f.generic
}

// Registry exposes the key schema registry.
func (f *Facade) Registry() *schema.Registry {
	return f.registry
}

func (f *Facade) Database() *store.Database {
	return f.db
}
