package didmeta

import (
	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/notify"
	"github.com/mwantia/didmeta/store"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool

	// Address of the generic store, see ParseGenericAddress
	GenericStore string
	// Generic store instance; takes precedence over GenericStore
	Generic store.GenericMetadataStore

	// Validate generic keys against the schema registry before writing
	KeyPolicy bool

	Publisher  notify.Publisher
	Kafka      *notify.KafkaConfig
	Registerer prometheus.Registerer
	Accounts   store.AccountCounter
	RSEs       store.RSECounter
	InitSchema bool
}

type Option func(*Config) error

func newDefaultConfig() *Config {
	return &Config{
		LogLevel:   log.Info,
		InitSchema: true,
	}
}

func WithLogLevel(logLevel log.LogLevel) Option {
	return func(c *Config) error {
		c.LogLevel = logLevel
		return nil
	}
}

func WithoutTerminalLog() Option {
	return func(c *Config) error {
		c.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string) Option {
	return func(c *Config) error {
		c.LogFile = logFile
		return nil
	}
}

// WithGenericStore selects the generic store by address.
func WithGenericStore(address string) Option {
	return func(c *Config) error {
		c.GenericStore = address
		return nil
	}
}

// WithGeneric injects an already constructed generic store.
func WithGeneric(generic store.GenericMetadataStore) Option {
	return func(c *Config) error {
		c.Generic = generic
		return nil
	}
}

// WithKeyPolicy enables validation of generic keys against the registry.
func WithKeyPolicy() Option {
	return func(c *Config) error {
		c.KeyPolicy = true
		return nil
	}
}

func WithPublisher(publisher notify.Publisher) Option {
	return func(c *Config) error {
		c.Publisher = publisher
		return nil
	}
}

// WithKafka publishes change events to Kafka.
func WithKafka(config notify.KafkaConfig) Option {
	return func(c *Config) error {
		c.Kafka = &config
		return nil
	}
}

// WithMetrics registers the operation metrics against reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) error {
		c.Registerer = reg
		return nil
	}
}

// WithCounters replaces the SQL usage counters.
func WithCounters(accounts store.AccountCounter, rses store.RSECounter) Option {
	return func(c *Config) error {
		c.Accounts = accounts
		c.RSEs = rses
		return nil
	}
}

// WithoutSchemaInit skips creating the tables on startup.
func WithoutSchemaInit() Option {
	return func(c *Config) error {
		c.InitSchema = false
		return nil
	}
}
