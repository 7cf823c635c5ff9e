// Package jsonmeta stores generic metadata as one JSON document per DID in
// the did_meta table of the shared relational database.
package jsonmeta

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/metrics"
	"github.com/mwantia/didmeta/store"
	"github.com/mwantia/didmeta/store/generic"
)

// Minimum engine versions with native JSON path operators.
var minimumVersions = map[store.Dialect][2]int{
	store.DialectSQLite:   {3, 38},
	store.DialectPostgres: {9, 4},
}

type Store struct {
	db      *store.Database
	log     *log.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	version string
	// reports the engine version checked by Capability
	serverVersion func(ctx context.Context) (string, error)
}

func New(db *store.Database, logger *log.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = log.NewDiscard()
	}
	return &Store{db: db, log: logger, metrics: m, serverVersion: db.ServerVersion}
}

func (s *Store) Name() string {
	return "jsonmeta"
}

func (s *Store) Open(ctx context.Context) error {
	return s.Capability(ctx)
}

// Close is a no-op; the database is shared and closed by its owner.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

func (s *Store) GetCapabilities() *store.Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &store.Capabilities{
		Capabilities: []store.Capability{
			store.CapabilityGenericMetadata,
			store.CapabilityGenericQuery,
			store.CapabilityTransactional,
		},
		Engine:  string(s.db.Dialect()),
		Version: s.version,
	}
}

// Capability fails with data.ErrNotImplemented when the engine is too old
// to filter inside JSON documents. A successful check is remembered.
func (s *Store) Capability(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.version != "" {
		return nil
	}

	version, err := s.serverVersion(ctx)
	if err != nil {
		return err
	}

	minimum, ok := minimumVersions[s.db.Dialect()]
	if !ok {
		return fmt.Errorf("%w: no JSON support for engine %s", data.ErrNotImplemented, s.db.Dialect())
	}

	major, minor := parseVersion(version)
	if major < minimum[0] || (major == minimum[0] && minor < minimum[1]) {
		return fmt.Errorf("%w: %s %s does not support JSON metadata (requires %d.%d)",
			data.ErrNotImplemented, s.db.Dialect(), version, minimum[0], minimum[1])
	}

	s.version = version
	s.log.Debug("Using %s %s for generic metadata", s.db.Dialect(), version)
	return nil
}

// parseVersion reads the leading "major.minor" of an engine version string.
func parseVersion(version string) (int, int) {
	fields := strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == ' '
	})

	numbers := [2]int{}
	for i := 0; i < len(fields) && i < 2; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			break
		}
		numbers[i] = n
	}
	return numbers[0], numbers[1]
}

// jsonParam is the placeholder for a JSON document argument.
func (s *Store) jsonParam() string {
	if s.db.Dialect() == store.DialectPostgres {
		return "?::jsonb"
	}
	return "?"
}

func (s *Store) Get(ctx context.Context, scope, name string) (meta map[string]any, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("get", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return nil, err
	}

	return s.read(ctx, scope, name, "")
}

func (s *Store) read(ctx context.Context, scope, name, suffix string) (map[string]any, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, "SELECT meta FROM did_meta WHERE scope = ? AND name = ?"+suffix, scope, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no generic metadata for %s:%s", data.ErrNotFound, scope, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read generic metadata of %s:%s: %w", scope, name, err)
	}

	meta := make(map[string]any)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode generic metadata of %s:%s: %w", scope, name, err)
		}
	}
	return meta, nil
}

func (s *Store) write(ctx context.Context, scope, name string, meta map[string]any) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("%w: %v", data.ErrInvalidMetadata, err)
	}

	if _, err := s.db.Exec(ctx, "UPDATE did_meta SET meta = "+s.jsonParam()+", updated_at = ? WHERE scope = ? AND name = ?",
		string(raw), time.Now().UTC(), scope, name); err != nil {
		return fmt.Errorf("failed to write generic metadata of %s:%s: %w", scope, name, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, scope, name, key string, value any) error {
	return s.SetMany(ctx, scope, name, map[string]any{key: value})
}

// SetMany creates the record on first write, then locks, merges and
// rewrites it inside the caller's transaction.
func (s *Store) SetMany(ctx context.Context, scope, name string, meta map[string]any) (err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("set", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return err
	}

	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.db.Exec(ctx, "INSERT INTO did_meta (scope, name, meta, updated_at) VALUES (?, ?, "+s.jsonParam()+", ?) ON CONFLICT (scope, name) DO NOTHING",
			scope, name, "{}", time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to create generic metadata of %s:%s: %w", scope, name, err)
		}

		current, err := s.read(ctx, scope, name, s.db.Dialect().ForUpdate())
		if err != nil {
			return err
		}

		if err := generic.Merge(current, meta); err != nil {
			return err
		}
		return s.write(ctx, scope, name, current)
	})
}

func (s *Store) Delete(ctx context.Context, scope, name, key string) (err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("delete", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return err
	}

	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.read(ctx, scope, name, s.db.Dialect().ForUpdate())
		if errors.Is(err, data.ErrNotFound) {
			return fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
		}
		if err != nil {
			return err
		}

		if _, ok := current[key]; !ok {
			return fmt.Errorf("%w: %s for %s:%s", data.ErrKeyNotFound, key, scope, name)
		}

		delete(current, key)
		return s.write(ctx, scope, name, current)
	})
}

// List matches every filter by JSON equality inside the stored document.
// Type and recursion options do not apply to schema-less records.
func (s *Store) List(ctx context.Context, scope string, filters data.Filters, opts *data.ListOptions) (results []*data.ListResult, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("list", s.Name(), start, err)
	}(time.Now())

	if err := s.Capability(ctx); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &data.ListOptions{}
	}

	query, args, err := s.buildListQuery(scope, filters, opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list generic metadata: %w", err)
	}
	defer rows.Close()

	results = []*data.ListResult{}
	for rows.Next() {
		var result data.ListResult
		if err := rows.Scan(&result.Scope, &result.Name); err != nil {
			return nil, fmt.Errorf("failed to scan generic metadata row: %w", err)
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

func (s *Store) buildListQuery(scope string, filters data.Filters, opts *data.ListOptions) (string, []any, error) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT scope, name FROM did_meta WHERE 1 = 1")
	if scope != "" {
		sb.WriteString(" AND scope = ?")
		args = append(args, scope)
	}

	for _, key := range generic.SortedKeys(filters) {
		raw, err := json.Marshal(filters[key])
		if err != nil {
			return "", nil, fmt.Errorf("%w: filter %s: %v", data.ErrInvalidMetadata, key, err)
		}

		if s.db.Dialect() == store.DialectPostgres {
			sb.WriteString(" AND meta -> ? = ?::jsonb")
			args = append(args, key, string(raw))
		} else {
			sb.WriteString(" AND meta -> ? = json(?)")
			args = append(args, `$."`+strings.ReplaceAll(key, `"`, `\"`)+`"`, string(raw))
		}
	}

	sb.WriteString(" ORDER BY scope, name")

	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		if opts.Limit <= 0 && s.db.Dialect() != store.DialectPostgres {
			sb.WriteString(" LIMIT -1")
		}
		sb.WriteString(" OFFSET ?")
		args = append(args, opts.Offset)
	}

	return sb.String(), args, nil
}

var _ store.GenericMetadataStore = (*Store)(nil)
