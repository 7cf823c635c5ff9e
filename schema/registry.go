// Package schema keeps the registry of allowed generic keys and validates
// metadata mappings against it.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/store"
)

// Registry stores key definitions in did_keys and enumerated values in
// did_key_map of the shared database.
type Registry struct {
	db  *store.Database
	log *log.Logger

	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

func NewRegistry(db *store.Database, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.NewDiscard()
	}
	return &Registry{
		db:       db,
		log:      logger,
		compiled: make(map[string]*regexp.Regexp),
	}
}

// compile anchors expr at the start of the value.
func (r *Registry) compile(expr string) (*regexp.Regexp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if re, ok := r.compiled[expr]; ok {
		return re, nil
	}

	re, err := regexp.Compile("^(?:" + expr + ")")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid value regexp '%s': %v", data.ErrInvalidObject, expr, err)
	}

	r.compiled[expr] = re
	return re, nil
}

// AddKey registers a generic key. keyType and valueType accept the usual
// aliases; an empty valueType or regexp leaves that constraint unset.
func (r *Registry) AddKey(ctx context.Context, key, keyType, valueType, valueRegexp string) error {
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", data.ErrInvalidObject)
	}
	if data.IsHardcoded(key) {
		return fmt.Errorf("%w: %s is a fixed column", data.ErrInvalidObject, key)
	}

	kt, err := data.ParseKeyType(keyType)
	if err != nil {
		return err
	}
	vt, err := data.ParseValueType(valueType)
	if err != nil {
		return err
	}
	if valueRegexp != "" {
		if _, err := r.compile(valueRegexp); err != nil {
			return err
		}
	}

	return r.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := r.GetKey(ctx, key); err == nil {
			return fmt.Errorf("%w: key %s", data.ErrDuplicate, key)
		} else if !errors.Is(err, data.ErrKeyNotFound) {
			return err
		}

		if _, err := r.db.Exec(ctx, "INSERT INTO did_keys (key, key_type, value_type, value_regexp) VALUES (?, ?, ?, ?)",
			key, string(kt), string(vt), valueRegexp); err != nil {
			return fmt.Errorf("failed to add key %s: %w", key, err)
		}

		r.log.Info("Registered key %s (%s)", key, kt)
		return nil
	})
}

// DelKey removes a key definition together with its enumerated values.
func (r *Registry) DelKey(ctx context.Context, key string) error {
	return r.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := r.db.Exec(ctx, "DELETE FROM did_key_map WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete values of key %s: %w", key, err)
		}

		affected, err := r.db.ExecAffected(ctx, "DELETE FROM did_keys WHERE key = ?", key)
		if err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", data.ErrKeyNotFound, key)
		}
		return nil
	})
}

func (r *Registry) GetKey(ctx context.Context, key string) (*data.KeyDefinition, error) {
	var def data.KeyDefinition
	var keyType string
	var valueType, valueRegexp sql.NullString

	err := r.db.QueryRow(ctx, "SELECT key, key_type, value_type, value_regexp FROM did_keys WHERE key = ?", key).
		Scan(&def.Key, &keyType, &valueType, &valueRegexp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", data.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %s: %w", key, err)
	}

	def.KeyType = data.KeyType(keyType)
	def.ValueType = data.ValueType(valueType.String)
	def.ValueRegexp = valueRegexp.String
	return &def, nil
}

func (r *Registry) ListKeys(ctx context.Context) ([]*data.KeyDefinition, error) {
	rows, err := r.db.Query(ctx, "SELECT key, key_type, value_type, value_regexp FROM did_keys ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	defs := []*data.KeyDefinition{}
	for rows.Next() {
		var def data.KeyDefinition
		var keyType string
		var valueType, valueRegexp sql.NullString

		if err := rows.Scan(&def.Key, &keyType, &valueType, &valueRegexp); err != nil {
			return nil, fmt.Errorf("failed to scan key row: %w", err)
		}

		def.KeyType = data.KeyType(keyType)
		def.ValueType = data.ValueType(valueType.String)
		def.ValueRegexp = valueRegexp.String
		defs = append(defs, &def)
	}

	return defs, rows.Err()
}

// AddValue enumerates an allowed value for a registered key. Once a key has
// enumerated values, any other value is rejected by ValidateMeta.
func (r *Registry) AddValue(ctx context.Context, key, value string) error {
	return r.db.RunInTx(ctx, func(ctx context.Context) error {
		def, err := r.GetKey(ctx, key)
		if err != nil {
			return err
		}
		if err := r.matchRegexp(def, value); err != nil {
			return err
		}

		values, err := r.ListValues(ctx, key)
		if err != nil {
			return err
		}
		if slices.Contains(values, value) {
			return fmt.Errorf("%w: value %s for key %s", data.ErrDuplicate, value, key)
		}

		if _, err := r.db.Exec(ctx, "INSERT INTO did_key_map (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to add value %s for key %s: %w", value, key, err)
		}
		return nil
	})
}

func (r *Registry) ListValues(ctx context.Context, key string) ([]string, error) {
	if _, err := r.GetKey(ctx, key); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, "SELECT value FROM did_key_map WHERE key = ? ORDER BY value", key)
	if err != nil {
		return nil, fmt.Errorf("failed to list values of key %s: %w", key, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan value row: %w", err)
		}
		values = append(values, value)
	}

	return values, rows.Err()
}

func (r *Registry) matchRegexp(def *data.KeyDefinition, value string) error {
	if def.ValueRegexp == "" {
		return nil
	}

	re, err := r.compile(def.ValueRegexp)
	if err != nil {
		return err
	}
	if !re.MatchString(value) {
		return fmt.Errorf("%w: %s does not match '%s' for key %s", data.ErrInvalidValueForKey, value, def.ValueRegexp, def.Key)
	}
	return nil
}

// ValidateMeta checks every generic key of meta against its definition for
// a DID of didType. Fixed-column keys are not subject to the registry.
func (r *Registry) ValidateMeta(ctx context.Context, meta map[string]any, didType data.DIDType) error {
	for _, key := range slices.Sorted(maps.Keys(meta)) {
		if data.IsHardcoded(key) {
			continue
		}

		def, err := r.GetKey(ctx, key)
		if errors.Is(err, data.ErrKeyNotFound) {
			return fmt.Errorf("%w: key %s is not registered", data.ErrInvalidObject, key)
		}
		if err != nil {
			return err
		}

		if !def.KeyType.Allows(didType) {
			return fmt.Errorf("%w: key %s (%s) cannot be set on a %s", data.ErrInvalidObject, key, def.KeyType, didType)
		}

		value := meta[key]
		if !def.ValueType.Matches(value) {
			return fmt.Errorf("%w: key %s expects %s, got %T", data.ErrUnsupportedValueType, key, def.ValueType, value)
		}

		text := fmt.Sprint(value)
		if _, ok := value.(string); ok {
			if err := r.matchRegexp(def, text); err != nil {
				return err
			}
		}

		values, err := r.ListValues(ctx, key)
		if err != nil {
			return err
		}
		if len(values) > 0 && !slices.Contains(values, text) {
			return fmt.Errorf("%w: %s is not an allowed value for key %s", data.ErrInvalidValueForKey, text, key)
		}
	}

	return nil
}
