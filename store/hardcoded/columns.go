package hardcoded

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mwantia/didmeta/data"
)

type columnKind int

const (
	kindText columnKind = iota
	kindInteger
	kindBoolean
	kindTimestamp
)

var columnKinds = map[string]columnKind{
	"bytes":       kindInteger,
	"length":      kindInteger,
	"events":      kindInteger,
	"run_number":  kindInteger,
	"task_id":     kindInteger,
	"panda_id":    kindInteger,
	"lumiblocknr": kindInteger,
	"access_cnt":  kindInteger,
	"transient":   kindBoolean,
	"is_archive":  kindBoolean,
	"constituent": kindBoolean,
	"suppressed":  kindBoolean,
	"created_at":  kindTimestamp,
	"updated_at":  kindTimestamp,
	"expired_at":  kindTimestamp,
	"accessed_at": kindTimestamp,
	"closed_at":   kindTimestamp,
	"eol_at":      kindTimestamp,
	"deleted_at":  kindTimestamp,
}

// columnValue converts value into the Go type the column is stored as, so
// both engines reject the same inputs.
func columnValue(column string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch columnKinds[column] {
	case kindInteger:
		if n, ok := data.ToInt64(value); ok {
			return n, nil
		}
	case kindBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b, nil
			}
		}
	case kindTimestamp:
		if t, ok := data.ToTime(value); ok {
			return t, nil
		}
	default:
		switch v := value.(type) {
		case string:
			return v, nil
		case int, int32, int64, float64, bool:
			return fmt.Sprint(v), nil
		}
	}

	return nil, fmt.Errorf("%w: value %v (%T) cannot be stored in column %s", data.ErrInvalidMetadata, value, value, column)
}

// normalize turns a scanned column into its exported representation.
func normalize(column string, value any) any {
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	if value == nil {
		return nil
	}

	if column == "did_type" {
		if s, ok := value.(string); ok {
			return data.DIDType(s)
		}
	}

	switch columnKinds[column] {
	case kindBoolean:
		switch v := value.(type) {
		case int64:
			return v != 0
		case string:
			b, _ := strconv.ParseBool(v)
			return b
		}
	case kindTimestamp:
		switch v := value.(type) {
		case time.Time:
			return v.UTC()
		case string:
			if t, ok := data.ToTime(v); ok {
				return t
			}
		}
	}

	return value
}
