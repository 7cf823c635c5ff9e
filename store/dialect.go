package store

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL engine family behind a Database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Rebind rewrites '?' placeholders into the engine's native form.
// Queries in this module never carry a literal '?' inside string constants.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}

	return sb.String()
}

// ForUpdate returns the row-locking suffix for read-modify-write selects.
// SQLite serialises writers per database, so no suffix is needed there.
func (d Dialect) ForUpdate() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// JSONType returns the column type used for schema-less blobs.
func (d Dialect) JSONType() string {
	if d == DialectPostgres {
		return "JSONB"
	}
	return "TEXT"
}
