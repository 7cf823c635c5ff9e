package hardcoded

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwantia/didmeta/data"
)

var selectColumns = "SELECT " + strings.Join(data.DIDColumns, ", ") + " FROM dids WHERE scope = ? AND name = ?"

// Get returns every fixed column of the DID, keyed by column name.
func (s *Store) Get(ctx context.Context, scope, name string) (meta map[string]any, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("get", s.Name(), start, err)
	}(time.Now())

	values := make([]any, len(data.DIDColumns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}

	if err := s.db.QueryRow(ctx, selectColumns, scope, name).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s:%s", data.ErrNotFound, scope, name)
		}
		return nil, fmt.Errorf("failed to read %s:%s: %w", scope, name, err)
	}

	meta = make(map[string]any, len(values))
	for i, column := range data.DIDColumns {
		meta[column] = normalize(column, values[i])
	}

	return meta, nil
}
