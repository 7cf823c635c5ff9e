package hardcoded

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mwantia/didmeta/data"
	"github.com/mwantia/didmeta/store"
)

var lengthOperators = map[string]string{
	data.FilterLengthGT:  ">",
	data.FilterLengthLT:  "<",
	data.FilterLengthGTE: ">=",
	data.FilterLengthLTE: "<=",
}

// List returns the DIDs of scope matching every filter. Suppressed DIDs
// are never returned. In recursive mode the content of each matching
// collection is listed with the same filters after the direct matches.
func (s *Store) List(ctx context.Context, scope string, filters data.Filters, opts *data.ListOptions) (results []*data.ListResult, err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("list", s.Name(), start, err)
	}(time.Now())

	if opts == nil {
		opts = &data.ListOptions{}
	}

	listType, err := data.ParseListType(string(opts.Type))
	if err != nil {
		return nil, err
	}

	query, args, err := s.buildListQuery(scope, listType, filters, opts)
	if err != nil {
		return nil, err
	}

	matches, err := s.queryList(ctx, query, args, opts.Long)
	if err != nil {
		return nil, err
	}

	if !opts.Recursive {
		return matches, nil
	}

	// Drained before descending; a nested listing must not run while rows are open
	var children []*data.Child
	for _, match := range matches {
		if !match.Type.IsCollection() {
			continue
		}

		content, err := s.ChildrenOf(ctx, match.Scope, match.Name)
		if err != nil {
			return nil, err
		}
		children = append(children, content...)
	}

	results = matches
	for _, child := range children {
		nested, err := s.List(ctx, child.Scope, filters.With(data.FilterName, child.Name), opts)
		if err != nil {
			return nil, err
		}
		results = append(results, nested...)
	}

	return results, nil
}

func (s *Store) buildListQuery(scope string, listType data.ListType, filters data.Filters, opts *data.ListOptions) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT scope, name, did_type, bytes, length FROM dids WHERE scope = ? AND (suppressed IS NULL OR suppressed = ?)")
	args := []any{scope, false}

	types := listType.Types()
	sb.WriteString(" AND did_type IN (")
	for i, t := range types {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
		args = append(args, string(t))
	}
	sb.WriteString(")")

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		value := filters[key]

		switch {
		case key == data.FilterCreatedBefore || key == data.FilterCreatedAfter:
			t, ok := data.ToTime(value)
			if !ok {
				return "", nil, fmt.Errorf("%w: %s expects a date, got %v", data.ErrInvalidValueForKey, key, value)
			}
			op := "<="
			if key == data.FilterCreatedAfter {
				op = ">="
			}
			sb.WriteString(" AND created_at " + op + " ?")
			args = append(args, t)

		case lengthOperators[key] != "":
			n, ok := data.ToInt64(value)
			if !ok {
				return "", nil, fmt.Errorf("%w: %s expects an integer, got %v", data.ErrInvalidValueForKey, key, value)
			}
			sb.WriteString(" AND length " + lengthOperators[key] + " ?")
			args = append(args, n)

		case !data.IsColumn(key):
			return "", nil, fmt.Errorf("%w: %s is not a valid filter", data.ErrKeyNotFound, key)

		default:
			if pattern, ok := value.(string); ok && strings.ContainsAny(pattern, "*%") {
				if pattern == "*" || pattern == "%" {
					continue
				}
				pattern = strings.ReplaceAll(pattern, "_", `\_`)
				pattern = strings.ReplaceAll(pattern, "*", "%")
				sb.WriteString(" AND " + key + ` LIKE ? ESCAPE '\'`)
				args = append(args, pattern)
				continue
			}

			v, err := columnValue(key, value)
			if err != nil {
				return "", nil, fmt.Errorf("%w: %v", data.ErrInvalidValueForKey, err)
			}
			if v == nil {
				sb.WriteString(" AND " + key + " IS NULL")
				continue
			}
			sb.WriteString(" AND " + key + " = ?")
			args = append(args, v)
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

func (s *Store) queryList(ctx context.Context, query string, args []any, long bool) ([]*data.ListResult, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list identifiers: %w", err)
	}
	defer rows.Close()

	var results []*data.ListResult
	for rows.Next() {
		var (
			result        data.ListResult
			didType       string
			bytes, length sql.NullInt64
		)
		if err := rows.Scan(&result.Scope, &result.Name, &didType, &bytes, &length); err != nil {
			return nil, fmt.Errorf("failed to scan listed identifier: %w", err)
		}

		result.Type = data.DIDType(didType)
		if long {
			if bytes.Valid {
				result.Bytes = &bytes.Int64
			}
			if length.Valid {
				result.Length = &length.Int64
			}
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}
