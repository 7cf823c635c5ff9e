package hardcoded

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mwantia/didmeta/data"
)

// ChildrenOf returns the direct content of a collection.
func (s *Store) ChildrenOf(ctx context.Context, scope, name string) ([]*data.Child, error) {
	rows, err := s.db.Query(ctx, `SELECT child_scope, child_name, child_type, bytes, events, guid, adler32
		FROM contents WHERE scope = ? AND name = ? ORDER BY child_scope, child_name`, scope, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list content of %s:%s: %w", scope, name, err)
	}
	defer rows.Close()

	var children []*data.Child
	for rows.Next() {
		var (
			child         data.Child
			childType     string
			bytes, events sql.NullInt64
			guid, adler32 sql.NullString
		)
		if err := rows.Scan(&child.Scope, &child.Name, &childType, &bytes, &events, &guid, &adler32); err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}

		child.Type = data.DIDType(childType)
		child.Bytes = bytes.Int64
		child.Events = events.Int64
		child.GUID = guid.String
		child.Adler32 = adler32.String
		children = append(children, &child)
	}

	return children, rows.Err()
}

// ParentsOf returns every collection that directly contains the DID.
func (s *Store) ParentsOf(ctx context.Context, scope, name string) ([]data.DIDRef, error) {
	rows, err := s.db.Query(ctx, `SELECT scope, name FROM contents
		WHERE child_scope = ? AND child_name = ? ORDER BY scope, name`, scope, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list parents of %s:%s: %w", scope, name, err)
	}
	defer rows.Close()

	var parents []data.DIDRef
	for rows.Next() {
		var ref data.DIDRef
		if err := rows.Scan(&ref.Scope, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan parent row: %w", err)
		}
		parents = append(parents, ref)
	}

	return parents, rows.Err()
}

// resumEvents recomputes only the events sum of a collection; length, bytes
// and dataset locks keep their values.
func (s *Store) resumEvents(ctx context.Context, parent data.DIDRef) error {
	var events int64
	if err := s.db.QueryRow(ctx, "SELECT COALESCE(SUM(events), 0) FROM contents WHERE scope = ? AND name = ?",
		parent.Scope, parent.Name).Scan(&events); err != nil {
		return fmt.Errorf("failed to sum events of %s: %w", parent, err)
	}

	if _, err := s.db.Exec(ctx, "UPDATE dids SET events = ?, updated_at = ? WHERE scope = ? AND name = ?",
		events, s.timestamp(), parent.Scope, parent.Name); err != nil {
		return fmt.Errorf("failed to update %s: %w", parent, err)
	}
	return nil
}

// reaggregate recomputes length, bytes and events of a collection from its
// content rows and mirrors length and bytes onto its dataset locks.
func (s *Store) reaggregate(ctx context.Context, parent data.DIDRef) error {
	var length, bytes, events int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(bytes), 0), COALESCE(SUM(events), 0)
		FROM contents WHERE scope = ? AND name = ?`, parent.Scope, parent.Name).Scan(&length, &bytes, &events); err != nil {
		return fmt.Errorf("failed to aggregate %s: %w", parent, err)
	}

	if _, err := s.db.Exec(ctx, `UPDATE dids SET length = ?, bytes = ?, events = ?, updated_at = ?
		WHERE scope = ? AND name = ?`, length, bytes, events, s.timestamp(), parent.Scope, parent.Name); err != nil {
		return fmt.Errorf("failed to update %s: %w", parent, err)
	}

	if _, err := s.db.Exec(ctx, `UPDATE dataset_locks SET length = ?, bytes = ?
		WHERE scope = ? AND name = ?`, length, bytes, parent.Scope, parent.Name); err != nil {
		return fmt.Errorf("failed to update dataset locks of %s: %w", parent, err)
	}

	return nil
}
