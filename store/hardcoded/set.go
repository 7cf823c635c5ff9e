package hardcoded

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/mwantia/didmeta/data"
)

// Set writes one fixed attribute of a DID and cascades the change to every
// row that holds a copy of it. The whole cascade runs in one transaction. A
// missing DID fails with data.ErrNotFound; an update that matches no row
// fails with data.ErrUnsupportedOperation.
func (s *Store) Set(ctx context.Context, scope, name, key string, value any, recursive bool) (err error) {
	defer func(start time.Time) {
		s.metrics.ObserveOperation("set", s.Name(), start, err)
	}(time.Now())

	return s.db.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.Type(ctx, scope, name); err != nil {
			return err
		}

		var affected int64
		var err error

		switch key {
		case data.KeyLifetime:
			affected, err = s.setLifetime(ctx, scope, name, value)
		case data.KeyGUID:
			affected, err = s.setFileText(ctx, scope, name, key, value)
		case data.KeyEvents:
			affected, err = s.setEvents(ctx, scope, name, value)
		case data.KeyAdler32:
			affected, err = s.setAdler32(ctx, scope, name, value)
		case data.KeyBytes:
			affected, err = s.setBytes(ctx, scope, name, value)
		default:
			affected, err = s.setColumn(ctx, scope, name, key, value, recursive)
		}

		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s for %s:%s cannot be updated", data.ErrUnsupportedOperation, key, scope, name)
		}
		return nil
	})
}

func (s *Store) setLifetime(ctx context.Context, scope, name string, value any) (int64, error) {
	var expiredAt any
	if value != nil {
		seconds, ok := data.ToFloat64(value)
		if !ok {
			return 0, fmt.Errorf("%w: lifetime must be a number of seconds, got %v", data.ErrInvalidValueForKey, value)
		}
		if math.IsNaN(seconds) || math.Abs(seconds) > maxLifetimeSeconds {
			return 0, fmt.Errorf("%w: lifetime %v is out of range", data.ErrInvalidValueForKey, value)
		}
		expiredAt = s.timestamp().Add(time.Duration(seconds * float64(time.Second)))
	}

	return s.db.ExecAffected(ctx, "UPDATE dids SET expired_at = ?, updated_at = ? WHERE scope = ? AND name = ?",
		expiredAt, s.timestamp(), scope, name)
}

// setFileText updates a text attribute of a file and its content copies.
func (s *Store) setFileText(ctx context.Context, scope, name, key string, value any) (int64, error) {
	text, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a string, got %v", data.ErrInvalidValueForKey, key, value)
	}

	affected, err := s.db.ExecAffected(ctx, fmt.Sprintf("UPDATE dids SET %s = ?, updated_at = ? WHERE scope = ? AND name = ? AND did_type = ?", key),
		text, s.timestamp(), scope, name, fileType)
	if err != nil || affected == 0 {
		return affected, err
	}

	if _, err := s.db.Exec(ctx, fmt.Sprintf("UPDATE contents SET %s = ? WHERE child_scope = ? AND child_name = ? AND child_type = ?", key),
		text, scope, name, fileType); err != nil {
		return 0, fmt.Errorf("failed to update content copies of %s:%s: %w", scope, name, err)
	}

	return affected, nil
}

func (s *Store) setEvents(ctx context.Context, scope, name string, value any) (int64, error) {
	events, ok := data.ToInt64(value)
	if !ok || events < 0 {
		return 0, fmt.Errorf("%w: events must be a non-negative integer, got %v", data.ErrInvalidValueForKey, value)
	}

	affected, err := s.db.ExecAffected(ctx, "UPDATE dids SET events = ?, updated_at = ? WHERE scope = ? AND name = ? AND did_type = ?",
		events, s.timestamp(), scope, name, fileType)
	if err != nil || affected == 0 {
		return affected, err
	}

	if _, err := s.db.Exec(ctx, "UPDATE contents SET events = ? WHERE child_scope = ? AND child_name = ? AND child_type = ?",
		events, scope, name, fileType); err != nil {
		return 0, fmt.Errorf("failed to update content copies of %s:%s: %w", scope, name, err)
	}

	return affected, s.reaggregateParents(ctx, data.KeyEvents, scope, name, s.resumEvents)
}

func (s *Store) setAdler32(ctx context.Context, scope, name string, value any) (int64, error) {
	affected, err := s.setFileText(ctx, scope, name, data.KeyAdler32, value)
	if err != nil || affected == 0 {
		return affected, err
	}

	if _, err := s.db.Exec(ctx, "UPDATE replicas SET adler32 = ? WHERE scope = ? AND name = ?", value, scope, name); err != nil {
		return 0, fmt.Errorf("failed to update replicas of %s:%s: %w", scope, name, err)
	}
	if _, err := s.db.Exec(ctx, "UPDATE requests SET adler32 = ? WHERE scope = ? AND name = ?", value, scope, name); err != nil {
		return 0, fmt.Errorf("failed to update requests of %s:%s: %w", scope, name, err)
	}

	return affected, nil
}

const fileType = string(data.DIDTypeFile)

// maxLifetimeSeconds is the largest lifetime a time.Duration can hold.
const maxLifetimeSeconds = float64(math.MaxInt64 / int64(time.Second))

type lockRow struct {
	ruleID  string
	rseID   string
	account string
	bytes   sql.NullInt64
}

type replicaRow struct {
	rseID string
	bytes int64
}

// setBytes applies a size correction to a file. Every lock and replica is
// rewritten and its usage counter corrected by the old and new size, then
// every parent collection is re-aggregated.
func (s *Store) setBytes(ctx context.Context, scope, name string, value any) (int64, error) {
	bytes, ok := data.ToInt64(value)
	if !ok || bytes < 0 {
		return 0, fmt.Errorf("%w: bytes must be a non-negative integer, got %v", data.ErrInvalidValueForKey, value)
	}

	affected, err := s.db.ExecAffected(ctx, "UPDATE dids SET bytes = ?, updated_at = ? WHERE scope = ? AND name = ? AND did_type = ?",
		bytes, s.timestamp(), scope, name, fileType)
	if err != nil || affected == 0 {
		return affected, err
	}

	if _, err := s.db.Exec(ctx, "UPDATE contents SET bytes = ? WHERE child_scope = ? AND child_name = ? AND child_type = ?",
		bytes, scope, name, fileType); err != nil {
		return 0, fmt.Errorf("failed to update content copies of %s:%s: %w", scope, name, err)
	}

	if _, err := s.db.Exec(ctx, "UPDATE requests SET bytes = ? WHERE scope = ? AND name = ?", bytes, scope, name); err != nil {
		return 0, fmt.Errorf("failed to update requests of %s:%s: %w", scope, name, err)
	}

	if err := s.correctLocks(ctx, scope, name, bytes); err != nil {
		return 0, err
	}
	if err := s.correctReplicas(ctx, scope, name, bytes); err != nil {
		return 0, err
	}

	return affected, s.reaggregateParents(ctx, data.KeyBytes, scope, name, s.reaggregate)
}

func (s *Store) correctLocks(ctx context.Context, scope, name string, bytes int64) error {
	rows, err := s.db.Query(ctx, "SELECT rule_id, rse_id, account, bytes FROM locks WHERE scope = ? AND name = ?", scope, name)
	if err != nil {
		return fmt.Errorf("failed to read locks of %s:%s: %w", scope, name, err)
	}

	var locks []lockRow
	for rows.Next() {
		var lock lockRow
		if err := rows.Scan(&lock.ruleID, &lock.rseID, &lock.account, &lock.bytes); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan lock row: %w", err)
		}
		locks = append(locks, lock)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, lock := range locks {
		if _, err := s.db.Exec(ctx, "UPDATE locks SET bytes = ? WHERE scope = ? AND name = ? AND rule_id = ? AND rse_id = ?",
			bytes, scope, name, lock.ruleID, lock.rseID); err != nil {
			return fmt.Errorf("failed to update lock %s of %s:%s: %w", lock.ruleID, scope, name, err)
		}

		if err := s.accounts.Decrease(ctx, lock.rseID, lock.account, 1, lock.bytes.Int64); err != nil {
			return fmt.Errorf("failed to decrease account usage: %w", err)
		}
		if err := s.accounts.Increase(ctx, lock.rseID, lock.account, 1, bytes); err != nil {
			return fmt.Errorf("failed to increase account usage: %w", err)
		}
		s.metrics.IncrementCounterAdjustment("account")
	}

	return nil
}

func (s *Store) correctReplicas(ctx context.Context, scope, name string, bytes int64) error {
	rows, err := s.db.Query(ctx, "SELECT rse_id, bytes FROM replicas WHERE scope = ? AND name = ?", scope, name)
	if err != nil {
		return fmt.Errorf("failed to read replicas of %s:%s: %w", scope, name, err)
	}

	var replicas []replicaRow
	for rows.Next() {
		var replica replicaRow
		if err := rows.Scan(&replica.rseID, &replica.bytes); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan replica row: %w", err)
		}
		replicas = append(replicas, replica)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, replica := range replicas {
		if _, err := s.db.Exec(ctx, "UPDATE replicas SET bytes = ? WHERE scope = ? AND name = ? AND rse_id = ?",
			bytes, scope, name, replica.rseID); err != nil {
			return fmt.Errorf("failed to update replica of %s:%s on %s: %w", scope, name, replica.rseID, err)
		}

		if err := s.rses.Decrease(ctx, replica.rseID, 1, replica.bytes); err != nil {
			return fmt.Errorf("failed to decrease location usage: %w", err)
		}
		if err := s.rses.Increase(ctx, replica.rseID, 1, bytes); err != nil {
			return fmt.Errorf("failed to increase location usage: %w", err)
		}
		s.metrics.IncrementCounterAdjustment("rse")
	}

	return nil
}

func (s *Store) reaggregateParents(ctx context.Context, key, scope, name string, update func(context.Context, data.DIDRef) error) error {
	parents, err := s.ParentsOf(ctx, scope, name)
	if err != nil {
		return err
	}

	for _, parent := range parents {
		if err := update(ctx, parent); err != nil {
			return err
		}
	}

	s.metrics.AddPropagations(key, len(parents))
	s.log.Info("Propagated %s of %s:%s to %d parent(s)", key, scope, name, len(parents))
	return nil
}

// setColumn writes any other mutable column, optionally to the direct
// children of a collection as well.
func (s *Store) setColumn(ctx context.Context, scope, name, key string, value any, recursive bool) (int64, error) {
	if !data.IsMutableColumn(key) {
		return 0, fmt.Errorf("%w: key %s is not accepted", data.ErrInvalidMetadata, key)
	}

	v, err := columnValue(key, value)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("UPDATE dids SET %s = ?, updated_at = ? WHERE scope = ? AND name = ?", key)
	args := func(scope, name string) []any {
		return []any{v, s.timestamp(), scope, name}
	}
	if key == "updated_at" {
		query = "UPDATE dids SET updated_at = ? WHERE scope = ? AND name = ?"
		args = func(scope, name string) []any {
			return []any{v, scope, name}
		}
	}

	affected, err := s.db.ExecAffected(ctx, query, args(scope, name)...)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%v rejected for %s:%s: %v", data.ErrInvalidMetadata, key, value, scope, name, err)
	}
	if affected == 0 || !recursive {
		return affected, nil
	}

	children, err := s.ChildrenOf(ctx, scope, name)
	if err != nil {
		return 0, err
	}

	for _, child := range children {
		if _, err := s.db.Exec(ctx, query, args(child.Scope, child.Name)...); err != nil {
			return 0, fmt.Errorf("%w: %s=%v rejected for %s:%s: %v", data.ErrInvalidMetadata, key, value, child.Scope, child.Name, err)
		}
	}

	s.log.Debug("Applied %s of %s:%s to %d child(ren)", key, scope, name, len(children))
	return affected, nil
}
