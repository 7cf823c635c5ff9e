// Package counter applies usage deltas to the account and location totals.
// Deltas are written in the caller's transaction so that a size correction
// and its counter adjustment commit together.
package counter

import (
	"context"
	"fmt"

	"github.com/mwantia/didmeta/store"
)

// AccountCounter keeps account_usage rows in the shared database.
type AccountCounter struct {
	db *store.Database
}

// NewAccountCounter constructs a SQL-backed account counter.
func NewAccountCounter(db *store.Database) *AccountCounter {
	return &AccountCounter{db: db}
}

func (c *AccountCounter) Increase(ctx context.Context, rseID, account string, files, bytes int64) error {
	return c.apply(ctx, rseID, account, files, bytes)
}

func (c *AccountCounter) Decrease(ctx context.Context, rseID, account string, files, bytes int64) error {
	return c.apply(ctx, rseID, account, -files, -bytes)
}

func (c *AccountCounter) apply(ctx context.Context, rseID, account string, files, bytes int64) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO account_usage (account, rse_id, files, bytes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account, rse_id) DO UPDATE SET
			files = account_usage.files + excluded.files,
			bytes = account_usage.bytes + excluded.bytes
	`, account, rseID, files, bytes)
	if err != nil {
		return fmt.Errorf("update account counter %s@%s: %w", account, rseID, err)
	}
	return nil
}

// Usage returns the current totals for an account at a location.
func (c *AccountCounter) Usage(ctx context.Context, rseID, account string) (files, bytes int64, err error) {
	err = c.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(files), 0), COALESCE(SUM(bytes), 0)
		FROM account_usage
		WHERE account = ? AND rse_id = ?
	`, account, rseID).Scan(&files, &bytes)
	if err != nil {
		return 0, 0, fmt.Errorf("get account usage %s@%s: %w", account, rseID, err)
	}
	return files, bytes, nil
}

// RSECounter keeps rse_usage rows in the shared database.
type RSECounter struct {
	db *store.Database
}

// NewRSECounter constructs a SQL-backed location counter.
func NewRSECounter(db *store.Database) *RSECounter {
	return &RSECounter{db: db}
}

func (c *RSECounter) Increase(ctx context.Context, rseID string, files, bytes int64) error {
	return c.apply(ctx, rseID, files, bytes)
}

func (c *RSECounter) Decrease(ctx context.Context, rseID string, files, bytes int64) error {
	return c.apply(ctx, rseID, -files, -bytes)
}

func (c *RSECounter) apply(ctx context.Context, rseID string, files, bytes int64) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO rse_usage (rse_id, files, bytes)
		VALUES (?, ?, ?)
		ON CONFLICT (rse_id) DO UPDATE SET
			files = rse_usage.files + excluded.files,
			bytes = rse_usage.bytes + excluded.bytes
	`, rseID, files, bytes)
	if err != nil {
		return fmt.Errorf("update rse counter %s: %w", rseID, err)
	}
	return nil
}

// Usage returns the current totals for a location.
func (c *RSECounter) Usage(ctx context.Context, rseID string) (files, bytes int64, err error) {
	err = c.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(files), 0), COALESCE(SUM(bytes), 0)
		FROM rse_usage
		WHERE rse_id = ?
	`, rseID).Scan(&files, &bytes)
	if err != nil {
		return 0, 0, fmt.Errorf("get rse usage %s: %w", rseID, err)
	}
	return files, bytes, nil
}

var (
	_ store.AccountCounter = (*AccountCounter)(nil)
	_ store.RSECounter     = (*RSECounter)(nil)
)
