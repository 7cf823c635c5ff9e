package store

import "context"

// AccountCounter tracks per-account, per-location usage totals.
type AccountCounter interface {
	Increase(ctx context.Context, rseID, account string, files, bytes int64) error
	Decrease(ctx context.Context, rseID, account string, files, bytes int64) error
}

// RSECounter tracks per-location usage totals.
type RSECounter interface {
	Increase(ctx context.Context, rseID string, files, bytes int64) error
	Decrease(ctx context.Context, rseID string, files, bytes int64) error
}
