package store

import (
	"context"
	"fmt"
)

// InitSchema creates the tables used by the stores if they do not exist yet.
func (d *Database) InitSchema(ctx context.Context) error {
	// Split schema into individual statements to avoid prepared statement cache collisions
	statements := []string{
		`CREATE TABLE IF NOT EXISTS dids (
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			did_type TEXT NOT NULL CHECK (did_type IN ('F', 'D', 'C', 'A')),
			account TEXT,
			bytes BIGINT CHECK (bytes IS NULL OR bytes >= 0),
			length BIGINT CHECK (length IS NULL OR length >= 0),
			events BIGINT CHECK (events IS NULL OR events >= 0),
			guid TEXT,
			adler32 TEXT,
			md5 TEXT,
			project TEXT,
			datatype TEXT,
			run_number BIGINT,
			stream_name TEXT,
			prod_step TEXT,
			version TEXT,
			campaign TEXT,
			task_id BIGINT,
			panda_id BIGINT,
			lumiblocknr BIGINT,
			provenance TEXT,
			phys_group TEXT,
			transient BOOLEAN,
			is_archive BOOLEAN,
			constituent BOOLEAN,
			access_cnt BIGINT,
			suppressed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			expired_at TIMESTAMP,
			accessed_at TIMESTAMP,
			closed_at TIMESTAMP,
			eol_at TIMESTAMP,
			deleted_at TIMESTAMP,
			PRIMARY KEY (scope, name)
		)`,
		`CREATE INDEX IF NOT EXISTS dids_guid_idx ON dids(guid)`,
		`CREATE INDEX IF NOT EXISTS dids_project_idx ON dids(project)`,
		`CREATE TABLE IF NOT EXISTS contents (
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			child_scope TEXT NOT NULL,
			child_name TEXT NOT NULL,
			did_type TEXT NOT NULL,
			child_type TEXT NOT NULL,
			bytes BIGINT,
			events BIGINT,
			guid TEXT,
			adler32 TEXT,
			md5 TEXT,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (scope, name, child_scope, child_name)
		)`,
		`CREATE INDEX IF NOT EXISTS contents_child_idx ON contents(child_scope, child_name)`,
		`CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			dest_rse_id TEXT NOT NULL,
			bytes BIGINT,
			adler32 TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS requests_did_idx ON requests(scope, name)`,
		`CREATE TABLE IF NOT EXISTS replicas (
			rse_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			bytes BIGINT NOT NULL,
			adler32 TEXT,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (rse_id, scope, name)
		)`,
		`CREATE INDEX IF NOT EXISTS replicas_did_idx ON replicas(scope, name)`,
		`CREATE TABLE IF NOT EXISTS locks (
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			rse_id TEXT NOT NULL,
			account TEXT NOT NULL,
			bytes BIGINT,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (scope, name, rule_id, rse_id)
		)`,
		`CREATE TABLE IF NOT EXISTS dataset_locks (
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			rse_id TEXT NOT NULL,
			account TEXT NOT NULL,
			length BIGINT,
			bytes BIGINT,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (scope, name, rule_id, rse_id)
		)`,
		`CREATE TABLE IF NOT EXISTS account_usage (
			account TEXT NOT NULL,
			rse_id TEXT NOT NULL,
			files BIGINT NOT NULL DEFAULT 0,
			bytes BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (account, rse_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rse_usage (
			rse_id TEXT PRIMARY KEY,
			files BIGINT NOT NULL DEFAULT 0,
			bytes BIGINT NOT NULL DEFAULT 0
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS did_meta (
			scope TEXT NOT NULL,
			name TEXT NOT NULL,
			meta %s,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (scope, name)
		)`, d.dialect.JSONType()),
		`CREATE TABLE IF NOT EXISTS did_keys (
			key TEXT PRIMARY KEY,
			key_type TEXT NOT NULL,
			value_type TEXT,
			value_regexp TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS did_key_map (
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (key, value)
		)`,
	}

	if d.dialect == DialectPostgres {
		statements = append(statements,
			`CREATE INDEX IF NOT EXISTS did_meta_gin_idx ON did_meta USING GIN(meta)`)
	}

	// Execute each statement individually
	for _, stmt := range statements {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}
