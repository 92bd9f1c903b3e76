package db

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT UNIQUE,
		password_hash TEXT NOT NULL,
		balance NUMERIC NOT NULL DEFAULT 0,
		opening_balance NUMERIC NOT NULL DEFAULT 0,
		ledger_version BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description VARCHAR(200) NOT NULL,
		amount NUMERIC NOT NULL,
		import_key TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS ledger_version BIGINT NOT NULL DEFAULT 0`,
	`ALTER TABLE transactions ADD COLUMN IF NOT EXISTS import_key TEXT`,
	`CREATE UNIQUE INDEX IF NOT EXISTS transactions_user_import_key_idx
		ON transactions (user_id, import_key)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_created_idx
		ON transactions (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		target NUMERIC NOT NULL,
		saved NUMERIC NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS goals_user_created_idx
		ON goals (user_id, created_at DESC)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, m := range migrations {
		if _, err := s.pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
