// Package sqlite stores users, transactions and goals in an embedded SQLite
// file. All access goes through a single connection, so writes for every user
// are serialized.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"girlmath-server/src/models"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens the database at path. Use ":memory:" for a throwaway database.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DB{conn: conn}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE,
			password_hash TEXT NOT NULL,
			balance TEXT NOT NULL DEFAULT '0',
			opening_balance TEXT NOT NULL DEFAULT '0',
			ledger_version INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			amount TEXT NOT NULL,
			import_key TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS transactions_user_created_idx ON transactions (user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			target TEXT NOT NULL,
			saved TEXT NOT NULL DEFAULT '0',
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS goals_user_created_idx ON goals (user_id, created_at)`,
	}

	for i, m := range migrations {
		if _, err := db.conn.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Columns added after the first release.
	if err := db.ensureColumn(ctx, "users", "ledger_version", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}
	if err := db.ensureColumn(ctx, "transactions", "import_key", "TEXT"); err != nil {
		return err
	}
	_, err := db.conn.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS transactions_user_import_key_idx ON transactions (user_id, import_key)`)
	if err != nil {
		return fmt.Errorf("migration import key index: %w", err)
	}
	return nil
}

func (db *DB) ensureColumn(ctx context.Context, table, column, definition string) error {
	var n int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&n)
	if err != nil {
		return fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.conn.ExecContext(ctx, "ALTER TABLE "+table+" ADD COLUMN "+column+" "+definition); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && isUniqueViolation(sqliteErr) {
		return fmt.Errorf("%w: %s", models.ErrConflict, sqliteErr.Error())
	}
	return err
}

func isUniqueViolation(err *sqlite.Error) bool {
	if err.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return err.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "UNIQUE")
}
