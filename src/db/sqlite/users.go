package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"girlmath-server/src/models"

	"github.com/shopspring/decimal"
)

const userColumns = "id, username, email, password_hash, balance, opening_balance, ledger_version, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var email sql.NullString
	var hash string
	if err := row.Scan(&u.ID, &u.Username, &email, &hash, &u.Balance, &u.OpeningBalance, &u.LedgerVersion, &u.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	if email.Valid {
		u.Email = &email.String
	}
	u.PasswordHash = []byte(hash)
	return &u, nil
}

// CreateUser creates a new user with the given credentials and a zero balance.
func (db *DB) CreateUser(ctx context.Context, username string, email *string, passwordHash []byte) (*models.User, error) {
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		username, email, string(passwordHash), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// SetBalance overwrites the cached balance and records the matching opening balance.
func (db *DB) SetBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := readBalance(ctx, tx, userID); err != nil {
		return nil, err
	}
	total, err := sumAmounts(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE users SET balance = ?, opening_balance = ? WHERE id = ?",
		amount, amount.Add(total), userID,
	)
	if err != nil {
		return nil, err
	}
	user, err := scanUser(tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", userID))
	if err != nil {
		return nil, err
	}
	return user, tx.Commit()
}

// ReconcileBalance compares the cached balance with opening balance minus the
// sum of all transactions, and rewrites it when repair is set.
func (db *DB) ReconcileBalance(ctx context.Context, userID int64, repair bool) (*models.Reconciliation, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var balance, opening decimal.Decimal
	err = tx.QueryRowContext(ctx, "SELECT balance, opening_balance FROM users WHERE id = ?", userID).
		Scan(&balance, &opening)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := sumAmounts(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	rec := &models.Reconciliation{UserID: userID, Cached: balance, Expected: opening.Sub(total)}
	if repair && !rec.InSync() {
		if _, err := tx.ExecContext(ctx, "UPDATE users SET balance = ? WHERE id = ?", rec.Expected, userID); err != nil {
			return nil, err
		}
		rec.Repaired = true
	}
	return rec, tx.Commit()
}

func readBalance(ctx context.Context, tx *sql.Tx, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx, "SELECT balance FROM users WHERE id = ?", userID).Scan(&balance)
	if err != nil {
		return decimal.Zero, mapError(err)
	}
	return balance, nil
}

// sumAmounts adds amounts in Go; SQLite's SUM would go through floating point.
func sumAmounts(ctx context.Context, tx *sql.Tx, userID int64) (decimal.Decimal, error) {
	rows, err := tx.QueryContext(ctx, "SELECT amount FROM transactions WHERE user_id = ?", userID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}
