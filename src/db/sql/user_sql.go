package db

import (
	"context"
	"fmt"

	"girlmath-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const userColumns = `id, username, email, password_hash, balance, opening_balance, ledger_version, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var hash string
	var balance, opening pgtype.Numeric
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&hash,
		&balance,
		&opening,
		&user.LedgerVersion,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	user.PasswordHash = []byte(hash)
	if user.Balance, err = toDecimal(balance); err != nil {
		return nil, err
	}
	if user.OpeningBalance, err = toDecimal(opening); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

func (s *Store) CreateUser(ctx context.Context, username string, email *string, passwordHash []byte) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	user, err := scanUser(s.pool.QueryRow(ctx, query, username, email, string(passwordHash)))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// SetBalance overwrites the cached balance and records the opening balance
// that, together with the transactions on record, yields it. The user row is
// locked before summing so a concurrent insert cannot slip between the two.
func (s *Store) SetBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		return nil, mapError(err)
	}
	var total pgtype.Numeric
	err = tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1`, userID).
		Scan(&total)
	if err != nil {
		return nil, err
	}
	sum, err := toDecimal(total)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE users
		SET balance = $1::numeric, opening_balance = $2::numeric
		WHERE id = $3
		RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRow(ctx, query, amount.String(), amount.Add(sum).String(), userID))
	if err != nil {
		return nil, err
	}
	return user, tx.Commit(ctx)
}

// ReconcileBalance compares the cached balance with opening balance minus the
// sum of all transactions, and rewrites it when repair is set.
func (s *Store) ReconcileBalance(ctx context.Context, userID int64, repair bool) (*models.Reconciliation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var balance, opening, total pgtype.Numeric
	err = tx.QueryRow(ctx, `SELECT balance, opening_balance FROM users WHERE id = $1 FOR UPDATE`, userID).
		Scan(&balance, &opening)
	if err != nil {
		return nil, mapError(err)
	}
	err = tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1`, userID).
		Scan(&total)
	if err != nil {
		return nil, err
	}

	rec := &models.Reconciliation{UserID: userID}
	if rec.Cached, err = toDecimal(balance); err != nil {
		return nil, err
	}
	openingBalance, err := toDecimal(opening)
	if err != nil {
		return nil, err
	}
	sum, err := toDecimal(total)
	if err != nil {
		return nil, err
	}
	rec.Expected = openingBalance.Sub(sum)

	if repair && !rec.InSync() {
		_, err = tx.Exec(ctx, `UPDATE users SET balance = $1::numeric WHERE id = $2`, rec.Expected.String(), userID)
		if err != nil {
			return nil, err
		}
		rec.Repaired = true
	}
	return rec, tx.Commit(ctx)
}
