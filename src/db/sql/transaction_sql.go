package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"girlmath-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var t models.Transaction
	var amount pgtype.Numeric
	if err := row.Scan(&t.ID, &t.UserID, &t.Description, &amount, &t.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	var err error
	if t.Amount, err = toDecimal(amount); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, description, amount, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// CreateTransaction inserts txn and subtracts its amount from the owner's
// balance in one database transaction. It returns the stored row and the new
// balance.
func (s *Store) CreateTransaction(ctx context.Context, txn models.Transaction) (*models.Transaction, decimal.Decimal, error) {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	// The user row lock taken here serializes writers for the same user.
	var balance pgtype.Numeric
	err = tx.QueryRow(ctx,
		`UPDATE users SET balance = balance - $1::numeric, ledger_version = ledger_version + 1
		 WHERE id = $2 RETURNING balance`,
		txn.Amount.String(), txn.UserID,
	).Scan(&balance)
	if err != nil {
		return nil, decimal.Zero, mapError(err)
	}

	query := `
		INSERT INTO transactions (user_id, description, amount, created_at)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING id, user_id, description, amount, created_at
	`
	created, err := scanTransaction(tx.QueryRow(ctx, query,
		txn.UserID, txn.Description, txn.Amount.String(), txn.CreatedAt.UTC()))
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to insert transaction: %w", err)
	}

	newBalance, err := toDecimal(balance)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, decimal.Zero, err
	}
	return created, newBalance, nil
}

// DeleteTransaction removes a transaction owned by userID and adds its amount
// back to the balance. It fails with models.ErrNotFound when the transaction
// does not exist and models.ErrAuth when another user owns it.
func (s *Store) DeleteTransaction(ctx context.Context, userID, txnID int64) (*models.Transaction, decimal.Decimal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	t, err := scanTransaction(tx.QueryRow(ctx, `
		SELECT id, user_id, description, amount, created_at
		FROM transactions WHERE id = $1 FOR UPDATE
	`, txnID))
	if err != nil {
		return nil, decimal.Zero, err
	}
	if t.UserID != userID {
		return nil, decimal.Zero, models.ErrAuth
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, txnID); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to delete transaction: %w", err)
	}

	var balance pgtype.Numeric
	err = tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $1::numeric, ledger_version = ledger_version + 1
		 WHERE id = $2 RETURNING balance`,
		t.Amount.String(), userID,
	).Scan(&balance)
	if err != nil {
		return nil, decimal.Zero, mapError(err)
	}

	newBalance, err := toDecimal(balance)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, decimal.Zero, err
	}
	return t, newBalance, nil
}

// ImportTransactions inserts txns for userID in a single database transaction.
// Lines whose ImportKey is already on record for the user are skipped. The
// balance moves by the sum of the inserted amounts.
func (s *Store) ImportTransactions(ctx context.Context, userID int64, txns []models.Transaction) (int, decimal.Decimal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		return 0, decimal.Zero, mapError(err)
	}

	query := `
		INSERT INTO transactions (user_id, description, amount, import_key, created_at)
		VALUES ($1, $2, $3::numeric, NULLIF($4, ''), $5)
		ON CONFLICT (user_id, import_key) DO NOTHING
		RETURNING id
	`
	imported := 0
	total := decimal.Zero
	for _, txn := range txns {
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = time.Now()
		}
		var txnID int64
		err := tx.QueryRow(ctx, query,
			userID, txn.Description, txn.Amount.String(), txn.ImportKey, txn.CreatedAt.UTC(),
		).Scan(&txnID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, decimal.Zero, fmt.Errorf("failed to insert transaction: %w", err)
		}
		imported++
		total = total.Add(txn.Amount)
	}

	var balance pgtype.Numeric
	err = tx.QueryRow(ctx,
		`UPDATE users SET balance = balance - $1::numeric, ledger_version = ledger_version + 1
		 WHERE id = $2 RETURNING balance`,
		total.String(), userID,
	).Scan(&balance)
	if err != nil {
		return 0, decimal.Zero, mapError(err)
	}
	newBalance, err := toDecimal(balance)
	if err != nil {
		return 0, decimal.Zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, decimal.Zero, err
	}
	return imported, newBalance, nil
}
