package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"girlmath-server/src/models"

	"github.com/shopspring/decimal"
)

const transactionColumns = "id, user_id, description, amount, created_at"

func scanTransaction(row scanner) (*models.Transaction, error) {
	var t models.Transaction
	if err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.Amount, &t.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

// ListTransactions retrieves a user's transactions, newest first.
func (db *DB) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
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
// balance in one database transaction.
func (db *DB) CreateTransaction(ctx context.Context, txn models.Transaction) (*models.Transaction, decimal.Decimal, error) {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback()

	balance, err := readBalance(ctx, tx, txn.UserID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	balance = balance.Sub(txn.Amount)

	result, err := tx.ExecContext(ctx,
		"INSERT INTO transactions (user_id, description, amount, import_key, created_at) VALUES (?, ?, ?, ?, ?)",
		txn.UserID, txn.Description, txn.Amount, importKey(txn), txn.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to insert transaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, decimal.Zero, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET balance = ?, ledger_version = ledger_version + 1 WHERE id = ?", balance, txn.UserID); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}

	created, err := scanTransaction(tx.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, err
	}
	return created, balance, nil
}

// DeleteTransaction removes a transaction owned by userID and adds its amount
// back to the balance.
func (db *DB) DeleteTransaction(ctx context.Context, userID, txnID int64) (*models.Transaction, decimal.Decimal, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback()

	t, err := scanTransaction(tx.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", txnID))
	if err != nil {
		return nil, decimal.Zero, err
	}
	if t.UserID != userID {
		return nil, decimal.Zero, models.ErrAuth
	}

	balance, err := readBalance(ctx, tx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	balance = balance.Add(t.Amount)

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", txnID); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to delete transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE users SET balance = ?, ledger_version = ledger_version + 1 WHERE id = ?", balance, userID); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, err
	}
	return t, balance, nil
}

// ImportTransactions inserts txns for userID in a single database transaction,
// skipping lines whose ImportKey is already on record for the user.
func (db *DB) ImportTransactions(ctx context.Context, userID int64, txns []models.Transaction) (int, decimal.Decimal, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, decimal.Zero, err
	}
	defer tx.Rollback()

	balance, err := readBalance(ctx, tx, userID)
	if err != nil {
		return 0, decimal.Zero, err
	}

	imported := 0
	for _, txn := range txns {
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = time.Now()
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (user_id, description, amount, import_key, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, import_key) DO NOTHING`,
			userID, txn.Description, txn.Amount, importKey(txn), txn.CreatedAt.UTC(),
		)
		if err != nil {
			return 0, decimal.Zero, fmt.Errorf("failed to insert transaction: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, decimal.Zero, err
		}
		if n == 0 {
			continue
		}
		imported++
		balance = balance.Sub(txn.Amount)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE users SET balance = ?, ledger_version = ledger_version + 1 WHERE id = ?", balance, userID); err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, decimal.Zero, err
	}
	return imported, balance, nil
}

func importKey(txn models.Transaction) sql.NullString {
	return sql.NullString{String: txn.ImportKey, Valid: txn.ImportKey != ""}
}
