package sqlite

import (
	"context"
	"database/sql"
	"time"

	"girlmath-server/src/models"

	"github.com/shopspring/decimal"
)

const goalColumns = "id, user_id, name, target, saved, created_at"

func scanGoal(row scanner) (*models.Goal, error) {
	var g models.Goal
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.Target, &g.Saved, &g.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &g, nil
}

// ListGoals retrieves a user's goals, newest first.
func (db *DB) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (db *DB) CreateGoal(ctx context.Context, goal models.Goal) (*models.Goal, error) {
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	result, err := db.conn.ExecContext(ctx,
		"INSERT INTO goals (user_id, name, target, saved, created_at) VALUES (?, ?, ?, ?, ?)",
		goal.UserID, goal.Name, goal.Target, goal.Saved, goal.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, mapError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return scanGoal(db.conn.QueryRowContext(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = ?", id))
}

// UpdateGoalSaved overwrites the saved amount of a goal owned by userID.
func (db *DB) UpdateGoalSaved(ctx context.Context, userID, goalID int64, saved decimal.Decimal) (*models.Goal, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := checkGoalOwner(ctx, tx, userID, goalID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE goals SET saved = ? WHERE id = ?", saved, goalID); err != nil {
		return nil, err
	}
	g, err := scanGoal(tx.QueryRowContext(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = ?", goalID))
	if err != nil {
		return nil, err
	}
	return g, tx.Commit()
}

func (db *DB) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := checkGoalOwner(ctx, tx, userID, goalID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", goalID); err != nil {
		return err
	}
	return tx.Commit()
}

func checkGoalOwner(ctx context.Context, tx *sql.Tx, userID, goalID int64) error {
	var owner int64
	if err := tx.QueryRowContext(ctx, "SELECT user_id FROM goals WHERE id = ?", goalID).Scan(&owner); err != nil {
		return mapError(err)
	}
	if owner != userID {
		return models.ErrAuth
	}
	return nil
}
