package db

import (
	"context"
	"time"

	"girlmath-server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const goalColumns = `id, user_id, name, target, saved, created_at`

func scanGoal(row pgx.Row) (*models.Goal, error) {
	var g models.Goal
	var target, saved pgtype.Numeric
	if err := row.Scan(&g.ID, &g.UserID, &g.Name, &target, &saved, &g.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	var err error
	if g.Target, err = toDecimal(target); err != nil {
		return nil, err
	}
	if g.Saved, err = toDecimal(saved); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.pool.Query(ctx, query, userID)
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

func (s *Store) CreateGoal(ctx context.Context, goal models.Goal) (*models.Goal, error) {
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO goals (user_id, name, target, saved, created_at)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5)
		RETURNING ` + goalColumns
	return scanGoal(s.pool.QueryRow(ctx, query,
		goal.UserID, goal.Name, goal.Target.String(), goal.Saved.String(), goal.CreatedAt.UTC()))
}

// UpdateGoalSaved overwrites the saved amount of a goal owned by userID.
func (s *Store) UpdateGoalSaved(ctx context.Context, userID, goalID int64, saved decimal.Decimal) (*models.Goal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := checkGoalOwner(ctx, tx, userID, goalID); err != nil {
		return nil, err
	}
	query := `
		UPDATE goals SET saved = $1::numeric
		WHERE id = $2
		RETURNING ` + goalColumns
	g, err := scanGoal(tx.QueryRow(ctx, query, saved.String(), goalID))
	if err != nil {
		return nil, err
	}
	return g, tx.Commit(ctx)
}

func (s *Store) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := checkGoalOwner(ctx, tx, userID, goalID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM goals WHERE id = $1`, goalID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func checkGoalOwner(ctx context.Context, tx pgx.Tx, userID, goalID int64) error {
	var owner int64
	err := tx.QueryRow(ctx, `SELECT user_id FROM goals WHERE id = $1 FOR UPDATE`, goalID).Scan(&owner)
	if err != nil {
		return mapError(err)
	}
	if owner != userID {
		return models.ErrAuth
	}
	return nil
}
