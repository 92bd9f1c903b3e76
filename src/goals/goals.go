// Package goals tracks savings goals. Goals never touch the balance.
package goals

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"girlmath-server/src/models"
	"girlmath-server/src/util"

	"github.com/shopspring/decimal"
)

type Store interface {
	ListGoals(ctx context.Context, userID int64) ([]models.Goal, error)
	CreateGoal(ctx context.Context, goal models.Goal) (*models.Goal, error)
	UpdateGoalSaved(ctx context.Context, userID, goalID int64, saved decimal.Decimal) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListGoals returns the user's goals, newest first.
func (s *Service) ListGoals(ctx context.Context, userID int64) ([]models.Goal, error) {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

func (s *Service) AddGoal(ctx context.Context, userID int64, name, target string) (*models.Goal, error) {
	name = strings.TrimSpace(name)
	target = strings.TrimSpace(target)
	if name == "" || target == "" {
		return nil, models.Validationf("Please fill in all fields.")
	}
	if !util.StorableText(name) {
		return nil, models.Validationf("Goal name contains invalid characters.")
	}
	if !util.ValidateGoalName(name) {
		return nil, models.Validationf("Goal name must be at most %d characters.", util.MaxGoalNameLength)
	}
	value, err := util.ParseAmount(target)
	if err != nil {
		return nil, models.Validationf("Target amount must be a number.")
	}

	goal, err := s.store.CreateGoal(ctx, models.Goal{UserID: userID, Name: name, Target: value, Saved: decimal.Zero})
	if err != nil {
		return nil, fmt.Errorf("failed to add goal: %w", err)
	}
	log.Printf("INFO: Goal %d added for user %d, target %s", goal.ID, userID, value)
	return goal, nil
}

// UpdateProgress overwrites the saved amount of a goal.
func (s *Service) UpdateProgress(ctx context.Context, userID, goalID int64, saved string) (*models.Goal, error) {
	value, err := util.ParseAmount(saved)
	if err != nil {
		return nil, models.Validationf("Invalid number entered.")
	}
	goal, err := s.store.UpdateGoalSaved(ctx, userID, goalID, value)
	if err != nil {
		return nil, mapError(err, userID, goalID)
	}
	return goal, nil
}

func (s *Service) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	if err := s.store.DeleteGoal(ctx, userID, goalID); err != nil {
		return mapError(err, userID, goalID)
	}
	log.Printf("INFO: Goal %d deleted for user %d", goalID, userID)
	return nil
}

func mapError(err error, userID, goalID int64) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.NotFoundf("Goal not found.")
	case errors.Is(err, models.ErrAuth):
		log.Printf("ERROR: User %d attempted to modify goal %d owned by another user", userID, goalID)
		return models.Authf("Unauthorized action.")
	default:
		return fmt.Errorf("failed to update goal %d: %w", goalID, err)
	}
}
