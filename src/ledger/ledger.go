// Package ledger records transactions against a user's running balance.
//
// A positive amount is money spent and is subtracted from the balance; a
// negative amount is money received. Every insert or delete moves the cached
// balance in the same store transaction as the row change.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"girlmath-server/src/db"
	"girlmath-server/src/models"
	"girlmath-server/src/util"

	"github.com/shopspring/decimal"
)

type Store interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SetBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error)
	ReconcileBalance(ctx context.Context, userID int64, repair bool) (*models.Reconciliation, error)
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, txn models.Transaction) (*models.Transaction, decimal.Decimal, error)
	DeleteTransaction(ctx context.Context, userID, txnID int64) (*models.Transaction, decimal.Decimal, error)
	ImportTransactions(ctx context.Context, userID int64, txns []models.Transaction) (int, decimal.Decimal, error)
}

type Service struct {
	store Store
	cache *db.TransactionCache
}

// NewService returns a ledger backed by store. cache may be nil.
func NewService(store Store, cache *db.TransactionCache) *Service {
	return &Service{store: store, cache: cache}
}

// Summary is what the index page shows.
type Summary struct {
	User         *models.User
	Transactions []models.Transaction
}

// ListTransactions returns the user's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.transactions(ctx, user)
}

// transactions serves the list from the cache when it was filled at the
// user's current ledger version.
func (s *Service) transactions(ctx context.Context, user *models.User) ([]models.Transaction, error) {
	if txns, ok := s.cache.Get(user.ID, user.LedgerVersion); ok {
		return txns, nil
	}
	txns, err := s.store.ListTransactions(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	s.cache.Set(user.ID, user.LedgerVersion, txns)
	return txns, nil
}

func (s *Service) user(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFoundf("User not found.")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	txns, err := s.transactions(ctx, user)
	if err != nil {
		return nil, err
	}
	return &Summary{User: user, Transactions: txns}, nil
}

// AddTransaction records a transaction and subtracts its amount from the
// balance. It returns the stored transaction and the new balance.
func (s *Service) AddTransaction(ctx context.Context, userID int64, description, amount string) (*models.Transaction, decimal.Decimal, error) {
	description = strings.TrimSpace(description)
	amount = strings.TrimSpace(amount)
	if description == "" || amount == "" {
		return nil, decimal.Zero, models.Validationf("Both fields are required.")
	}
	if !util.StorableText(description) {
		return nil, decimal.Zero, models.Validationf("Description contains invalid characters.")
	}
	if !util.ValidateDescription(description) {
		return nil, decimal.Zero, models.Validationf("Description must be at most %d characters.", util.MaxDescriptionLength)
	}
	value, err := util.ParseAmount(amount)
	if err != nil {
		return nil, decimal.Zero, models.Validationf("Amount must be a valid number.")
	}

	return s.record(ctx, models.Transaction{UserID: userID, Description: description, Amount: value})
}

func (s *Service) record(ctx context.Context, txn models.Transaction) (*models.Transaction, decimal.Decimal, error) {
	created, balance, err := s.store.CreateTransaction(ctx, txn)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, decimal.Zero, models.NotFoundf("User not found.")
		}
		return nil, decimal.Zero, fmt.Errorf("failed to add transaction: %w", err)
	}
	log.Printf("INFO: Transaction %d added for user %d, amount %s, balance %s", created.ID, txn.UserID, created.Amount, balance)
	return created, balance, nil
}

// DeleteTransaction removes one of the user's transactions and adds its amount
// back to the balance.
func (s *Service) DeleteTransaction(ctx context.Context, userID, txnID int64) (*models.Transaction, decimal.Decimal, error) {
	deleted, balance, err := s.store.DeleteTransaction(ctx, userID, txnID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil, decimal.Zero, models.NotFoundf("Transaction not found.")
	case errors.Is(err, models.ErrAuth):
		log.Printf("ERROR: User %d attempted to delete transaction %d owned by another user", userID, txnID)
		return nil, decimal.Zero, models.Authf("Unauthorized action.")
	case err != nil:
		return nil, decimal.Zero, fmt.Errorf("failed to delete transaction: %w", err)
	}
	log.Printf("INFO: Transaction %d deleted for user %d, balance %s", txnID, userID, balance)
	return deleted, balance, nil
}

// SetBalance overwrites the user's balance.
func (s *Service) SetBalance(ctx context.Context, userID int64, amount string) (*models.User, error) {
	value, err := util.ParseAmount(amount)
	if err != nil {
		return nil, models.Validationf("Please enter a valid number.")
	}
	user, err := s.store.SetBalance(ctx, userID, value)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFoundf("User not found.")
		}
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}
	log.Printf("INFO: Balance set for user %d to %s", userID, value)
	return user, nil
}

// Analytics returns the user's transactions oldest first with spending totals
// and a per-day series.
func (s *Service) Analytics(ctx context.Context, userID int64) (*models.Analytics, error) {
	txns, err := s.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	chrono := make([]models.Transaction, len(txns))
	copy(chrono, txns)
	sort.SliceStable(chrono, func(i, j int) bool {
		if chrono[i].CreatedAt.Equal(chrono[j].CreatedAt) {
			return chrono[i].ID < chrono[j].ID
		}
		return chrono[i].CreatedAt.Before(chrono[j].CreatedAt)
	})

	a := &models.Analytics{Transactions: chrono, Spent: decimal.Zero, Received: decimal.Zero}
	for _, t := range chrono {
		day := t.CreatedAt.UTC().Format("2006-01-02")
		if n := len(a.Daily); n == 0 || a.Daily[n-1].Date != day {
			a.Daily = append(a.Daily, models.DailyTotal{Date: day, Spent: decimal.Zero, Received: decimal.Zero})
		}
		d := &a.Daily[len(a.Daily)-1]
		if t.IsIncome() {
			a.Received = a.Received.Add(t.Amount.Neg())
			d.Received = d.Received.Add(t.Amount.Neg())
		} else {
			a.Spent = a.Spent.Add(t.Amount)
			d.Spent = d.Spent.Add(t.Amount)
		}
	}
	a.Net = a.Received.Sub(a.Spent)
	return a, nil
}

// Reconcile compares the cached balance with the one implied by the opening
// balance and the transactions on record. With repair set, drift is fixed.
func (s *Service) Reconcile(ctx context.Context, userID int64, repair bool) (*models.Reconciliation, error) {
	rec, err := s.store.ReconcileBalance(ctx, userID, repair)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NotFoundf("User not found.")
		}
		return nil, fmt.Errorf("failed to reconcile balance: %w", err)
	}
	if !rec.InSync() {
		log.Printf("INFO: Balance drift for user %d: cached %s, expected %s, repaired %t",
			userID, rec.Cached, rec.Expected, rec.Repaired)
	}
	return rec, nil
}
