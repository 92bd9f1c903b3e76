package db

import (
	"context"
	"fmt"

	pgstore "girlmath-server/src/db/sql"
	"girlmath-server/src/db/sqlite"
	"girlmath-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is everything the services need from a storage backend.
type Store interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	CreateUser(ctx context.Context, username string, email *string, passwordHash []byte) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetBalance(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error)
	ReconcileBalance(ctx context.Context, userID int64, repair bool) (*models.Reconciliation, error)

	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, txn models.Transaction) (*models.Transaction, decimal.Decimal, error)
	DeleteTransaction(ctx context.Context, userID, txnID int64) (*models.Transaction, decimal.Decimal, error)
	ImportTransactions(ctx context.Context, userID int64, txns []models.Transaction) (int, decimal.Decimal, error)

	ListGoals(ctx context.Context, userID int64) ([]models.Goal, error)
	CreateGoal(ctx context.Context, goal models.Goal) (*models.Goal, error)
	UpdateGoalSaved(ctx context.Context, userID, goalID int64, saved decimal.Decimal) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID int64) error
}

var (
	_ Store = (*pgstore.Store)(nil)
	_ Store = (*sqlite.DB)(nil)
)

func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Open connects to the configured backend and brings its schema up to date.
func Open(ctx context.Context, driver, databaseURL, sqlitePath string) (Store, error) {
	var store Store
	switch driver {
	case DriverPostgres:
		pool, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		store = pgstore.NewStore(pool)
	case DriverSQLite:
		conn, err := sqlite.NewDB(sqlitePath)
		if err != nil {
			return nil, err
		}
		store = conn
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}
