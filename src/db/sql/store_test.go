package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"girlmath-server/src/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestStore starts a throwaway postgres container. Tests are skipped in
// short mode or when docker is unavailable.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container-based test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "girlmath",
				"POSTGRES_PASSWORD": "girlmath",
				"POSTGRES_DB":       "girlmath",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://girlmath:girlmath@%s:%s/girlmath?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)

	store := NewStore(pool)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStore_UsersAndConflicts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	email := "alice@example.com"

	user, err := store.CreateUser(ctx, "alice", &email, []byte("hash"))
	require.NoError(t, err)
	assert.True(t, user.Balance.IsZero())

	_, err = store.CreateUser(ctx, "alice", nil, []byte("hash"))
	assert.ErrorIs(t, err, models.ErrConflict)
	_, err = store.CreateUser(ctx, "bob", &email, []byte("hash"))
	assert.ErrorIs(t, err, models.ErrConflict)

	found, err := store.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_LedgerAndReconcile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice", nil, []byte("hash"))
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob", nil, []byte("hash"))
	require.NoError(t, err)

	_, err = store.SetBalance(ctx, alice.ID, dec("100"))
	require.NoError(t, err)

	coffee, balance, err := store.CreateTransaction(ctx, models.Transaction{
		UserID: alice.ID, Description: "Coffee", Amount: dec("4.50"),
	})
	require.NoError(t, err)
	assert.True(t, dec("95.50").Equal(balance), "got %s", balance)

	_, balance, err = store.CreateTransaction(ctx, models.Transaction{
		UserID: alice.ID, Description: "Paycheck", Amount: dec("-1000"),
	})
	require.NoError(t, err)
	assert.True(t, dec("1095.50").Equal(balance), "got %s", balance)

	txns, err := store.ListTransactions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "Paycheck", txns[0].Description)

	_, _, err = store.DeleteTransaction(ctx, bob.ID, coffee.ID)
	assert.ErrorIs(t, err, models.ErrAuth)

	_, balance, err = store.DeleteTransaction(ctx, alice.ID, coffee.ID)
	require.NoError(t, err)
	assert.True(t, dec("1100").Equal(balance), "got %s", balance)

	rec, err := store.ReconcileBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.True(t, rec.InSync(), "cached %s expected %s", rec.Cached, rec.Expected)

	_, err = store.pool.Exec(ctx, "UPDATE users SET balance = 7 WHERE id = $1", alice.ID)
	require.NoError(t, err)

	rec, err = store.ReconcileBalance(ctx, alice.ID, true)
	require.NoError(t, err)
	assert.True(t, rec.Repaired)
	assert.True(t, dec("1100").Equal(rec.Expected), "got %s", rec.Expected)
}

func TestStore_SetBalanceRacingInserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice", nil, []byte("hash"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, err := store.CreateTransaction(ctx, models.Transaction{
				UserID: alice.ID, Description: "Coffee", Amount: dec("1.25"),
			})
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			_, err := store.SetBalance(ctx, alice.ID, decimal.NewFromInt(int64(100+i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rec, err := store.ReconcileBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.True(t, rec.InSync(), "cached %s expected %s", rec.Cached, rec.Expected)
}

func TestStore_ImportTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice", nil, []byte("hash"))
	require.NoError(t, err)

	lines := []models.Transaction{
		{Description: "Coffee", Amount: dec("4.50"), ImportKey: "acct:1"},
		{Description: "Salary", Amount: dec("-100"), ImportKey: "acct:2"},
	}
	imported, balance, err := store.ImportTransactions(ctx, alice.ID, lines)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.True(t, dec("95.50").Equal(balance), "got %s", balance)

	imported, balance, err = store.ImportTransactions(ctx, alice.ID, append(lines,
		models.Transaction{Description: "Books", Amount: dec("10"), ImportKey: "acct:3"}))
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.True(t, dec("85.50").Equal(balance), "got %s", balance)

	user, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, user.LedgerVersion)

	_, _, err = store.ImportTransactions(ctx, alice.ID+100, lines)
	assert.ErrorIs(t, err, models.ErrNotFound)

	rec, err := store.ReconcileBalance(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.True(t, rec.InSync())
}

func TestStore_Goals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, "alice", nil, []byte("hash"))
	require.NoError(t, err)
	bob, err := store.CreateUser(ctx, "bob", nil, []byte("hash"))
	require.NoError(t, err)

	goal, err := store.CreateGoal(ctx, models.Goal{UserID: alice.ID, Name: "Trip", Target: dec("1000")})
	require.NoError(t, err)

	updated, err := store.UpdateGoalSaved(ctx, alice.ID, goal.ID, dec("250.50"))
	require.NoError(t, err)
	assert.True(t, dec("250.50").Equal(updated.Saved))

	_, err = store.UpdateGoalSaved(ctx, bob.ID, goal.ID, dec("1"))
	assert.ErrorIs(t, err, models.ErrAuth)
	assert.ErrorIs(t, store.DeleteGoal(ctx, alice.ID, goal.ID+100), models.ErrNotFound)

	require.NoError(t, store.DeleteGoal(ctx, alice.ID, goal.ID))
	goals, err := store.ListGoals(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)
}
