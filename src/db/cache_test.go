package db

import (
	"testing"
	"time"

	"girlmath-server/src/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *TransactionCache {
	t.Helper()
	c, err := NewTransactionCache(ttl)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: 1, UserID: 7, Description: "Coffee", Amount: decimal.RequireFromString("4.50")},
	}
}

func TestTransactionCache_SetAndGet(t *testing.T) {
	c := newTestCache(t, time.Minute)

	_, ok := c.Get(7, 0)
	assert.False(t, ok)

	c.Set(7, 0, sampleTransactions())
	c.Wait()

	txns, ok := c.Get(7, 0)
	require.True(t, ok)
	require.Len(t, txns, 1)
	assert.Equal(t, "Coffee", txns[0].Description)

	_, ok = c.Get(8, 0)
	assert.False(t, ok, "other users must not see the entry")
}

func TestTransactionCache_NewVersionMisses(t *testing.T) {
	c := newTestCache(t, time.Minute)

	c.Set(7, 3, sampleTransactions())
	c.Wait()

	_, ok := c.Get(7, 4)
	assert.False(t, ok)
}

func TestTransactionCache_EntriesExpire(t *testing.T) {
	c := newTestCache(t, 20*time.Millisecond)

	c.Set(7, 0, sampleTransactions())
	c.Wait()
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get(7, 0)
	assert.False(t, ok)
}

func TestTransactionCache_NilIsNoop(t *testing.T) {
	var c *TransactionCache

	c.Set(1, 0, sampleTransactions())
	c.Wait()
	c.Close()
	_, ok := c.Get(1, 0)
	assert.False(t, ok)
}
