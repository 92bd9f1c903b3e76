package db

import (
	"fmt"
	"time"

	"girlmath-server/src/models"

	"github.com/dgraph-io/ristretto"
)

// TransactionCache holds each user's transaction list keyed by the user's
// ledger version. Stores bump the version in the same database transaction
// as every insert or delete, so a write made by any process retires the
// cached list. Entries also expire after the configured TTL.
// A nil *TransactionCache is valid and caches nothing.
type TransactionCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewTransactionCache(ttl time.Duration) (*TransactionCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &TransactionCache{cache: cache, ttl: ttl}, nil
}

func cacheKey(userID, version int64) string {
	return fmt.Sprintf("transactions:%d:%d", userID, version)
}

// Get returns the list cached for the user at the given ledger version.
func (c *TransactionCache) Get(userID, version int64) ([]models.Transaction, bool) {
	if c == nil {
		return nil, false
	}
	value, ok := c.cache.Get(cacheKey(userID, version))
	if !ok {
		return nil, false
	}
	txns, ok := value.([]models.Transaction)
	return txns, ok
}

func (c *TransactionCache) Set(userID, version int64, txns []models.Transaction) {
	if c == nil {
		return
	}
	c.cache.SetWithTTL(cacheKey(userID, version), txns, 1, c.ttl)
}

func (c *TransactionCache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}

// Wait blocks until pending Sets are visible to Get.
func (c *TransactionCache) Wait() {
	if c == nil {
		return
	}
	c.cache.Wait()
}
