package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	Email          *string         `json:"email,omitempty"`
	PasswordHash   []byte          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	// LedgerVersion changes with every transaction insert or delete.
	LedgerVersion  int64           `json:"-"`
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   int64
	Username string
}
