package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a ledger entry. A positive amount is money spent and is
// subtracted from the owner's balance; a negative amount is money received.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	// ImportKey identifies a statement line so a re-import skips it. Empty
	// for transactions entered by hand.
	ImportKey   string          `json:"-"`
}

func (t Transaction) IsIncome() bool {
	return t.Amount.IsNegative()
}
