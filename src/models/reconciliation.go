package models

import "github.com/shopspring/decimal"

// Reconciliation compares the cached balance with the value implied by the
// opening balance and the transactions currently on record.
type Reconciliation struct {
	UserID   int64           `json:"user_id"`
	Cached   decimal.Decimal `json:"cached"`
	Expected decimal.Decimal `json:"expected"`
	Repaired bool            `json:"repaired"`
}

func (r Reconciliation) Drift() decimal.Decimal {
	return r.Cached.Sub(r.Expected)
}

func (r Reconciliation) InSync() bool {
	return r.Drift().IsZero()
}
