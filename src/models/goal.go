package models

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Goal struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Name      string          `json:"name"`
	Target    decimal.Decimal `json:"target"`
	Saved     decimal.Decimal `json:"saved"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProgressPercent returns saved/target as a percentage rounded to two places,
// or 0 when the target is not positive. Values above 100 and below 0 are kept.
func (g Goal) ProgressPercent() float64 {
	if !g.Target.IsPositive() {
		return 0
	}
	pct, _ := g.Saved.Mul(hundred).Div(g.Target).Round(2).Float64()
	return pct
}

// Remaining is what is left to save. It is negative once the goal is exceeded.
func (g Goal) Remaining() decimal.Decimal {
	return g.Target.Sub(g.Saved)
}
