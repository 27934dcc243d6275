package domain

import "github.com/shopspring/decimal"

// Side is the market maker's side of an executed trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// FillRecord is an executed trade against a standing quote.
// Records are appended to the run's fill log and never mutated.
type FillRecord struct {
	Day   int             `json:"day"`
	Side  Side            `json:"side"`
	Price decimal.Decimal `json:"price"`
	Size  int64           `json:"size"`
}

// Notional returns price * size.
func (f FillRecord) Notional() decimal.Decimal {
	return f.Price.Mul(decimal.NewFromInt(f.Size))
}
