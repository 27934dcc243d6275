package domain

import (
	"fmt"
	"math"
)

// Quote is the two-sided market a strategy offers for one simulated day.
// Prices cross the strategy boundary as float64; the simulator converts them
// to decimals only after Validate succeeds.
type Quote struct {
	BidPrice float64 `json:"bid"`
	BidSize  int64   `json:"bid_size"`
	AskPrice float64 `json:"ask"`
	AskSize  int64   `json:"ask_size"`
}

// ZeroQuote is the no-trade quote substituted for a faulty one.
var ZeroQuote = Quote{}

// IsZero reports whether neither leg can trade.
func (q Quote) IsZero() bool {
	return q.BidSize == 0 && q.AskSize == 0
}

// IsCrossed reports bid above ask while both legs are live.
func (q Quote) IsCrossed() bool {
	return q.BidSize > 0 && q.AskSize > 0 && q.BidPrice > q.AskPrice
}

// Validate returns a non-empty reason when the quote cannot be traded.
// The order of checks decides which reason is reported for quotes with
// several problems.
func (q Quote) Validate() string {
	if !isFinite(q.BidPrice) || !isFinite(q.AskPrice) {
		return fmt.Sprintf("non-finite price: bid=%v ask=%v", q.BidPrice, q.AskPrice)
	}
	if q.BidSize < 0 || q.AskSize < 0 {
		return fmt.Sprintf("negative size: bid_size=%d ask_size=%d", q.BidSize, q.AskSize)
	}
	if (q.BidSize > 0 && q.BidPrice < 0) || (q.AskSize > 0 && q.AskPrice < 0) {
		return fmt.Sprintf("negative price: bid=%v ask=%v", q.BidPrice, q.AskPrice)
	}
	if q.IsCrossed() {
		return fmt.Sprintf("crossed quote: bid=%v > ask=%v", q.BidPrice, q.AskPrice)
	}
	return ""
}

// OverflowsInventory reports whether filling either live leg could push
// inventory outside int64, starting from inventory. Buys book before sells,
// so the sell leg is checked against the lower of the two possible holdings.
func (q Quote) OverflowsInventory(inventory int64) bool {
	if inventory >= 0 && q.AskSize > math.MaxInt64-inventory {
		return true
	}
	if inventory < 0 && q.BidSize > inventory-math.MinInt64 {
		return true
	}
	return false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
