package domain

// MarketState is what the strategy sees: the previous day's market-clearing
// buy and sell prices.
type MarketState struct {
	PrevBuy  float64 `json:"prev_buy"`
	PrevSell float64 `json:"prev_sell"`
	Day      int     `json:"day"`
}

// Valid reports whether both prices are finite and positive.
func (m MarketState) Valid() bool {
	return isFinite(m.PrevBuy) && isFinite(m.PrevSell) && m.PrevBuy > 0 && m.PrevSell > 0
}
