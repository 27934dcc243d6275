package strategy

import (
	"mm_game/internal/domain"
)

// Strategy is the interface that all market makers must implement.
// It is called synchronously by the Simulator, once per simulated day.
//
// A Strategy only sees the previous day's market prices. It may keep its own
// state across calls but must not validate its output: crossed or negative
// quotes are the Simulator's problem.
type Strategy interface {
	Update(prevBuy, prevSell float64) domain.Quote
}

// Func adapts a plain function to the Strategy interface.
type Func func(prevBuy, prevSell float64) domain.Quote

// Update calls f.
func (f Func) Update(prevBuy, prevSell float64) domain.Quote {
	return f(prevBuy, prevSell)
}

// Tuple adapts the four-value entry point (newBid, bidSize, newAsk, askSize).
func Tuple(f func(prevBuy, prevSell float64) (float64, int64, float64, int64)) Strategy {
	return Func(func(prevBuy, prevSell float64) domain.Quote {
		bid, bidSize, ask, askSize := f(prevBuy, prevSell)
		return domain.Quote{BidPrice: bid, BidSize: bidSize, AskPrice: ask, AskSize: askSize}
	})
}
