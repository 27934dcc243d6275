package strategy

import "mm_game/internal/domain"

// DefaultSize is the per-leg size quoted by SimpleMarketMaker.
const DefaultSize = 100

// SimpleMarketMaker re-quotes yesterday's market prices with a fixed size.
// Competitors are expected to replace it.
type SimpleMarketMaker struct {
	size int64
}

// NewSimpleMarketMaker creates a SimpleMarketMaker. A non-positive size
// falls back to DefaultSize.
func NewSimpleMarketMaker(size int64) *SimpleMarketMaker {
	return &SimpleMarketMaker{size: sizeOrDefault(size)}
}

func sizeOrDefault(size int64) int64 {
	if size <= 0 {
		return DefaultSize
	}
	return size
}

func (s *SimpleMarketMaker) Update(prevBuy, prevSell float64) domain.Quote {
	return domain.Quote{
		BidPrice: prevBuy,
		BidSize:  s.size,
		AskPrice: prevSell,
		AskSize:  s.size,
	}
}

// FixedQuote returns the same quote every day.
type FixedQuote struct {
	Quote domain.Quote
}

func (f FixedQuote) Update(_, _ float64) domain.Quote {
	return f.Quote
}
