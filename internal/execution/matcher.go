package execution

import (
	"math/rand/v2"

	"mm_game/internal/domain"
	"mm_game/internal/market"

	"github.com/shopspring/decimal"
)

// Matcher decides which legs of a validated quote trade against the
// counter-market on a given day.
//
// The bid leg trades as a SELL at the bid price and the ask leg as a BUY at
// the ask price. Buy fills are returned before sell fills.
type Matcher interface {
	Match(day int, q domain.Quote, mkt market.Prices) []domain.FillRecord
	Name() string
}

// AlwaysFill fills both legs in full at the quoted prices.
type AlwaysFill struct{}

func (AlwaysFill) Match(day int, q domain.Quote, _ market.Prices) []domain.FillRecord {
	return legs(day, q, true, true)
}

func (AlwaysFill) Name() string { return PolicyAlways }

// Probabilistic fills each live leg in full with probability P.
type Probabilistic struct {
	P   float64
	rng *rand.Rand
}

// NewProbabilistic creates a seeded matcher.
func NewProbabilistic(p float64, seed int64) *Probabilistic {
	return &Probabilistic{
		P:   p,
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1)),
	}
}

func (m *Probabilistic) Match(day int, q domain.Quote, _ market.Prices) []domain.FillRecord {
	// Always draw twice so the random stream does not depend on the quote.
	buy := m.rng.Float64() < m.P
	sell := m.rng.Float64() < m.P
	return legs(day, q, buy, sell)
}

func (m *Probabilistic) Name() string { return PolicyProbabilistic }

// PriceCross fills a leg when the day's market price crosses it:
// the ask leg (we buy) when the market sells at or below our ask, the bid
// leg (we sell) when the market buys at or above our bid.
type PriceCross struct{}

func (PriceCross) Match(day int, q domain.Quote, mkt market.Prices) []domain.FillRecord {
	return legs(day, q, mkt.Sell <= q.AskPrice, mkt.Buy >= q.BidPrice)
}

func (PriceCross) Name() string { return PolicyPriceCross }

func legs(day int, q domain.Quote, buy, sell bool) []domain.FillRecord {
	var fills []domain.FillRecord
	if buy && q.AskSize > 0 {
		fills = append(fills, domain.FillRecord{
			Day:   day,
			Side:  domain.SideBuy,
			Price: decimal.NewFromFloat(q.AskPrice),
			Size:  q.AskSize,
		})
	}
	if sell && q.BidSize > 0 {
		fills = append(fills, domain.FillRecord{
			Day:   day,
			Side:  domain.SideSell,
			Price: decimal.NewFromFloat(q.BidPrice),
			Size:  q.BidSize,
		})
	}
	return fills
}
