// Package market generates the counter-market's daily buy/sell prices.
// Every process is deterministic for a fixed seed or data set.
package market

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"mm_game/internal/domain"
)

// Prices is one day of market-clearing prices.
type Prices struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// Mid returns the midpoint of buy and sell.
func (p Prices) Mid() float64 {
	return (p.Buy + p.Sell) / 2
}

// Process yields the next day's market prices.
// A returned error is always treated as a fatal market data fault.
type Process interface {
	Next() (Prices, error)
	Name() string
}

const (
	ProcessConstant   = "constant"
	ProcessRandomWalk = "random_walk"
	ProcessReplay     = "replay"
)

// Constant keeps buy and sell pinned to one price.
type Constant struct {
	Price float64
}

func (c *Constant) Next() (Prices, error) {
	return Prices{Buy: c.Price, Sell: c.Price}, nil
}

func (c *Constant) Name() string { return ProcessConstant }

// RandomWalk is a seeded geometric random walk of the mid price.
// Market buy/sell sit half a spread below/above the mid.
type RandomWalk struct {
	mid        float64
	volatility float64 // Daily log-return standard deviation
	spread     float64 // Relative spread (0.002 = 20bps)
	rng        *rand.Rand
}

// NewRandomWalk creates a walk starting at initial.
func NewRandomWalk(initial, volatility, spread float64, seed int64) *RandomWalk {
	return &RandomWalk{
		mid:        initial,
		volatility: volatility,
		spread:     spread,
		rng:        rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

func (w *RandomWalk) Next() (Prices, error) {
	w.mid *= math.Exp(w.volatility * w.rng.NormFloat64())
	half := w.mid * w.spread / 2
	return Prices{Buy: w.mid - half, Sell: w.mid + half}, nil
}

func (w *RandomWalk) Name() string { return ProcessRandomWalk }

// Replay yields a recorded price series day by day.
type Replay struct {
	points []Prices
	next   int
}

// NewReplay replays points in order.
func NewReplay(points []Prices) *Replay {
	return &Replay{points: points}
}

// LoadReplay loads a stored series through repo.
func LoadReplay(ctx context.Context, repo domain.PriceSeriesRepository, series string) (*Replay, error) {
	rows, err := repo.LoadPriceSeries(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("failed to load price series %q: %w", series, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("price series %q is empty", series)
	}
	points := make([]Prices, len(rows))
	for i, r := range rows {
		points[i] = Prices{Buy: r.Buy, Sell: r.Sell}
	}
	return NewReplay(points), nil
}

func (r *Replay) Next() (Prices, error) {
	if r.next >= len(r.points) {
		return Prices{}, domain.ErrSeriesExhausted
	}
	p := r.points[r.next]
	r.next++
	return p, nil
}

func (r *Replay) Name() string { return ProcessReplay }

// Len returns the number of days in the series.
func (r *Replay) Len() int {
	return len(r.points)
}

// Check validates one day of prices from any process.
func Check(p Prices) error {
	if math.IsNaN(p.Buy) || math.IsInf(p.Buy, 0) || math.IsNaN(p.Sell) || math.IsInf(p.Sell, 0) {
		return fmt.Errorf("non-finite price: buy=%v sell=%v", p.Buy, p.Sell)
	}
	if p.Buy <= 0 || p.Sell <= 0 {
		return fmt.Errorf("non-positive price: buy=%v sell=%v", p.Buy, p.Sell)
	}
	return nil
}
