package engine

import (
	"context"
	"testing"

	"mm_game/internal/execution"
	"mm_game/internal/market"
	"mm_game/internal/strategy"

	"github.com/shopspring/decimal"
)

// BenchmarkSimulator_Run measures a full 1000-day run with the reference strategy.
func BenchmarkSimulator_Run(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sim, err := NewSimulator(Config{TotalDays: 1000, InitialPrice: decimal.NewFromInt(100), AllowShort: true},
			strategy.NewSpreadMaker(20, 10, 0.05, 1),
			market.NewRandomWalk(100, 0.01, 0.002, int64(i)),
			execution.PriceCross{})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := sim.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
