package engine

import (
	"context"
	"testing"

	"mm_game/internal/domain"
	"mm_game/internal/execution"
	"mm_game/internal/market"
	"mm_game/internal/strategy"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// drawQuote draws a quote with tick-sized prices so decimals stay exact.
func drawQuote(t *rapid.T, label string) domain.Quote {
	return domain.Quote{
		BidPrice: float64(rapid.IntRange(1, 20000).Draw(t, label+"_bid")) / 100,
		BidSize:  rapid.Int64Range(0, 1000).Draw(t, label+"_bid_size"),
		AskPrice: float64(rapid.IntRange(1, 20000).Draw(t, label+"_ask")) / 100,
		AskSize:  rapid.Int64Range(0, 1000).Draw(t, label+"_ask_size"),
	}
}

func drawMatcher(t *rapid.T) execution.Matcher {
	switch rapid.IntRange(0, 2).Draw(t, "policy") {
	case 0:
		return execution.AlwaysFill{}
	case 1:
		return execution.NewProbabilistic(rapid.Float64Range(0, 1).Draw(t, "p"), rapid.Int64().Draw(t, "match_seed"))
	default:
		return execution.PriceCross{}
	}
}

func TestProperty_ZeroQuoteNeverTrades(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		days := rapid.IntRange(1, 30).Draw(t, "days")
		seed := rapid.Int64().Draw(t, "seed")

		sim, err := NewSimulator(Config{TotalDays: days, InitialPrice: decimal.NewFromInt(100), AllowShort: true},
			strategy.FixedQuote{Quote: domain.Quote{BidPrice: 1, AskPrice: 1000}},
			market.NewRandomWalk(100, 0.05, 0.01, seed), drawMatcher(t))
		if err != nil {
			t.Fatal(err)
		}

		res, err := sim.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Fills) != 0 || res.FinalInventory != 0 || !res.FinalCash.IsZero() {
			t.Fatalf("zero-size quotes traded: %+v", res)
		}
	})
}

func TestProperty_FillsUpdateBookConsistently(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		days := rapid.IntRange(1, 20).Draw(t, "days")
		quotes := make([]domain.Quote, days)
		for i := range quotes {
			quotes[i] = drawQuote(t, "q")
		}
		day := 0
		strat := strategy.Func(func(_, _ float64) domain.Quote {
			q := quotes[day]
			day++
			return q
		})

		var prevInv int64
		prevCash := decimal.Zero
		var recs []domain.DayRecord

		sim, err := NewSimulator(Config{
			TotalDays:    days,
			InitialPrice: decimal.NewFromInt(100),
			AllowShort:   true,
			OnDay:        func(rec domain.DayRecord) { recs = append(recs, rec) },
		}, strat, market.NewRandomWalk(100, 0.02, 0.002, 1), drawMatcher(t))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := sim.Run(context.Background()); err != nil {
			t.Fatal(err)
		}

		for _, rec := range recs {
			inv, cash := prevInv, prevCash
			for _, f := range rec.Fills {
				switch f.Side {
				case domain.SideBuy:
					inv += f.Size
					cash = cash.Sub(f.Notional())
				case domain.SideSell:
					inv -= f.Size
					cash = cash.Add(f.Notional())
				}
			}
			if inv != rec.Inventory || !cash.Equal(rec.Cash) {
				t.Fatalf("day %d: book drifted: expected inv=%d cash=%s, got inv=%d cash=%s",
					rec.Day, inv, cash, rec.Inventory, rec.Cash)
			}
			if rec.Fault != "" && len(rec.Fills) != 0 {
				t.Fatalf("day %d: faulty quote traded", rec.Day)
			}
			prevInv, prevCash = rec.Inventory, rec.Cash
		}
	})
}

func TestProperty_CrossedQuoteNeverAborts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ask := rapid.Float64Range(1, 100).Draw(t, "ask")
		bid := ask + rapid.Float64Range(0.01, 50).Draw(t, "gap")
		size := rapid.Int64Range(1, 100).Draw(t, "size")
		days := rapid.IntRange(1, 10).Draw(t, "days")

		sim, err := NewSimulator(Config{TotalDays: days, InitialPrice: decimal.NewFromInt(100), AllowShort: true},
			strategy.FixedQuote{Quote: domain.Quote{BidPrice: bid, BidSize: size, AskPrice: ask, AskSize: size}},
			&market.Constant{Price: 100}, drawMatcher(t))
		if err != nil {
			t.Fatal(err)
		}

		res, err := sim.Run(context.Background())
		if err != nil || res.Failed {
			t.Fatalf("crossed quote aborted the run: %v", err)
		}
		if res.FaultCount() != days || len(res.Fills) != 0 {
			t.Fatalf("expected %d faults and no fills, got %d faults %d fills", days, res.FaultCount(), len(res.Fills))
		}
	})
}

func TestProperty_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		days := rapid.IntRange(1, 50).Draw(t, "days")
		p := rapid.Float64Range(0, 1).Draw(t, "p")

		run := func() *domain.RunResult {
			sim, err := NewSimulator(Config{TotalDays: days, InitialPrice: decimal.NewFromInt(100), AllowShort: true},
				strategy.NewSpreadMaker(5, 10, 0.1, 1),
				market.NewRandomWalk(100, 0.02, 0.002, seed),
				execution.NewProbabilistic(p, seed))
			if err != nil {
				t.Fatal(err)
			}
			res, err := sim.Run(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			return res
		}

		a, b := run(), run()
		if len(a.Fills) != len(b.Fills) {
			t.Fatalf("fill logs differ in length: %d vs %d", len(a.Fills), len(b.Fills))
		}
		for i := range a.Fills {
			fa, fb := a.Fills[i], b.Fills[i]
			if fa.Day != fb.Day || fa.Side != fb.Side || fa.Size != fb.Size || !fa.Price.Equal(fb.Price) {
				t.Fatalf("fill %d differs: %+v vs %+v", i, fa, fb)
			}
		}
		if !a.FinalCash.Equal(b.FinalCash) || a.FinalInventory != b.FinalInventory || !a.MarkToMarketPnL.Equal(b.MarkToMarketPnL) {
			t.Fatal("final books differ")
		}
	})
}
