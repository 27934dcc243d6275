package market

import (
	"context"
	"errors"
	"math"
	"testing"

	"mm_game/internal/domain"
	"mm_game/internal/infra"
)

func TestRandomWalk_Deterministic(t *testing.T) {
	a := NewRandomWalk(100, 0.02, 0.002, 42)
	b := NewRandomWalk(100, 0.02, 0.002, 42)

	for i := 0; i < 100; i++ {
		pa, _ := a.Next()
		pb, _ := b.Next()
		if pa != pb {
			t.Fatalf("Day %d: same seed diverged: %+v vs %+v", i, pa, pb)
		}
		if err := Check(pa); err != nil {
			t.Fatalf("Day %d: invalid prices: %v", i, err)
		}
		if pa.Buy > pa.Sell {
			t.Fatalf("Day %d: buy above sell: %+v", i, pa)
		}
	}
}

func TestRandomWalk_SeedMatters(t *testing.T) {
	a := NewRandomWalk(100, 0.02, 0, 1)
	b := NewRandomWalk(100, 0.02, 0, 2)
	pa, _ := a.Next()
	pb, _ := b.Next()
	if pa == pb {
		t.Error("Different seeds should produce different walks")
	}
}

func TestConstant(t *testing.T) {
	c := &Constant{Price: 100}
	p, err := c.Next()
	if err != nil || p.Buy != 100 || p.Sell != 100 {
		t.Errorf("Unexpected %+v, %v", p, err)
	}
}

func TestReplay_Exhausted(t *testing.T) {
	r := NewReplay([]Prices{{Buy: 1, Sell: 2}})
	if _, err := r.Next(); err != nil {
		t.Fatalf("First day should replay: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, domain.ErrSeriesExhausted) {
		t.Errorf("Expected ErrSeriesExhausted, got %v", err)
	}
}

type stubSeries map[string][]domain.PricePoint

func (s stubSeries) SavePriceSeries(_ context.Context, name string, pts []domain.PricePoint) error {
	s[name] = pts
	return nil
}

func (s stubSeries) LoadPriceSeries(_ context.Context, name string) ([]domain.PricePoint, error) {
	return s[name], nil
}

func TestLoadReplay(t *testing.T) {
	repo := stubSeries{"btc": {{Series: "btc", Day: 0, Buy: 99, Sell: 101}, {Series: "btc", Day: 1, Buy: 100, Sell: 102}}}

	r, err := LoadReplay(context.Background(), repo, "btc")
	if err != nil {
		t.Fatalf("LoadReplay failed: %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 points, got %d", r.Len())
	}

	if _, err := LoadReplay(context.Background(), repo, "missing"); err == nil {
		t.Error("Expected error for empty series")
	}
}

func TestCheck(t *testing.T) {
	if err := Check(Prices{Buy: math.NaN(), Sell: 1}); err == nil {
		t.Error("NaN should fail")
	}
	if err := Check(Prices{Buy: 1, Sell: -1}); err == nil {
		t.Error("Negative should fail")
	}
	if err := Check(Prices{Buy: 1, Sell: 1}); err != nil {
		t.Errorf("Valid prices failed: %v", err)
	}
}

func TestNewProcess(t *testing.T) {
	t.Run("inline replay", func(t *testing.T) {
		cfg := infra.DefaultConfig()
		cfg.Market.Process = infra.ProcessReplay
		cfg.Market.Prices = []infra.PricePointCfg{{Buy: 99, Sell: 100}}

		p, err := NewProcess(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("NewProcess failed: %v", err)
		}
		got, _ := p.Next()
		if got != (Prices{Buy: 99, Sell: 100}) {
			t.Errorf("Unexpected first day %+v", got)
		}
	})

	t.Run("stored replay without repo", func(t *testing.T) {
		cfg := infra.DefaultConfig()
		cfg.Market.Process = infra.ProcessReplay
		cfg.Market.Series = "btc"

		if _, err := NewProcess(context.Background(), cfg, nil); err == nil {
			t.Error("Expected error without a repository")
		}
	})

	t.Run("constant uses initial price", func(t *testing.T) {
		cfg := infra.DefaultConfig()
		cfg.Market.Process = infra.ProcessConstant

		p, _ := NewProcess(context.Background(), cfg, nil)
		got, _ := p.Next()
		if got.Buy != 100 || got.Sell != 100 {
			t.Errorf("Unexpected %+v", got)
		}
	})
}
