package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPosition_Apply(t *testing.T) {
	t.Run("buy adds inventory and pays cash", func(t *testing.T) {
		p := NewPosition(decimal.Zero)
		p.Apply(FillRecord{Day: 0, Side: SideBuy, Price: decimal.NewFromInt(101), Size: 10})

		if p.Inventory != 10 {
			t.Errorf("Expected inventory 10, got %d", p.Inventory)
		}
		if !p.Cash.Equal(decimal.NewFromInt(-1010)) {
			t.Errorf("Expected cash -1010, got %s", p.Cash)
		}
	})

	t.Run("sell removes inventory and receives cash", func(t *testing.T) {
		p := NewPosition(decimal.Zero)
		p.Apply(FillRecord{Day: 0, Side: SideSell, Price: decimal.NewFromInt(99), Size: 10})

		if p.Inventory != -10 {
			t.Errorf("Expected inventory -10, got %d", p.Inventory)
		}
		if !p.Cash.Equal(decimal.NewFromInt(990)) {
			t.Errorf("Expected cash 990, got %s", p.Cash)
		}
	})

	t.Run("fractional prices stay exact", func(t *testing.T) {
		p := NewPosition(decimal.Zero)
		for i := 0; i < 10; i++ {
			p.Apply(FillRecord{Day: i, Side: SideSell, Price: decimal.NewFromFloat(0.1), Size: 1})
		}
		if !p.Cash.Equal(decimal.NewFromInt(1)) {
			t.Errorf("Expected cash exactly 1, got %s", p.Cash)
		}
		if p.LastDay != 9 {
			t.Errorf("Expected LastDay 9, got %d", p.LastDay)
		}
	})

	t.Run("unknown side panics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Apply should panic on unknown side")
			}
		}()
		NewPosition(decimal.Zero).Apply(FillRecord{Side: "HOLD", Size: 1})
	})
}

func TestPosition_MarkToMarket(t *testing.T) {
	p := &Position{Inventory: 5, Cash: decimal.NewFromInt(-480)}
	got := p.MarkToMarket(decimal.NewFromInt(100))
	if !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Expected 20, got %s", got)
	}
}

func TestPosition_ApplyOverflowPanics(t *testing.T) {
	cases := map[string]struct {
		start int64
		fill  FillRecord
	}{
		"buy":  {start: math.MaxInt64 - 1, fill: FillRecord{Side: SideBuy, Price: decimal.NewFromInt(1), Size: 2}},
		"sell": {start: math.MinInt64 + 1, fill: FillRecord{Side: SideSell, Price: decimal.NewFromInt(1), Size: 2}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := NewPosition(decimal.Zero)
			p.Inventory = tc.start
			defer func() {
				if r := recover(); r == nil {
					t.Error("Apply should panic instead of wrapping inventory")
				}
				if p.Inventory != tc.start {
					t.Errorf("Inventory changed to %d", p.Inventory)
				}
			}()
			p.Apply(tc.fill)
		})
	}
}
