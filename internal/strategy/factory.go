package strategy

import (
	"fmt"

	"mm_game/internal/domain"
	"mm_game/internal/infra"
)

// Names accepted by New.
const (
	NameSimple = "simple"
	NameSpread = "spread"
	NameFixed  = "fixed"
)

// Names lists every strategy New can build.
var Names = []string{NameSimple, NameSpread, NameFixed}

// New builds a fresh strategy instance from configuration.
// Every call returns independent state.
func New(name string, cfg *infra.Config) (Strategy, error) {
	sc := cfg.Strategy
	switch name {
	case NameSimple:
		return NewSimpleMarketMaker(sc.Size), nil
	case NameSpread:
		if sc.Window <= 0 {
			return nil, fmt.Errorf("spread strategy needs a positive window, got %d", sc.Window)
		}
		return NewSpreadMaker(sc.Window, sc.Size, sc.MinHalfSpread, sc.VolMult), nil
	case NameFixed:
		// Brackets the opening price by min_half_spread on both sides.
		mid := cfg.Simulation.InitialPrice.InexactFloat64()
		return FixedQuote{Quote: domain.Quote{
			BidPrice: max(mid-sc.MinHalfSpread, 0),
			BidSize:  sizeOrDefault(sc.Size),
			AskPrice: mid + sc.MinHalfSpread,
			AskSize:  sizeOrDefault(sc.Size),
		}}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
}
