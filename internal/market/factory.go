package market

import (
	"context"
	"fmt"

	"mm_game/internal/domain"
	"mm_game/internal/infra"
)

// NewProcess builds the configured market process. repo is only consulted
// for a stored replay series and may be nil otherwise.
func NewProcess(ctx context.Context, cfg *infra.Config, repo domain.PriceSeriesRepository) (Process, error) {
	initial := cfg.Simulation.InitialPrice.InexactFloat64()

	switch cfg.Market.Process {
	case infra.ProcessConstant:
		return &Constant{Price: initial}, nil
	case infra.ProcessRandomWalk:
		return NewRandomWalk(initial, cfg.Market.Volatility, cfg.Market.Spread, cfg.Simulation.Seed), nil
	case infra.ProcessReplay:
		if len(cfg.Market.Prices) > 0 {
			points := make([]Prices, len(cfg.Market.Prices))
			for i, p := range cfg.Market.Prices {
				points[i] = Prices{Buy: p.Buy, Sell: p.Sell}
			}
			return NewReplay(points), nil
		}
		if repo == nil {
			return nil, fmt.Errorf("replay series %q requested without a price store", cfg.Market.Series)
		}
		return LoadReplay(ctx, repo, cfg.Market.Series)
	default:
		return nil, fmt.Errorf("unknown market process: %s", cfg.Market.Process)
	}
}
