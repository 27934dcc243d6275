package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mm_game/internal/domain"
	"mm_game/internal/engine"
	"mm_game/internal/execution"
	"mm_game/internal/infra"
	"mm_game/internal/infra/storage"
	"mm_game/internal/market"
	"mm_game/internal/strategy"

	"github.com/google/uuid"
)

// RunService builds an independent simulator per strategy, runs it and
// archives the outcome.
type RunService struct {
	cfg     *infra.Config
	runs    domain.RunRepository         // nil disables archiving
	series  domain.PriceSeriesRepository // nil unless replaying a stored series
	metrics *infra.Metrics
	newID   func() string
}

// NewRunService creates a RunService. runs and series may be nil.
func NewRunService(cfg *infra.Config, runs domain.RunRepository, series domain.PriceSeriesRepository, metrics *infra.Metrics) *RunService {
	return &RunService{
		cfg:     cfg,
		runs:    runs,
		series:  series,
		metrics: metrics,
		newID:   uuid.NewString,
	}
}

// Run evaluates one strategy under the service configuration.
// The returned error is non-nil only for fatal faults; the result is
// returned whenever the simulator got to run.
func (s *RunService) Run(ctx context.Context, name string, strat strategy.Strategy) (*domain.RunResult, error) {
	runID := s.newID()
	sim := s.cfg.Simulation

	process, err := market.NewProcess(ctx, s.cfg, s.series)
	if err != nil {
		return nil, &domain.ConfigError{Field: "market", Err: err}
	}
	matcher, err := execution.NewMatcherFactory(s.cfg).CreateMatcher()
	if err != nil {
		return nil, &domain.ConfigError{Field: "simulation.matching_policy", Err: err}
	}

	simCfg := engine.Config{
		RunID:        runID,
		StrategyName: name,
		TotalDays:    sim.TotalDays,
		InitialPrice: sim.InitialPrice,
		AllowShort:   s.cfg.ShortSellingAllowed(),
		MaxWallClock: sim.MaxWallClock,
		Metrics:      s.metrics,
	}

	simulator, err := engine.NewSimulator(simCfg, strat, process, matcher)
	if err != nil {
		return nil, err
	}

	var runLog *infra.RunLog
	if s.cfg.Logging.Dir != "" {
		runLog, err = infra.OpenRunLog(s.cfg.Logging.Dir, time.Now(), runID)
		if err != nil {
			return nil, &domain.ConfigError{Field: "logging.dir", Err: err}
		}
		defer runLog.Close()
		simulator.AttachRunLog(runLog)
	}

	slog.InfoContext(ctx, "▶️ Run started",
		slog.String("run_id", runID),
		slog.String("strategy", name),
		slog.Int("days", sim.TotalDays),
		slog.Int64("seed", sim.Seed),
		slog.String("policy", matcher.Name()),
		slog.String("market", process.Name()))

	res, runErr := simulator.Run(ctx)

	if s.runs != nil {
		meta := storage.RunMeta{
			Seed:           sim.Seed,
			MatchingPolicy: matcher.Name(),
			MarketProcess:  process.Name(),
			TotalDays:      sim.TotalDays,
		}
		if runLog != nil {
			meta.LogPath = runLog.Path()
		}
		if err := s.runs.SaveRun(ctx, storage.RecordFromResult(res, meta)); err != nil {
			slog.Error("Failed to archive run", slog.String("run_id", runID), slog.Any("error", err))
		}
	}

	if runErr != nil {
		return res, fmt.Errorf("run %s aborted: %w", runID, runErr)
	}
	return res, nil
}

// RunAll evaluates each strategy on its own simulator. Strategies never share
// state; a fatal fault in one run does not stop the others.
func (s *RunService) RunAll(ctx context.Context, strategies map[string]strategy.Strategy, order []string) ([]*domain.RunResult, error) {
	results := make([]*domain.RunResult, 0, len(order))
	var firstErr error
	for _, name := range order {
		strat, ok := strategies[name]
		if !ok {
			return results, domain.NewConfigError("strategy", "unknown strategy %q", name)
		}
		res, err := s.Run(ctx, name, strat)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if res != nil {
			results = append(results, res)
		}
	}
	return results, firstErr
}
