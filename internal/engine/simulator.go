package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"mm_game/internal/domain"
	"mm_game/internal/execution"
	"mm_game/internal/infra"
	"mm_game/internal/market"
	"mm_game/internal/strategy"

	"github.com/shopspring/decimal"
)

// State is the simulator lifecycle: NotStarted -> Running -> Finished.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateRunning:
		return "RUNNING"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Config holds everything one run needs besides its components.
type Config struct {
	RunID        string
	StrategyName string
	TotalDays    int
	InitialPrice decimal.Decimal
	AllowShort   bool
	MaxWallClock time.Duration // 0 = unlimited

	// Optional collaborators
	RunLog  *infra.RunLog
	Metrics *infra.Metrics
	OnDay   func(domain.DayRecord)
	Clock   func() time.Time
}

// Simulator owns the day-by-day loop and all mutable run state.
// A Simulator runs once; build a new one for every strategy under evaluation.
type Simulator struct {
	cfg      Config
	strategy strategy.Strategy
	process  market.Process
	matcher  execution.Matcher

	state    State
	market   domain.MarketState
	position *domain.Position
	fills    []domain.FillRecord
	faults   []domain.StrategyFault
	result   *domain.RunResult

	mu sync.RWMutex // Used only for external reads (e.g. report server)
}

// NewSimulator validates the configuration and creates a simulator in the
// NotStarted state. Invalid input is a *domain.ConfigError and no day is run.
func NewSimulator(cfg Config, strat strategy.Strategy, process market.Process, matcher execution.Matcher) (*Simulator, error) {
	if cfg.TotalDays <= 0 {
		return nil, domain.NewConfigError("total_days", "must be positive, got %d", cfg.TotalDays)
	}
	if !cfg.InitialPrice.IsPositive() {
		return nil, domain.NewConfigError("initial_price", "must be positive, got %s", cfg.InitialPrice)
	}
	if cfg.MaxWallClock < 0 {
		return nil, domain.NewConfigError("max_wall_clock", "must not be negative")
	}
	if strat == nil {
		return nil, domain.NewConfigError("strategy", "is required")
	}
	if process == nil {
		return nil, domain.NewConfigError("market", "process is required")
	}
	if matcher == nil {
		return nil, domain.NewConfigError("matching_policy", "matcher is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	initial := cfg.InitialPrice.InexactFloat64()
	return &Simulator{
		cfg:      cfg,
		strategy: strat,
		process:  process,
		matcher:  matcher,
		state:    StateNotStarted,
		market:   domain.MarketState{PrevBuy: initial, PrevSell: initial, Day: 0},
		position: domain.NewPosition(decimal.Zero),
	}, nil
}

// AttachRunLog sets the day log. It has no effect once the run has started.
func (s *Simulator) AttachRunLog(l *infra.RunLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNotStarted {
		s.cfg.RunLog = l
	}
}

// Run simulates up to TotalDays days. It stops early, with a partial result,
// when ctx is done or the wall-clock budget is spent; both are checked once
// per day boundary. A market data fault aborts the run: the failed result is
// returned together with the *domain.MarketDataFault.
func (s *Simulator) Run(ctx context.Context) (res *domain.RunResult, err error) {
	s.mu.Lock()
	switch s.state {
	case StateRunning:
		s.mu.Unlock()
		return nil, domain.ErrSimulatorRunning
	case StateFinished:
		s.mu.Unlock()
		return nil, domain.ErrSimulatorFinished
	}
	s.state = StateRunning
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.String("run_id", s.cfg.RunID), slog.Any("panic", r))
			s.DumpState(fmt.Sprintf("panic_dump_%s.json", s.cfg.RunID))
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RunStarted()
	}
	start := s.cfg.Clock()
	if s.cfg.RunLog != nil {
		s.cfg.RunLog.Start(s.cfg.RunID, s.cfg.StrategyName, start, s.cfg.InitialPrice.InexactFloat64())
	}

	partial := false
	failedDay := -1
	for day := 0; day < s.cfg.TotalDays; day++ {
		if s.cutoff(ctx, start) {
			partial = true
			slog.Info("Simulation cut off early", slog.String("run_id", s.cfg.RunID), slog.Int("day", day))
			break
		}
		if err = s.step(day); err != nil {
			failedDay = day
			break
		}
	}

	return s.finish(partial, failedDay, err), err
}

func (s *Simulator) cutoff(ctx context.Context, start time.Time) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.cfg.MaxWallClock > 0 && s.cfg.Clock().Sub(start) >= s.cfg.MaxWallClock
}

// step simulates a single day. Only Run calls it, while Running.
func (s *Simulator) step(day int) error {
	switch s.state {
	case StateNotStarted:
		return domain.ErrSimulatorNotStarted
	case StateFinished:
		return domain.ErrSimulatorFinished
	}
	began := time.Now()

	// 1. Market data check (Halt Policy)
	if !s.market.Valid() {
		return s.marketFault(day, fmt.Sprintf("invalid previous prices: buy=%v sell=%v", s.market.PrevBuy, s.market.PrevSell), nil)
	}

	// 2. Strategy quote, validated
	submitted, reason := s.quote()
	if reason == "" && submitted.OverflowsInventory(s.position.Inventory) {
		reason = fmt.Sprintf("size would overflow inventory %d: bid_size=%d ask_size=%d",
			s.position.Inventory, submitted.BidSize, submitted.AskSize)
	}
	effective := submitted
	rec := domain.DayRecord{Day: day, PrevBuy: s.market.PrevBuy, PrevSell: s.market.PrevSell}
	if reason != "" {
		fault := domain.StrategyFault{Day: day, Reason: reason, Quote: submitted}
		s.faults = append(s.faults, fault)
		effective = domain.ZeroQuote
		rec.Fault = reason
		slog.Warn("STRATEGY_FAULT", slog.String("run_id", s.cfg.RunID), slog.Int("day", day), slog.String("reason", reason))
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RecordStrategyFault()
		}
	}
	rec.Quote = effective

	// 3. Today's market
	prices, err := s.process.Next()
	if err != nil {
		return s.marketFault(day, "market process failed", err)
	}
	if err := market.Check(prices); err != nil {
		return s.marketFault(day, err.Error(), nil)
	}

	// 4. Matching + booking
	fills := s.matcher.Match(day, effective, prices)

	s.mu.Lock()
	for _, f := range fills {
		if f.Side == domain.SideSell && !s.cfg.AllowShort {
			f = s.clipSell(f)
			if f.Size == 0 {
				continue
			}
		}
		s.position.Apply(f)
		s.fills = append(s.fills, f)
		rec.Fills = append(rec.Fills, f)
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.RecordFill(string(f.Side))
		}
	}

	// 5. Advance market state
	s.market = domain.MarketState{PrevBuy: prices.Buy, PrevSell: prices.Sell, Day: day + 1}
	rec.Inventory = s.position.Inventory
	rec.Cash = s.position.Cash
	s.mu.Unlock()

	if s.cfg.RunLog != nil {
		s.cfg.RunLog.Day(rec)
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordDay(time.Since(began).Nanoseconds())
	}
	if s.cfg.OnDay != nil {
		s.cfg.OnDay(rec)
	}
	return nil
}

// quote calls the strategy. A panicking strategy is a strategy fault.
func (s *Simulator) quote() (q domain.Quote, reason string) {
	defer func() {
		if r := recover(); r != nil {
			q = domain.ZeroQuote
			reason = fmt.Sprintf("strategy panic: %v", r)
		}
	}()
	q = s.strategy.Update(s.market.PrevBuy, s.market.PrevSell)
	return q, q.Validate()
}

// clipSell limits a sell to the inventory held. Caller holds s.mu.
func (s *Simulator) clipSell(f domain.FillRecord) domain.FillRecord {
	held := s.position.Inventory
	if held < 0 {
		held = 0
	}
	if f.Size <= held {
		return f
	}
	msg := fmt.Sprintf("selling %d with %d held, clipping to holding", f.Size, held)
	slog.Debug("SELL_CLIPPED", slog.String("run_id", s.cfg.RunID), slog.Int("day", f.Day), slog.Int64("requested", f.Size), slog.Int64("held", held))
	if s.cfg.RunLog != nil {
		s.cfg.RunLog.Warn(f.Day, msg)
	}
	f.Size = held
	return f
}

func (s *Simulator) marketFault(day int, reason string, cause error) error {
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RecordMarketFault()
	}
	return &domain.MarketDataFault{Day: day, Reason: reason, Err: cause}
}

// finish enters the terminal state. It runs exactly once per simulator.
func (s *Simulator) finish(partial bool, failedDay int, runErr error) *domain.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	mark := decimal.NewFromFloat(s.market.PrevSell)
	if !s.market.Valid() {
		mark = s.cfg.InitialPrice
	}

	res := &domain.RunResult{
		RunID:           s.cfg.RunID,
		Strategy:        s.cfg.StrategyName,
		Days:            s.market.Day,
		FinalCash:       s.position.Cash,
		FinalInventory:  s.position.Inventory,
		MarkPrice:       mark,
		MarkToMarketPnL: s.position.MarkToMarket(mark),
		Fills:           append([]domain.FillRecord(nil), s.fills...),
		StrategyFaults:  append([]domain.StrategyFault(nil), s.faults...),
		Partial:         partial,
	}
	if runErr != nil {
		res.Failed = true
		res.FailedDay = failedDay
		res.Err = runErr.Error()
	}

	s.result = res
	s.state = StateFinished

	if s.cfg.RunLog != nil {
		s.cfg.RunLog.Finish(res)
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.RunFinished(res.Failed)
	}
	return res
}

// State returns the lifecycle state (external read).
func (s *Simulator) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Result returns the final result once the simulator has finished.
func (s *Simulator) Result() (*domain.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateFinished {
		return nil, domain.ErrNotFinished
	}
	return s.result, nil
}

// Position returns a snapshot of the book (external read).
func (s *Simulator) Position() domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position.Snapshot()
}

// MarketState returns the prices the strategy will see next (external read).
func (s *Simulator) MarketState() domain.MarketState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.market
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Simulator) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		RunID    string                 `json:"run_id"`
		State    string                 `json:"state"`
		Market   domain.MarketState     `json:"market"`
		Position domain.Position        `json:"position"`
		Fills    []domain.FillRecord    `json:"fills"`
		Faults   []domain.StrategyFault `json:"faults"`
	}{
		RunID:    s.cfg.RunID,
		State:    s.state.String(),
		Market:   s.market,
		Position: *s.position,
		Fills:    s.fills,
		Faults:   s.faults,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
