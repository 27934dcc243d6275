package domain

import (
	"github.com/shopspring/decimal"
)

// DayRecord is one row of the per-run day log.
type DayRecord struct {
	Day       int             `json:"day"`
	PrevBuy   float64         `json:"prev_buy"`
	PrevSell  float64         `json:"prev_sell"`
	Quote     Quote           `json:"quote"`
	Fills     []FillRecord    `json:"fills"`
	Inventory int64           `json:"inventory"`
	Cash      decimal.Decimal `json:"cash"`
	Fault     string          `json:"fault,omitempty"`
}

// RunResult is computed once, when the simulator reaches its terminal state.
type RunResult struct {
	RunID           string          `json:"run_id"`
	Strategy        string          `json:"strategy"`
	Days            int             `json:"days"` // Days actually simulated
	FinalCash       decimal.Decimal `json:"final_cash"`
	FinalInventory  int64           `json:"final_inventory"`
	MarkPrice       decimal.Decimal `json:"mark_price"`
	MarkToMarketPnL decimal.Decimal `json:"mtm_pnl"`
	Fills           []FillRecord    `json:"fills"`
	StrategyFaults  []StrategyFault `json:"strategy_faults"`

	// Partial is set when a cutoff stopped the run before TotalDays.
	Partial bool `json:"partial"`
	// Failed is set on a fatal MarketDataFault; FailedDay is the offending day.
	Failed    bool   `json:"failed"`
	FailedDay int    `json:"failed_day"`
	Err       string `json:"error,omitempty"`
}

// FaultCount returns the number of recovered strategy faults.
func (r *RunResult) FaultCount() int {
	return len(r.StrategyFaults)
}
