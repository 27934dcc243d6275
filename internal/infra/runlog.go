package infra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mm_game/internal/domain"
)

// RunLog is the append-only, one-record-per-day artifact of a single run.
// Records are JSON lines written through a dedicated slog handler.
type RunLog struct {
	logger *slog.Logger
	closer io.Closer
	path   string
}

// OpenRunLog creates <dir>/<YYYYMMDD_HHMMSS>_<runID>.log.
func OpenRunLog(dir string, start time.Time, runID string) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", start.Format("20060102_150405"), runID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	rl := NewRunLog(f)
	rl.closer = f
	rl.path = path
	return rl, nil
}

// NewRunLog writes records to w (tests, stdout).
func NewRunLog(w io.Writer) *RunLog {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Records are ordered by day; wall time only adds noise to diffs.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return &RunLog{logger: slog.New(h)}
}

// Path returns the file path, or "" when not file-backed.
func (l *RunLog) Path() string {
	return l.path
}

// Start writes the header record.
func (l *RunLog) Start(runID, strategy string, start time.Time, initial float64) {
	l.logger.Info("simulation start",
		slog.String("run_id", runID),
		slog.String("strategy", strategy),
		slog.Time("start_time", start),
		slog.Float64("initial_price", initial))
}

// Day writes one day record. A faulty day is written at WARN.
func (l *RunLog) Day(rec domain.DayRecord) {
	level := slog.LevelInfo
	if rec.Fault != "" {
		level = slog.LevelWarn
	}

	fills := make([]any, 0, len(rec.Fills))
	for _, f := range rec.Fills {
		fills = append(fills, map[string]any{
			"side":  f.Side,
			"price": f.Price.String(),
			"size":  f.Size,
		})
	}

	attrs := []slog.Attr{
		slog.Int("day", rec.Day),
		slog.Float64("prev_buy", rec.PrevBuy),
		slog.Float64("prev_sell", rec.PrevSell),
		slog.Float64("bid", rec.Quote.BidPrice),
		slog.Int64("bid_size", rec.Quote.BidSize),
		slog.Float64("ask", rec.Quote.AskPrice),
		slog.Int64("ask_size", rec.Quote.AskSize),
		slog.Any("fills", fills),
		slog.Int64("inventory", rec.Inventory),
		slog.String("cash", rec.Cash.String()),
	}
	if rec.Fault != "" {
		attrs = append(attrs, slog.String("fault", rec.Fault))
	}

	l.logger.LogAttrs(context.Background(), level, "day", attrs...)
}

// Warn writes a free-form warning (clipped sells and similar).
func (l *RunLog) Warn(day int, msg string) {
	l.logger.Warn(msg, slog.Int("day", day))
}

// Finish writes the summary record.
func (l *RunLog) Finish(res *domain.RunResult) {
	level := slog.LevelInfo
	if res.Failed {
		level = slog.LevelError
	}
	l.logger.LogAttrs(context.Background(), level, "simulation end",
		slog.Int("days", res.Days),
		slog.String("final_cash", res.FinalCash.String()),
		slog.Int64("final_inventory", res.FinalInventory),
		slog.String("mtm_pnl", res.MarkToMarketPnL.String()),
		slog.Int("strategy_faults", res.FaultCount()),
		slog.Bool("partial", res.Partial),
		slog.Bool("failed", res.Failed),
		slog.String("error", res.Err))
}

// Close closes the underlying file, if any.
func (l *RunLog) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
