package domain

import (
	"errors"
	"fmt"
)

// StrategyFault is a quote the simulator refused to trade.
// It is recovered locally: that day becomes a no-trade day.
type StrategyFault struct {
	Day    int    `json:"day"`
	Reason string `json:"reason"`
	Quote  Quote  `json:"quote"`
}

func (e *StrategyFault) Error() string {
	return fmt.Sprintf("strategy fault on day %d: %s", e.Day, e.Reason)
}

// MarketDataFault is missing or corrupt market data. Always fatal.
type MarketDataFault struct {
	Day    int
	Reason string
	Err    error
}

func (e *MarketDataFault) Error() string {
	msg := fmt.Sprintf("market data fault on day %d: %s", e.Day, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MarketDataFault) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error, raised before any day runs.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError is shorthand for a ConfigError with a formatted cause.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether err must abort a run.
func IsFatal(err error) bool {
	var md *MarketDataFault
	var ce *ConfigError
	return errors.As(err, &md) || errors.As(err, &ce)
}

var (
	// ErrSimulatorRunning is returned when Run is called on a running simulator.
	ErrSimulatorRunning = errors.New("simulator already running")

	// ErrSimulatorNotStarted is returned when a day is stepped outside Run.
	ErrSimulatorNotStarted = errors.New("simulator not started")

	// ErrSimulatorFinished is returned when Run is called after the terminal state.
	ErrSimulatorFinished = errors.New("simulator already finished")

	// ErrNotFinished is returned when a result is requested before the run ends.
	ErrNotFinished = errors.New("simulator has not finished")

	// ErrSeriesExhausted is returned by a replayed market once its data runs out.
	ErrSeriesExhausted = errors.New("price series exhausted")

	// ErrRunNotFound is returned when an archived run does not exist.
	ErrRunNotFound = errors.New("run not found")
)
