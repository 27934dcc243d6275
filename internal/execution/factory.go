package execution

import (
	"fmt"
	"log/slog"

	"mm_game/internal/infra"
)

const (
	PolicyAlways        = infra.PolicyAlways
	PolicyProbabilistic = infra.PolicyProbabilistic
	PolicyPriceCross    = infra.PolicyPriceCross
)

// MatcherFactory creates matching policies from configuration.
type MatcherFactory struct {
	config *infra.Config
}

// NewMatcherFactory creates a new factory
func NewMatcherFactory(cfg *infra.Config) *MatcherFactory {
	return &MatcherFactory{config: cfg}
}

// CreateMatcher returns the configured Matcher. Seeded policies get a fresh
// random stream on every call, so each simulator owns its own.
func (f *MatcherFactory) CreateMatcher() (Matcher, error) {
	sim := f.config.Simulation

	slog.Debug("Initializing matching policy", "policy", sim.MatchingPolicy)

	switch sim.MatchingPolicy {
	case PolicyAlways:
		return AlwaysFill{}, nil
	case PolicyProbabilistic:
		return NewProbabilistic(sim.FillProbability, sim.Seed), nil
	case PolicyPriceCross:
		return PriceCross{}, nil
	default:
		return nil, fmt.Errorf("unknown matching policy: %s", sim.MatchingPolicy)
	}
}
