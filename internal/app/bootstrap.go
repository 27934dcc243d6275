package app

import (
	"fmt"
	"log/slog"

	"mm_game/internal/infra"
	"mm_game/internal/infra/storage"
	"mm_game/internal/strategy"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage // nil when storage.path is empty
	Metrics *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{Metrics: infra.GlobalMetrics}
}

// Initialize loads configuration, installs the logger and opens the run archive.
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping mm_game...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	if cfg.Storage.Path == "" {
		slog.Info("ℹ️ Run archive disabled")
		return nil
	}
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open run archive: %w", err)
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))

	return nil
}

// Strategies builds one fresh strategy per name, in order. An empty list
// selects the configured strategy.name.
func (b *Bootstrap) Strategies(names []string) (map[string]strategy.Strategy, []string, error) {
	if len(names) == 0 {
		names = []string{b.Config.Strategy.Name}
	}

	built := make(map[string]strategy.Strategy, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := built[name]; dup {
			continue
		}
		s, err := strategy.New(name, b.Config)
		if err != nil {
			return nil, nil, err
		}
		built[name] = s
		order = append(order, name)
	}
	return built, order, nil
}

// Close releases the run archive.
func (b *Bootstrap) Close() {
	if b.Storage == nil {
		return
	}
	if err := b.Storage.Close(); err != nil {
		slog.Error("Failed to close database", slog.Any("error", err))
	}
}
