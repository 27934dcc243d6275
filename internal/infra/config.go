package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"mm_game/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Matching policies and market processes recognised by the configuration.
const (
	PolicyAlways        = "always"
	PolicyProbabilistic = "probabilistic"
	PolicyPriceCross    = "price_cross"

	ProcessConstant   = "constant"
	ProcessRandomWalk = "random_walk"
	ProcessReplay     = "replay"
)

// Config는 시뮬레이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 일부 값을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Simulation struct {
		TotalDays       int             `yaml:"total_days"`
		InitialPrice    decimal.Decimal `yaml:"initial_price"`
		Seed            int64           `yaml:"seed"`
		MatchingPolicy  string          `yaml:"matching_policy"`
		FillProbability float64         `yaml:"fill_probability"`
		AllowShort      *bool           `yaml:"allow_short"`
		MaxWallClock    time.Duration   `yaml:"max_wall_clock"` // 0 = no budget
	} `yaml:"simulation"`

	Market struct {
		Process    string          `yaml:"process"`
		Volatility float64         `yaml:"volatility"`
		Spread     float64         `yaml:"spread"`
		Series     string          `yaml:"series"`
		Prices     []PricePointCfg `yaml:"prices"`
	} `yaml:"market"`

	Strategy struct {
		Name          string  `yaml:"name"`
		Size          int64   `yaml:"size"`
		Window        int     `yaml:"window"`
		MinHalfSpread float64 `yaml:"min_half_spread"`
		VolMult       float64 `yaml:"vol_mult"`
	} `yaml:"strategy"`

	Storage struct {
		Path string `yaml:"path"` // Empty disables the run archive
	} `yaml:"storage"`

	Report struct {
		Addr string `yaml:"addr"` // cmd/report listener
	} `yaml:"report"`

	Metrics struct {
		Addr string `yaml:"addr"` // cmd/app /metrics listener; empty disables
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// PricePointCfg is one inline replay day.
type PricePointCfg struct {
	Buy  float64 `yaml:"buy"`
	Sell float64 `yaml:"sell"`
}

// DefaultConfig returns the game defaults: 60 days starting at 100.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "mm_game"
	cfg.Simulation.TotalDays = 60
	cfg.Simulation.InitialPrice = decimal.NewFromInt(100)
	cfg.Simulation.Seed = 1
	cfg.Simulation.MatchingPolicy = PolicyPriceCross
	cfg.Simulation.FillProbability = 0.5
	cfg.Market.Process = ProcessRandomWalk
	cfg.Market.Volatility = 0.01
	cfg.Market.Spread = 0.002
	cfg.Strategy.Name = "simple"
	cfg.Strategy.Window = 10
	cfg.Strategy.MinHalfSpread = 0.05
	cfg.Strategy.VolMult = 1
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "log"
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 기본값 위에 파싱합니다.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.ConfigError{Field: "path", Err: fmt.Errorf("%s: %w", path, err)}
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig, applies environment
// overrides and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &domain.ConfigError{Field: "yaml", Err: err}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ShortSellingAllowed reports the allow_short setting (default true).
func (c *Config) ShortSellingAllowed() bool {
	return c.Simulation.AllowShort == nil || *c.Simulation.AllowShort
}

// Validate checks configuration validity. Every failure is a *domain.ConfigError.
func (c *Config) Validate() error {
	sim := c.Simulation
	if sim.TotalDays <= 0 {
		return domain.NewConfigError("simulation.total_days", "must be positive, got %d", sim.TotalDays)
	}
	if !sim.InitialPrice.IsPositive() {
		return domain.NewConfigError("simulation.initial_price", "must be positive, got %s", sim.InitialPrice)
	}
	if sim.MaxWallClock < 0 {
		return domain.NewConfigError("simulation.max_wall_clock", "must not be negative")
	}

	switch sim.MatchingPolicy {
	case PolicyAlways, PolicyPriceCross:
	case PolicyProbabilistic:
		if sim.FillProbability < 0 || sim.FillProbability > 1 {
			return domain.NewConfigError("simulation.fill_probability", "must be in [0, 1], got %v", sim.FillProbability)
		}
	default:
		return domain.NewConfigError("simulation.matching_policy", "unknown policy %q", sim.MatchingPolicy)
	}

	switch c.Market.Process {
	case ProcessConstant:
	case ProcessRandomWalk:
		if c.Market.Volatility < 0 || c.Market.Spread < 0 {
			return domain.NewConfigError("market", "volatility and spread must not be negative")
		}
	case ProcessReplay:
		if c.Market.Series == "" && len(c.Market.Prices) == 0 {
			return domain.NewConfigError("market.series", "replay needs a series name or inline prices")
		}
		if c.Market.Series != "" && c.Storage.Path == "" {
			return domain.NewConfigError("storage.path", "replaying series %q needs a database", c.Market.Series)
		}
	default:
		return domain.NewConfigError("market.process", "unknown process %q", c.Market.Process)
	}

	if c.Metrics.Addr != "" && c.Metrics.Addr == c.Report.Addr {
		return domain.NewConfigError("metrics.addr", "must differ from report.addr %q", c.Report.Addr)
	}

	if c.Strategy.Name == "spread" && c.Strategy.Window <= 0 {
		return domain.NewConfigError("strategy.window", "must be positive, got %d", c.Strategy.Window)
	}

	return nil
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv("MMGAME_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &domain.ConfigError{Field: "MMGAME_SEED", Err: err}
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("MMGAME_TOTAL_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigError{Field: "MMGAME_TOTAL_DAYS", Err: err}
		}
		cfg.Simulation.TotalDays = days
	}
	if v := os.Getenv("MMGAME_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	return nil
}
