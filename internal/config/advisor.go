package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AdvisorConfig holds the threshold tables the advisory fallbacks compute
// from. The deterministic responses promised to clients only hold while
// these match the documented defaults, so overrides are validated on load.
type AdvisorConfig struct {
	HighValueSpend     float64 `mapstructure:"highValueSpend"`
	AtRiskDays         int     `mapstructure:"atRiskDays"`
	DefaultHealthScore int     `mapstructure:"defaultHealthScore"`

	QuoteBetterMultiplier float64 `mapstructure:"quoteBetterMultiplier"`
	QuoteBestMultiplier   float64 `mapstructure:"quoteBestMultiplier"`

	StockoutCriticalDays int `mapstructure:"stockoutCriticalDays"`
	StockoutHighDays     int `mapstructure:"stockoutHighDays"`
	StockoutMediumDays   int `mapstructure:"stockoutMediumDays"`

	MaintenanceIntervalDays int `mapstructure:"maintenanceIntervalDays"`
}

func DefaultAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{
		HighValueSpend:          5000,
		AtRiskDays:              180,
		DefaultHealthScore:      70,
		QuoteBetterMultiplier:   1.2,
		QuoteBestMultiplier:     1.6,
		StockoutCriticalDays:    7,
		StockoutHighDays:        14,
		StockoutMediumDays:      30,
		MaintenanceIntervalDays: 180,
	}
}

// AdvisorConfigHolder serves the current advisor thresholds and hot-reloads
// them when the config file changes.
type AdvisorConfigHolder struct {
	current atomic.Value // holds AdvisorConfig
}

func NewAdvisorConfigHolder() (*AdvisorConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("advisor")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/fieldline")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FIELDLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultAdvisorConfig()
	v.SetDefault("advisor.highValueSpend", defaults.HighValueSpend)
	v.SetDefault("advisor.atRiskDays", defaults.AtRiskDays)
	v.SetDefault("advisor.defaultHealthScore", defaults.DefaultHealthScore)
	v.SetDefault("advisor.quoteBetterMultiplier", defaults.QuoteBetterMultiplier)
	v.SetDefault("advisor.quoteBestMultiplier", defaults.QuoteBestMultiplier)
	v.SetDefault("advisor.stockoutCriticalDays", defaults.StockoutCriticalDays)
	v.SetDefault("advisor.stockoutHighDays", defaults.StockoutHighDays)
	v.SetDefault("advisor.stockoutMediumDays", defaults.StockoutMediumDays)
	v.SetDefault("advisor.maintenanceIntervalDays", defaults.MaintenanceIntervalDays)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg AdvisorConfig
	if err := v.UnmarshalKey("advisor", &cfg); err != nil {
		return nil, err
	}
	if err := validateAdvisorConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AdvisorConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AdvisorConfig
		if err := v.UnmarshalKey("advisor", &updated); err != nil {
			log.Printf("[advisor-config] reload failed: %v", err)
			return
		}
		if err := validateAdvisorConfig(updated); err != nil {
			log.Printf("[advisor-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[advisor-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *AdvisorConfigHolder) Get() AdvisorConfig {
	return h.current.Load().(AdvisorConfig)
}

func validateAdvisorConfig(cfg AdvisorConfig) error {
	if cfg.QuoteBetterMultiplier < 1 || cfg.QuoteBestMultiplier < cfg.QuoteBetterMultiplier {
		return errors.New("advisor.quote multipliers must be ordered and >= 1")
	}
	if cfg.StockoutCriticalDays <= 0 || cfg.StockoutHighDays <= cfg.StockoutCriticalDays || cfg.StockoutMediumDays <= cfg.StockoutHighDays {
		return errors.New("advisor.stockout day bounds must be ascending")
	}
	if cfg.DefaultHealthScore < 0 || cfg.DefaultHealthScore > 100 {
		return errors.New("advisor.defaultHealthScore must be between 0 and 100")
	}
	return nil
}
