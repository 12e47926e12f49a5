package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PipelineConfig holds tunables for the transformation pipeline.
type PipelineConfig struct {
	// ActiveAsOf is the reference date (RFC 3339 date, e.g. "2026-01-31") for
	// the active-subscription predicate used by the MRR-by-plan metric:
	// a subscription is active iff end_date is null or end_date >= activeAsOf.
	// The upstream source never defines this predicate, so it is configuration
	// pending product-owner confirmation. Empty means "today" at run time.
	ActiveAsOf string `mapstructure:"activeAsOf"`

	// CleanConcurrency bounds how many entity collections are cleaned in
	// parallel within the cleaning stage.
	CleanConcurrency int `mapstructure:"cleanConcurrency"`
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ActiveAsOf:       "",
		CleanConcurrency: 5,
	}
}

// ActiveAsOfDate resolves the configured predicate date, falling back to the
// supplied current time when unset.
func (c PipelineConfig) ActiveAsOfDate(now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(c.ActiveAsOf)
	if raw == "" {
		return now.UTC().Truncate(24 * time.Hour), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

// PipelineConfigHolder exposes the current pipeline config with hot reload.
type PipelineConfigHolder struct {
	current atomic.Value // holds PipelineConfig
}

func NewPipelineConfigHolder() (*PipelineConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pipeline")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/insight/config")
	v.AddConfigPath("/etc/insight")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPipelineConfig()
		v.SetDefault("pipeline.activeAsOf", defaults.ActiveAsOf)
		v.SetDefault("pipeline.cleanConcurrency", defaults.CleanConcurrency)
	}

	var cfg PipelineConfig
	if err := v.UnmarshalKey("pipeline", &cfg); err != nil {
		return nil, err
	}
	if err := validatePipelineConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PipelineConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		var next PipelineConfig
		if err := v.UnmarshalKey("pipeline", &next); err != nil {
			log.Printf("pipeline config reload failed: %v", err)
			return
		}
		if err := validatePipelineConfig(next); err != nil {
			log.Printf("pipeline config reload rejected: %v", err)
			return
		}
		holder.current.Store(next)
	})

	return holder, nil
}

// Current returns the active pipeline configuration snapshot.
func (h *PipelineConfigHolder) Current() PipelineConfig {
	if cfg, ok := h.current.Load().(PipelineConfig); ok {
		return cfg
	}
	return DefaultPipelineConfig()
}

func validatePipelineConfig(cfg PipelineConfig) error {
	if cfg.CleanConcurrency < 0 {
		return errors.New("pipeline.cleanConcurrency must not be negative")
	}
	if raw := strings.TrimSpace(cfg.ActiveAsOf); raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return errors.New("pipeline.activeAsOf must be a calendar date (2006-01-02)")
		}
	}
	return nil
}
