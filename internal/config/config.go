// Package config loads and hot-reloads the matcher's ambient settings —
// risk limits, ring/pool capacities, and the journal directory — the way
// gopherex's pkg/config.LoadAndWatch does: viper for parsing, fsnotify
// (via viper.WatchConfig) for picking up an edited file without a
// restart. None of this touches the book or the matcher's hot path; it
// only ever produces new Config values for cmd/matchengine to apply.
package config

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/matching"
	"github.com/ViraatC22/HFT-Orderbook-Engine/pkg/risk"
)

// Config is the full set of settings cmd/matchengine needs to wire an
// Engine. Field names use mapstructure's default lowercasing so a YAML
// file can use plain lowercase keys.
type Config struct {
	Risk struct {
		MaxQuantity int64 `mapstructure:"max_quantity"`
		MinPrice    int64 `mapstructure:"min_price"`
		MaxPrice    int64 `mapstructure:"max_price"`
	}
	Pool struct {
		Capacity int    `mapstructure:"capacity"`
		Mode     string `mapstructure:"mode"` // "strict" | "degraded"
	}
	Ring struct {
		InboundCapacity uint64 `mapstructure:"inbound_capacity"`
		JournalCapacity uint64 `mapstructure:"journal_capacity"`
	}
	Journal struct {
		Dir            string        `mapstructure:"dir"`
		Backend        string        `mapstructure:"backend"` // "file" | "pebble"
		SegmentMaxByte int64         `mapstructure:"segment_max_bytes"`
		FlushInterval  time.Duration `mapstructure:"flush_interval"`
	}
	Metrics struct {
		PrometheusNamespace string `mapstructure:"prometheus_namespace"`
	}
}

// Default returns a Config carrying the same defaults as
// risk.DefaultConfig and reasonable ring/pool sizing, used when no config
// file is present.
func Default() Config {
	var c Config
	c.Risk.MaxQuantity = int64(risk.DefaultConfig().MaxQuantity)
	c.Risk.MinPrice = int64(risk.DefaultConfig().MinPrice)
	c.Risk.MaxPrice = int64(risk.DefaultConfig().MaxPrice)
	c.Pool.Capacity = 1 << 16
	c.Pool.Mode = "strict"
	c.Ring.InboundCapacity = 1 << 16
	c.Ring.JournalCapacity = 1 << 16
	c.Journal.Dir = "./journal"
	c.Journal.Backend = "file"
	c.Journal.SegmentMaxByte = 64 << 20
	c.Journal.FlushInterval = 5 * time.Millisecond
	c.Metrics.PrometheusNamespace = "matchengine"
	return c
}

// Load reads name.yaml from configPaths (falling back to built-in
// defaults if no file is found), env-overridable with the MATCHENGINE_
// prefix, exactly as gopherex's config package does for its services.
func Load(name string, configPaths ...string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("MATCHENGINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Watch hot-reloads name.yaml from configPaths, invoking onChange with the
// newly parsed Config every time it's edited. The returned *viper.Viper
// keeps the fsnotify watch alive for the process lifetime; there's no
// explicit Close because viper.WatchConfig never exposes one — same
// limitation LoadAndWatch in the rest of the corpus lives with.
func Watch(name string, onChange func(Config), configPaths ...string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("MATCHENGINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
	} else if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		onChange(next)
	})

	return cfg, nil
}

// ToRiskConfig converts the risk section of a loaded Config into
// pkg/risk's Config shape.
func ToRiskConfig(c Config) risk.Config {
	return risk.Config{
		MaxQuantity: matching.Quantity(c.Risk.MaxQuantity),
		MinPrice:    matching.Price(c.Risk.MinPrice),
		MaxPrice:    matching.Price(c.Risk.MaxPrice),
	}
}
