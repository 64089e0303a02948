// Package config loads the engine's deployment configuration from
// environment variables and defaults, with an optional YAML file whose
// Kafka/Redis settings, when present, override both.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs a running engine process needs beyond
// the matching core itself: how big to size the pool/ring, where to
// listen, and where to ship events.
type Config struct {
	Engine struct {
		PoolCapacity int   `mapstructure:"pool_capacity"`
		RingCapacity int   `mapstructure:"ring_capacity"`
		TickSize     int64 `mapstructure:"tick_size"`
		Symbol       uint32 `mapstructure:"symbol"`
	} `mapstructure:"engine"`

	Server struct {
		GRPCAddr  string `mapstructure:"grpc_addr"`
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"server"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`

	OTel struct {
		CollectorEndpoint string `mapstructure:"collector_endpoint"`
		ServiceName       string `mapstructure:"service_name"`
		Enabled           bool   `mapstructure:"enabled"`
	} `mapstructure:"otel"`
}

// fileOverride mirrors the subset of Config a YAML file is allowed to
// override — plain strings/ints rather than viper's mapstructure tags,
// since yaml.v3 and viper disagree on struct-tag conventions.
type fileOverride struct {
	Kafka struct {
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
	} `yaml:"kafka"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
}

// Load reads configuration from MATCHINGO_* environment variables, with
// the defaults below as the floor, and optionally layers a YAML file's
// Kafka/Redis section on top when configPath is non-empty.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("matchingo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("engine.pool_capacity", 1<<20)
	v.SetDefault("engine.ring_capacity", 1<<16)
	v.SetDefault("engine.tick_size", 1)
	v.SetDefault("engine.symbol", 0)

	v.SetDefault("server.grpc_addr", ":50051")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "pretty")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "matchingo-fills")

	v.SetDefault("otel.service_name", "microlob-engine")
	v.SetDefault("otel.enabled", false)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal env config: %w", err)
	}

	if configPath != "" {
		if err := applyFileOverride(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if cfg.Engine.PoolCapacity <= 0 {
		return nil, fmt.Errorf("config: engine.pool_capacity must be positive, got %d", cfg.Engine.PoolCapacity)
	}
	if cfg.Engine.RingCapacity <= 0 || cfg.Engine.RingCapacity&(cfg.Engine.RingCapacity-1) != 0 {
		return nil, fmt.Errorf("config: engine.ring_capacity must be a power of two, got %d", cfg.Engine.RingCapacity)
	}

	return cfg, nil
}

func applyFileOverride(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read override file: %w", err)
	}

	var override fileOverride
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("config: parse override file: %w", err)
	}

	if override.Kafka.BrokerAddr != "" {
		cfg.Kafka.Brokers = []string{override.Kafka.BrokerAddr}
	}
	if override.Kafka.Topic != "" {
		cfg.Kafka.Topic = override.Kafka.Topic
	}
	if override.Redis.Addr != "" {
		cfg.Redis.Addr = override.Redis.Addr
	}

	return nil
}
