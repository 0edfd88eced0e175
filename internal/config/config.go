package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxConnections int    `mapstructure:"max_connections"`
	SeedPath       string `mapstructure:"seed_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the simulated metrics provider.
type MetricsConfig struct {
	MinLatencyMs int   `mapstructure:"min_latency_ms"`
	MaxLatencyMs int   `mapstructure:"max_latency_ms"`
	RandomSeed   int64 `mapstructure:"random_seed"` // 0 means time-seeded
}

// AlertingConfig controls the periodic alert evaluation sweep.
type AlertingConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	EvaluationSpec     string `mapstructure:"evaluation_spec"` // cron spec
	WindowMinutes      int    `mapstructure:"window_minutes"`
	RetentionDays      int    `mapstructure:"retention_days"`
	HistoryDefaultDays int    `mapstructure:"history_default_days"`
}

type WebSocketConfig struct {
	PingInterval int `mapstructure:"ping_interval"`
	PongTimeout  int `mapstructure:"pong_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// Load reads configuration from configs/config.yaml with env overrides.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults + env apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3040)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("database.path", "./data/console.db")
	viper.SetDefault("database.migrations_path", "./migrations")
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.seed_path", "./configs/seed.yaml")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("metrics.min_latency_ms", 1000)
	viper.SetDefault("metrics.max_latency_ms", 2000)
	viper.SetDefault("metrics.random_seed", 0)

	viper.SetDefault("alerting.enabled", true)
	viper.SetDefault("alerting.evaluation_spec", "@every 1m")
	viper.SetDefault("alerting.window_minutes", 15)
	viper.SetDefault("alerting.retention_days", 90)
	viper.SetDefault("alerting.history_default_days", 15)

	viper.SetDefault("websocket.ping_interval", 30)
	viper.SetDefault("websocket.pong_timeout", 60)
	viper.SetDefault("websocket.write_timeout", 10)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Metrics.MinLatencyMs < 0 || cfg.Metrics.MaxLatencyMs < cfg.Metrics.MinLatencyMs {
		return fmt.Errorf("invalid metrics latency range: [%d, %d]",
			cfg.Metrics.MinLatencyMs, cfg.Metrics.MaxLatencyMs)
	}
	if cfg.Alerting.WindowMinutes <= 0 {
		return fmt.Errorf("alerting window must be positive, got %d", cfg.Alerting.WindowMinutes)
	}
	return nil
}
