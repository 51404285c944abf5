// Package config loads application configuration from config.yaml and the
// environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	KPI    KPIConfig    `yaml:"kpi" mapstructure:"kpi"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig holds the three pipeline directories.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" mapstructure:"raw_dir"`
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	AnalyticsDir string `yaml:"analytics_dir" mapstructure:"analytics_dir"`
}

// StoreConfig configures the run-history backend. Driver "none" disables
// run history entirely.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// KPIConfig holds windows for the time-windowed KPIs.
type KPIConfig struct {
	ActiveWindowDays  int `yaml:"active_window_days" mapstructure:"active_window_days"`
	RevenueWindowDays int `yaml:"revenue_window_days" mapstructure:"revenue_window_days"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRAZAMATIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("data.analytics_dir", "data/analytics")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "trazamatic.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("kpi.active_window_days", 90)
	v.SetDefault("kpi.revenue_window_days", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
