package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverCSV      = "csv"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Planning PlanningConfig `mapstructure:"planning"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	DSN         string `mapstructure:"dsn"`
	BoltPath    string `mapstructure:"bolt_path"`
	ScenarioDir string `mapstructure:"scenario_dir"`
}

type PlanningConfig struct {
	HorizonWeeks  int    `mapstructure:"horizon_weeks"`
	UrgencyPolicy string `mapstructure:"urgency_policy"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// Load reads configuration from path (or ./planner.yaml, ./configs/planner.yaml
// when path is empty), then applies PLANNER_* environment overrides
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("planner")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.bolt_path", "planner.db")
	v.SetDefault("storage.scenario_dir", "")
	v.SetDefault("planning.horizon_weeks", 0)
	v.SetDefault("planning.urgency_policy", "threshold")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
}

// Validate checks the settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverCSV, DriverBolt:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Storage.Driver == DriverBolt && c.Storage.BoltPath == "" {
		return errors.New("storage.bolt_path is required for the bolt driver")
	}
	if c.Planning.HorizonWeeks < 0 {
		return fmt.Errorf("planning.horizon_weeks cannot be negative: %d", c.Planning.HorizonWeeks)
	}
	return nil
}
