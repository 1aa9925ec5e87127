package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Fields tagged with env can be overridden through LENDX_* environment variables, see [ApplyEnv].
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Display  DisplayConfig  `toml:"display"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"           env:"LENDX_DB"`
	MaxOpenConns int    `toml:"max_open_conns" env:"LENDX_DB_MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"LENDX_DB_MAX_IDLE_CONNS"`
}

// DisplayConfig controls how persons and loans are presented.
type DisplayConfig struct {
	Currency     string `toml:"currency"      env:"LENDX_CURRENCY"`
	DateFormat   string `toml:"date_format"`
	DefaultSort  string `toml:"default_sort"  env:"LENDX_SORT"`
	DefaultOrder string `toml:"default_order" env:"LENDX_ORDER"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"LENDX_LOG_LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if _, err := toml.Decode(string(data), config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalidConfig, err)
	}

	if config.Database.Path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides config with the LENDX_* variables that are set. Unset variables keep the current values.
func ApplyEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}
	if config.Database.Path == "" {
		return fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
