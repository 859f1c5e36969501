package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Install  InstallConfig  `mapstructure:"install"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// InstallConfig contains installation defaults
type InstallConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	StateDir string `mapstructure:"state_dir"`
	DBFile   string `mapstructure:"db_file"`
	LogFile  string `mapstructure:"log_file"`
}

// DatabaseConfig contains package database configuration
type DatabaseConfig struct {
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "zpkg"))
	}
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("ZPKG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.StateDir = expandPath(cfg.Paths.StateDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)

	if cfg.Paths.DBFile == "" {
		cfg.Paths.DBFile = filepath.Join(cfg.Paths.StateDir, "installed.json")
	}
	if cfg.Paths.LogFile == "" {
		cfg.Paths.LogFile = filepath.Join(cfg.Paths.StateDir, "zpkg.log")
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	stateDir := filepath.Join(homeDir, ".local", "share", "zpkg")

	viper.SetDefault("install.prefix", "/usr")

	viper.SetDefault("paths.state_dir", stateDir)
	viper.SetDefault("paths.db_file", filepath.Join(stateDir, "installed.json"))
	viper.SetDefault("paths.log_file", filepath.Join(stateDir, "zpkg.log"))

	viper.SetDefault("database.lock_timeout", 10*time.Second)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
