// Package config loads and validates the daemon configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Execution modes.
const (
	ModeSim  = "sim"
	ModeLive = "live"
)

// Config is the complete daemon configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	API      APIConfig      `json:"api" yaml:"api"`
	DAS      DASConfig      `json:"das" yaml:"das"`
}

// AccountConfig sets the execution mode and starting equity.
type AccountConfig struct {
	// Mode is "sim" or "live".
	Mode          string  `json:"mode" yaml:"mode"`
	InitialEquity float64 `json:"initial_equity" yaml:"initial_equity"`
}

// StrategyConfig tunes the monitor loop and entry rules.
type StrategyConfig struct {
	DefaultProfile string `json:"default_profile" yaml:"default_profile"`

	// MonitorInterval is a duration string, e.g. "5s" or "1m".
	MonitorInterval string `json:"monitor_interval" yaml:"monitor_interval"`

	// RulesFile optionally points at a YAML rule set; empty means the
	// built-in baseline rules.
	RulesFile string `json:"rules_file,omitempty" yaml:"rules_file,omitempty"`
}

// Interval parses the monitor interval.
func (s StrategyConfig) Interval() (time.Duration, error) {
	if s.MonitorInterval == "" {
		return 5 * time.Second, nil
	}
	return time.ParseDuration(s.MonitorInterval)
}

// StorageConfig locates the on-disk artifacts.
type StorageConfig struct {
	StateFile  string `json:"state_file" yaml:"state_file"`
	AuditLog   string `json:"audit_log" yaml:"audit_log"`
	ProfilesDB string `json:"profiles_db" yaml:"profiles_db"`
}

// APIConfig configures the HTTP control surface.
type APIConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// DASConfig holds the live order-bridge connection; only read in live
// mode.
type DASConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Account.Mode != ModeSim && c.Account.Mode != ModeLive {
		return fmt.Errorf("account.mode must be %q or %q", ModeSim, ModeLive)
	}
	if c.Account.InitialEquity <= 0 {
		return fmt.Errorf("account.initial_equity must be positive")
	}
	if c.Strategy.DefaultProfile == "" {
		return fmt.Errorf("strategy.default_profile is required")
	}
	if _, err := c.Strategy.Interval(); err != nil {
		return fmt.Errorf("strategy.monitor_interval: %w", err)
	}
	if c.Storage.StateFile == "" || c.Storage.AuditLog == "" || c.Storage.ProfilesDB == "" {
		return fmt.Errorf("storage state_file, audit_log and profiles_db are required")
	}
	if c.API.Addr == "" {
		return fmt.Errorf("api.addr is required")
	}
	if c.Account.Mode == ModeLive && c.DAS.BaseURL == "" {
		return fmt.Errorf("das.base_url is required in live mode")
	}
	return nil
}

// Default returns a configuration with sensible defaults for paper
// trading.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Mode:          ModeSim,
			InitialEquity: 100000,
		},
		Strategy: StrategyConfig{
			DefaultProfile:  "safe_mode",
			MonitorInterval: "5s",
		},
		Storage: StorageConfig{
			StateFile:  "./trading_state.json",
			AuditLog:   "./audit_log.jsonl",
			ProfilesDB: "./profiles.db",
		},
		API: APIConfig{
			Addr: "127.0.0.1:8000",
		},
	}
}
