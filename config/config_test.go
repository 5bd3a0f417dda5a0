package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	iv, err := cfg.Strategy.Interval()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, iv)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	doc := `account:
  mode: sim
  initial_equity: 50000
strategy:
  default_profile: risky_business
  monitor_interval: 10s
storage:
  state_file: /tmp/state.json
  audit_log: /tmp/audit.jsonl
  profiles_db: /tmp/profiles.db
api:
  addr: 127.0.0.1:9000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ModeSim, cfg.Account.Mode)
	assert.InDelta(t, 50000.0, cfg.Account.InitialEquity, 1e-9)
	assert.Equal(t, "risky_business", cfg.Strategy.DefaultProfile)

	iv, err := cfg.Strategy.Interval()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, iv)
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	doc := `{
  "account": {"mode": "sim", "initial_equity": 100000},
  "strategy": {"default_profile": "safe_mode", "monitor_interval": "5s"},
  "storage": {"state_file": "s.json", "audit_log": "a.jsonl", "profiles_db": "p.db"},
  "api": {"addr": "127.0.0.1:8000"}
}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "safe_mode", cfg.Strategy.DefaultProfile)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	mutate := func(f func(*Config)) *Config {
		cfg := Default()
		f(cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"bad mode", mutate(func(c *Config) { c.Account.Mode = "paper" })},
		{"zero equity", mutate(func(c *Config) { c.Account.InitialEquity = 0 })},
		{"no profile", mutate(func(c *Config) { c.Strategy.DefaultProfile = "" })},
		{"bad interval", mutate(func(c *Config) { c.Strategy.MonitorInterval = "soon" })},
		{"no state file", mutate(func(c *Config) { c.Storage.StateFile = "" })},
		{"no api addr", mutate(func(c *Config) { c.API.Addr = "" })},
		{"live without bridge", mutate(func(c *Config) { c.Account.Mode = ModeLive })},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestLiveModeNeedsBridgeURL(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Account.Mode = ModeLive
	cfg.DAS.BaseURL = "http://127.0.0.1:9100"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
