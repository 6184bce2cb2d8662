package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigHCL = `
server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
}

table "high-stakes" {
  variant     = "no_limit"
  small_blind = 50
  big_blind   = 100
  max_players = 9
  buy_in      = 20000
}

table "limit-low" {
  variant     = "fixed_limit"
  small_blind = 1
  big_blind   = 2
}

bot "rock" {
  strategy = "calling"
  tables   = ["limit-low"]
  buy_in   = 100
}

bot "wild" {
  strategy = "random"
}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holdem.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigParsesTablesAndBots(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfigHCL))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr())
	require.Len(t, cfg.Tables, 2)

	hs := cfg.Tables[0]
	assert.Equal(t, "high-stakes", hs.Name)
	assert.Equal(t, 50, hs.SmallBlind)
	assert.Equal(t, 20000, hs.BuyIn)

	low := cfg.Tables[1]
	assert.Equal(t, "fixed_limit", low.Variant)
	assert.Equal(t, 6, low.MaxPlayers, "max players defaulted")
	assert.Equal(t, 200, low.BuyIn, "buy-in defaults to 100 big blinds")

	assert.Equal(t, []BotConfig{{Name: "rock", Strategy: "calling", Tables: []string{"limit-low"}, BuyIn: 100}},
		cfg.BotsForTable("limit-low")[:1])
	assert.Len(t, cfg.BotsForTable("high-stakes"), 1, "bot with no tables joins every table")
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Tables)
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no tables", func(c *Config) { c.Tables = nil }},
		{"bad variant", func(c *Config) { c.Tables[0].Variant = "pot_limit" }},
		{"blinds inverted", func(c *Config) { c.Tables[0].BigBlind = c.Tables[0].SmallBlind }},
		{"bot names unknown table", func(c *Config) { c.Bots[0].Tables = []string{"nowhere"} }},
		{"duplicate table", func(c *Config) { c.Tables = append(c.Tables, c.Tables[0]) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
