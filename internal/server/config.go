package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the full server configuration, loaded from an HCL file.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
	Bots   []BotConfig    `hcl:"bot,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TableConfig defines one poker table.
type TableConfig struct {
	Name       string `hcl:"name,label"`
	Variant    string `hcl:"variant,optional"`
	SmallBlind int    `hcl:"small_blind"`
	BigBlind   int    `hcl:"big_blind"`
	MaxPlayers int    `hcl:"max_players,optional"`
	BuyIn      int    `hcl:"buy_in,optional"`
}

// BotConfig seats a bot at one or more tables.
type BotConfig struct {
	Name     string   `hcl:"name,label"`
	Strategy string   `hcl:"strategy"`
	Tables   []string `hcl:"tables,optional"`
	BuyIn    int      `hcl:"buy_in,optional"`
}

// DefaultConfig returns the configuration used when no file is present:
// one six-max no-limit table with two bots, so the server is playable the
// moment it starts.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Tables: []TableConfig{
			{
				Name:       "main",
				Variant:    "no_limit",
				SmallBlind: 5,
				BigBlind:   10,
				MaxPlayers: 6,
				BuyIn:      1000,
			},
		},
		Bots: []BotConfig{
			{Name: "bot-caller", Strategy: "calling", Tables: []string{"main"}},
			{Name: "bot-random", Strategy: "random", Tables: []string{"main"}},
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// DefaultConfig when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("server: parse config: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("server: decode config: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Variant == "" {
			t.Variant = "no_limit"
		}
		if t.MaxPlayers == 0 {
			t.MaxPlayers = 6
		}
		if t.BuyIn == 0 {
			t.BuyIn = t.BigBlind * 100
		}
	}

	for i := range c.Bots {
		b := &c.Bots[i]
		if b.Strategy == "" {
			b.Strategy = "random"
		}
		if len(b.Tables) == 0 {
			for _, t := range c.Tables {
				b.Tables = append(b.Tables, t.Name)
			}
		}
	}
}

// Validate rejects configurations the server cannot run.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("server: at least one table must be configured")
	}

	names := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if err := validateTableConfig(t); err != nil {
			return err
		}
		if names[t.Name] {
			return fmt.Errorf("server: duplicate table name %q", t.Name)
		}
		names[t.Name] = true
	}

	for _, b := range c.Bots {
		for _, tableName := range b.Tables {
			if !names[tableName] {
				return fmt.Errorf("server: bot %s references unknown table %q", b.Name, tableName)
			}
		}
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// BotsForTable returns the bots configured to sit at tableName.
func (c *Config) BotsForTable(tableName string) []BotConfig {
	var out []BotConfig
	for _, b := range c.Bots {
		for _, t := range b.Tables {
			if t == tableName {
				out = append(out, b)
				break
			}
		}
	}
	return out
}
