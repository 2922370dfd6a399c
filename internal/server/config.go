package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/elemental-arena/server/internal/game"
)

// Config is the on-disk server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains the game rules applied to new rooms
type GameSettings struct {
	Rounds       int    `hcl:"rounds,optional"`
	CardsPerDeal int    `hcl:"cards_per_deal,optional"`
	MaxPlayers   int    `hcl:"max_players,optional"`
	ReapGrace    string `hcl:"reap_grace,optional"`
}

// DefaultConfig returns the standard configuration: the original
// 5-round, 5-card game with finished rooms reaped after five minutes
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  ":8080",
			LogLevel: "info",
		},
		Game: GameSettings{
			Rounds:       5,
			CardsPerDeal: 5,
			MaxPlayers:   2,
			ReapGrace:    "5m",
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.Rounds == 0 {
		config.Game.Rounds = defaults.Game.Rounds
	}
	if config.Game.CardsPerDeal == 0 {
		config.Game.CardsPerDeal = defaults.Game.CardsPerDeal
	}
	if config.Game.MaxPlayers == 0 {
		config.Game.MaxPlayers = defaults.Game.MaxPlayers
	}
	if config.Game.ReapGrace == "" {
		config.Game.ReapGrace = defaults.Game.ReapGrace
	}

	return &config, nil
}

// Validate checks the configuration for nonsense values
func (c *Config) Validate() error {
	if c.Game.Rounds < 1 {
		return fmt.Errorf("rounds must be positive, got %d", c.Game.Rounds)
	}
	if c.Game.CardsPerDeal < 1 {
		return fmt.Errorf("cards_per_deal must be positive, got %d", c.Game.CardsPerDeal)
	}
	if c.Game.MaxPlayers < 2 {
		return fmt.Errorf("max_players must be at least 2, got %d", c.Game.MaxPlayers)
	}
	if c.Game.Rounds > c.Game.CardsPerDeal {
		return fmt.Errorf("rounds (%d) cannot exceed cards dealt per player (%d)", c.Game.Rounds, c.Game.CardsPerDeal)
	}
	if _, err := c.ReapGraceDuration(); err != nil {
		return err
	}
	return nil
}

// Rules converts the game settings to room rules
func (c *Config) Rules() game.Rules {
	return game.Rules{
		Rounds:       c.Game.Rounds,
		CardsPerDeal: c.Game.CardsPerDeal,
	}
}

// ReapGraceDuration parses the reap grace period
func (c *Config) ReapGraceDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Game.ReapGrace)
	if err != nil {
		return 0, fmt.Errorf("invalid reap_grace: %w", err)
	}
	return d, nil
}
