package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	content := `
server {
  address   = ":9999"
  log_level = "debug"
}

game {
  rounds         = 3
  cards_per_deal = 4
  reap_grace     = "90s"
}
`
	path := filepath.Join(t.TempDir(), "elemental.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", config.Server.Address)
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, 3, config.Game.Rounds)
	assert.Equal(t, 4, config.Game.CardsPerDeal)
	// Omitted fields fall back to defaults
	assert.Equal(t, 2, config.Game.MaxPlayers)

	grace, err := config.ReapGraceDuration()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, grace)

	rules := config.Rules()
	assert.Equal(t, 3, rules.Rounds)
	assert.Equal(t, 4, rules.CardsPerDeal)
}

func TestLoadConfigInvalidHCL(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte("server {"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero rounds", mutate: func(c *Config) { c.Game.Rounds = 0 }, wantErr: true},
		{name: "zero cards", mutate: func(c *Config) { c.Game.CardsPerDeal = 0 }, wantErr: true},
		{name: "single seat", mutate: func(c *Config) { c.Game.MaxPlayers = 1 }, wantErr: true},
		{name: "more rounds than cards", mutate: func(c *Config) { c.Game.Rounds = 6 }, wantErr: true},
		{name: "bad grace", mutate: func(c *Config) { c.Game.ReapGrace = "soon" }, wantErr: true},
		{name: "longer game", mutate: func(c *Config) { c.Game.Rounds = 7; c.Game.CardsPerDeal = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
