// Package config loads runtime and balance settings from YAML, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/samdwyer/cardclash/internal/battle"
	"github.com/samdwyer/cardclash/internal/telemetry"
)

// Environment variables that override file settings.
const (
	EnvConfigPath = "CARDCLASH_CONFIG"
	EnvAddr       = "CARDCLASH_ADDR"
	EnvDB         = "CARDCLASH_DB"
	EnvSeed       = "CARDCLASH_SEED"
	EnvLogLevel   = "CARDCLASH_LOG_LEVEL"
	EnvPlayer     = "CARDCLASH_PLAYER"
	EnvAPIKey     = "HONEYCOMB_CARDCLASH_API_KEY"
	EnvDataset    = "HONEYCOMB_CARDCLASH_DATASET"
)

// DefaultPath is read when no path is given and it exists.
const DefaultPath = "cardclash.yaml"

type Config struct {
	Server    Server           `yaml:"server"`
	Database  Database         `yaml:"database"`
	Battle    battle.Config    `yaml:"battle"`
	Player    Player           `yaml:"player"`
	Log       Log              `yaml:"log"`
	Telemetry telemetry.Config `yaml:"telemetry"`
	// Seed fixes the random source. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

type Server struct {
	Address string `yaml:"address"`
}

type Database struct {
	// Path of the sqlite file. Empty keeps everything in memory.
	Path string `yaml:"path"`
}

type Player struct {
	ID           string `yaml:"id"`
	StarterCards int    `yaml:"starter_cards"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: Server{Address: ":8080"},
		Battle: battle.DefaultConfig(),
		Player: Player{ID: "local", StarterCards: 5},
		Log:    Log{Level: "info"},
	}
}

// Load reads path, applies environment overrides and fills defaults. An
// empty path falls back to DefaultPath if that file exists, else to the
// built-in defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadEnv loads a .env file into the process environment. A missing file is
// not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyDefaults fills zero fields from Default.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Player.ID == "" {
		c.Player.ID = d.Player.ID
	}
	if c.Player.StarterCards <= 0 {
		c.Player.StarterCards = d.Player.StarterCards
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Telemetry.APIKey != "" && c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = telemetry.DefaultEndpoint
	}
	c.Battle.ApplyDefaults()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Address = v
	}
	if v, ok := os.LookupEnv(EnvDB); ok {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPlayer); v != "" {
		c.Player.ID = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Telemetry.APIKey = v
		c.Telemetry.Enabled = true
	}
	if v := os.Getenv(EnvDataset); v != "" {
		c.Telemetry.Dataset = v
	}
	return nil
}
