package game

import "github.com/samdwyer/cardclash/internal/battle"

// Config holds terminal client options.
type Config struct {
	// Seed for random number generation. Used for reproducible maps and
	// battles. A seed of 0 means a random seed will be generated.
	Seed int64
	// EncountersPerRegion is how many creatures each region tries to spawn.
	EncountersPerRegion int
	// LogLines is the height of the message log.
	LogLines int
	// Battle balance passed through to the engine.
	Battle battle.Config
}

func (c *Config) applyDefaults() {
	if c.EncountersPerRegion <= 0 {
		c.EncountersPerRegion = 2
	}
	if c.LogLines <= 0 {
		c.LogLines = 4
	}
}
