package battle

import "time"

// Config holds the battle balance knobs. Zero fields are filled by
// ApplyDefaults. RewardChance is a pointer so that an explicit 0 turns
// rewards off; only a missing value takes the default.
type Config struct {
	HandSize            int      `yaml:"hand_size"`
	MaxEnemyCards       int      `yaml:"max_enemy_cards"`
	EnemyBaseHealth     int      `yaml:"enemy_base_health"`
	EnemyHealthPerLevel int      `yaml:"enemy_health_per_level"`
	ExperienceBase      int      `yaml:"experience_base"`
	ExperiencePerLevel  int      `yaml:"experience_per_level"`
	RewardChance        *float64 `yaml:"reward_chance"`

	// EnemyThinkDelay is the pause before the enemy plays.
	EnemyThinkDelay time.Duration `yaml:"enemy_think_delay"`
	// EnemyTurnDelay is the pause after the enemy plays before the turn returns.
	EnemyTurnDelay time.Duration `yaml:"enemy_turn_delay"`
	// SkipTurnDelay is the pause before a stunned enemy hands the turn back.
	SkipTurnDelay time.Duration `yaml:"skip_turn_delay"`
	// ResultDelay is how long the outcome stays on screen before the world view returns.
	ResultDelay time.Duration `yaml:"result_delay"`
}

// DefaultConfig returns the standard balance.
func DefaultConfig() Config {
	return Config{
		HandSize:            3,
		MaxEnemyCards:       3,
		EnemyBaseHealth:     30,
		EnemyHealthPerLevel: 20,
		ExperienceBase:      50,
		ExperiencePerLevel:  25,
		RewardChance:        Chance(0.7),
		EnemyThinkDelay:     800 * time.Millisecond,
		EnemyTurnDelay:      1200 * time.Millisecond,
		SkipTurnDelay:       1000 * time.Millisecond,
		ResultDelay:         2500 * time.Millisecond,
	}
}

// ApplyDefaults fills zero fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.HandSize <= 0 {
		c.HandSize = d.HandSize
	}
	if c.MaxEnemyCards <= 0 {
		c.MaxEnemyCards = d.MaxEnemyCards
	}
	if c.EnemyBaseHealth <= 0 {
		c.EnemyBaseHealth = d.EnemyBaseHealth
	}
	if c.EnemyHealthPerLevel <= 0 {
		c.EnemyHealthPerLevel = d.EnemyHealthPerLevel
	}
	if c.ExperienceBase <= 0 {
		c.ExperienceBase = d.ExperienceBase
	}
	if c.ExperiencePerLevel <= 0 {
		c.ExperiencePerLevel = d.ExperiencePerLevel
	}
	if c.RewardChance == nil {
		c.RewardChance = d.RewardChance
	}
	if c.EnemyThinkDelay <= 0 {
		c.EnemyThinkDelay = d.EnemyThinkDelay
	}
	if c.EnemyTurnDelay <= 0 {
		c.EnemyTurnDelay = d.EnemyTurnDelay
	}
	if c.SkipTurnDelay <= 0 {
		c.SkipTurnDelay = d.SkipTurnDelay
	}
	if c.ResultDelay <= 0 {
		c.ResultDelay = d.ResultDelay
	}
}

// Chance returns a pointer to p for RewardChance.
func Chance(p float64) *float64 {
	return &p
}
