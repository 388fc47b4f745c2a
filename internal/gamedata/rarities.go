package gamedata

import (
	"errors"
	"fmt"
	"math/rand"
)

// RarityDef holds the generation parameters of one rarity tier.
type RarityDef struct {
	ID             Rarity             `json:"id"`
	BasePower      int                `json:"basePower"`
	EffectChance   float64            `json:"effectChance"`
	EffectDuration int                `json:"effectDuration"`
	Weights        map[CardSource]int `json:"weights"`
	// EnemyLevelWeight is added to the enemy weight for every level above 1.
	EnemyLevelWeight int `json:"enemyLevelWeight"`
}

// RaritiesFile represents the structure of rarities.json.
type RaritiesFile struct {
	Rarities []RarityDef `json:"rarities"`
}

// RarityTable performs weighted rarity rolls. Tiers are kept in ascending
// order, common first.
type RarityTable struct {
	rarities []RarityDef
}

// NewRarityTable creates a table from loaded rarity definitions.
func NewRarityTable(rarities []RarityDef) *RarityTable {
	return &RarityTable{rarities: rarities}
}

// LoadRarityTable loads the embedded rarities.json.
func LoadRarityTable() (*RarityTable, error) {
	file, err := Load[RaritiesFile]("rarities.json")
	if err != nil {
		return nil, err
	}
	if len(file.Rarities) == 0 {
		return nil, errors.New("no rarities loaded from rarities.json")
	}
	return NewRarityTable(file.Rarities), nil
}

// Weight returns the roll weight of def for a source at a level. Enemy
// weights shift with level but never drop below 1 for tiers that start
// non-zero.
func (t *RarityTable) Weight(def *RarityDef, source CardSource, level int) int {
	base := def.Weights[source]
	if source != SourceEnemy || base == 0 {
		return base
	}
	if level < 1 {
		level = 1
	}
	w := base + def.EnemyLevelWeight*(level-1)
	if w < 1 {
		w = 1
	}
	return w
}

// Roll picks a rarity for source at level using weighted probability.
func (t *RarityTable) Roll(rng *rand.Rand, source CardSource, level int) (*RarityDef, error) {
	total := 0
	for i := range t.rarities {
		total += t.Weight(&t.rarities[i], source, level)
	}
	if total <= 0 {
		return nil, fmt.Errorf("no rarity weights for source %q", source)
	}

	roll := rng.Intn(total)
	cumulative := 0
	for i := range t.rarities {
		cumulative += t.Weight(&t.rarities[i], source, level)
		if roll < cumulative {
			return &t.rarities[i], nil
		}
	}
	return &t.rarities[len(t.rarities)-1], nil
}

// Get returns the definition for r, or nil if the table has no such tier.
func (t *RarityTable) Get(r Rarity) *RarityDef {
	for i := range t.rarities {
		if t.rarities[i].ID == r {
			return &t.rarities[i]
		}
	}
	return nil
}

// Rank returns the position of r in ascending rarity order, or -1.
func (t *RarityTable) Rank(r Rarity) int {
	for i := range t.rarities {
		if t.rarities[i].ID == r {
			return i
		}
	}
	return -1
}

// All returns all rarity definitions in ascending order.
func (t *RarityTable) All() []RarityDef {
	return t.rarities
}
