package gamedata

import (
	"errors"
	"math/rand"

	"github.com/gdamore/tcell/v2"
)

// CreatureDef describes a creature family: its card colour and how it shows
// up as an overworld encounter.
type CreatureDef struct {
	ID          CreatureType `json:"id"`
	Name        string       `json:"name"`
	Affix       string       `json:"affix"` // Adjective used in spell and artifact names
	Glyph       string       `json:"glyph"`
	Color       string       `json:"color"`
	SpawnWeight int          `json:"spawnWeight"`
}

// GlyphRune returns the glyph as a rune for rendering.
func (c *CreatureDef) GlyphRune() rune {
	for _, r := range c.Glyph {
		return r
	}
	return '?'
}

// TCellColor returns the creature colour, falling back to white.
func (c *CreatureDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(c.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// CreaturesFile represents the structure of creatures.json.
type CreaturesFile struct {
	Creatures []CreatureDef `json:"creatures"`
}

// CreatureRegistry holds creature definitions and spawns them by weight.
type CreatureRegistry struct {
	creatures   []CreatureDef
	totalWeight int
}

// NewCreatureRegistry creates a registry from loaded creature definitions.
func NewCreatureRegistry(creatures []CreatureDef) *CreatureRegistry {
	totalWeight := 0
	for _, c := range creatures {
		totalWeight += c.SpawnWeight
	}
	return &CreatureRegistry{creatures: creatures, totalWeight: totalWeight}
}

// LoadCreatureRegistry loads the embedded creatures.json.
func LoadCreatureRegistry() (*CreatureRegistry, error) {
	file, err := Load[CreaturesFile]("creatures.json")
	if err != nil {
		return nil, err
	}
	if len(file.Creatures) == 0 {
		return nil, errors.New("no creatures loaded from creatures.json")
	}
	return NewCreatureRegistry(file.Creatures), nil
}

// SpawnRandom selects a creature using its spawn weight.
func (r *CreatureRegistry) SpawnRandom(rng *rand.Rand) *CreatureDef {
	if r.totalWeight <= 0 || len(r.creatures) == 0 {
		return nil
	}
	roll := rng.Intn(r.totalWeight)
	cumulative := 0
	for i := range r.creatures {
		cumulative += r.creatures[i].SpawnWeight
		if roll < cumulative {
			return &r.creatures[i]
		}
	}
	return &r.creatures[0]
}

// Pick selects a creature uniformly, ignoring spawn weights. Card generation
// uses this so every family is equally likely on a card.
func (r *CreatureRegistry) Pick(rng *rand.Rand) *CreatureDef {
	if len(r.creatures) == 0 {
		return nil
	}
	return &r.creatures[rng.Intn(len(r.creatures))]
}

// GetByID returns the creature with the given id, or nil.
func (r *CreatureRegistry) GetByID(id CreatureType) *CreatureDef {
	for i := range r.creatures {
		if r.creatures[i].ID == id {
			return &r.creatures[i]
		}
	}
	return nil
}

// Count returns the number of creature families.
func (r *CreatureRegistry) Count() int {
	return len(r.creatures)
}
