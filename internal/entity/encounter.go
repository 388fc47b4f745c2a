package entity

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

// Encounter is a creature waiting on the map. Stepping on it starts a battle
// at its level.
type Encounter struct {
	Creature *gamedata.CreatureDef
	Level    int
	X, Y     int
	Region   int
}

// NewEncounter places a creature of the given level at x, y in a region.
func NewEncounter(creature *gamedata.CreatureDef, level, x, y, region int) *Encounter {
	return &Encounter{Creature: creature, Level: max(level, 1), X: x, Y: y, Region: region}
}

// Position returns the encounter's x, y coordinates.
func (e *Encounter) Position() (int, int) {
	return e.X, e.Y
}

// Symbol returns the creature glyph.
func (e *Encounter) Symbol() rune {
	if e.Creature == nil {
		return '?'
	}
	return e.Creature.GlyphRune()
}

// Color returns the creature colour.
func (e *Encounter) Color() tcell.Color {
	if e.Creature == nil {
		return tcell.ColorPurple
	}
	return e.Creature.TCellColor()
}

// Name is what the message log calls the encounter.
func (e *Encounter) Name() string {
	name := "Unknown"
	if e.Creature != nil {
		name = e.Creature.Name
	}
	return fmt.Sprintf("%s (level %d)", name, e.Level)
}
