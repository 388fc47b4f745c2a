package world

import (
	"github.com/samdwyer/cardclash/internal/entity"
	"github.com/samdwyer/cardclash/internal/gamedata"
)

// EncounterLevel is the battle level of creatures in region i. Regions
// further from the start are harder.
func EncounterLevel(region int) int {
	return 1 + region/2
}

// SpawnEncounters places perRegion creatures, chosen by spawn weight, in
// every region but the first. Two encounters never share a tile and none
// sits on the start point.
func (m *Map) SpawnEncounters(creatures *gamedata.CreatureRegistry, perRegion int) []*entity.Encounter {
	if creatures == nil || perRegion <= 0 {
		return nil
	}
	sx, sy := m.Start()
	taken := map[[2]int]bool{{sx, sy}: true}

	var out []*entity.Encounter
	for i := 1; i < len(m.Regions); i++ {
		for n := 0; n < perRegion; n++ {
			x, y := m.RandomPoint(i)
			if taken[[2]int{x, y}] {
				continue
			}
			taken[[2]int{x, y}] = true
			def := creatures.SpawnRandom(m.rng)
			out = append(out, entity.NewEncounter(def, EncounterLevel(i), x, y, i))
		}
	}
	return out
}
