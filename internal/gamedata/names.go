package gamedata

import (
	"errors"
	"math/rand"
)

// NameParts holds the word lists card names are composed from.
type NameParts struct {
	Adjectives    map[Rarity][]string       `json:"adjectives"`
	CreatureNouns map[CreatureType][]string `json:"creatureNouns"`
	SpellNouns    []string                  `json:"spellNouns"`
	ArtifactNouns []string                  `json:"artifactNouns"`
}

// LoadNameParts loads the embedded cardnames.json.
func LoadNameParts() (*NameParts, error) {
	parts, err := Load[NameParts]("cardnames.json")
	if err != nil {
		return nil, err
	}
	if len(parts.SpellNouns) == 0 || len(parts.ArtifactNouns) == 0 {
		return nil, errors.New("cardnames.json is missing noun lists")
	}
	return &parts, nil
}

// Compose builds a card name such as "Ancient Drake" or "Lesser Draconic Bolt".
func (n *NameParts) Compose(rng *rand.Rand, rarity Rarity, cardType CardType, creature *CreatureDef) string {
	name := pickWord(rng, n.Adjectives[rarity])

	switch cardType {
	case TypeCreature:
		noun := pickWord(rng, n.CreatureNouns[creature.ID])
		if noun == "" {
			noun = creature.Name
		}
		name = join(name, noun)
	case TypeSpell:
		name = join(join(name, creature.Affix), pickWord(rng, n.SpellNouns))
	default:
		name = join(join(name, creature.Affix), pickWord(rng, n.ArtifactNouns))
	}
	if name == "" {
		return creature.Name
	}
	return name
}

func pickWord(rng *rand.Rand, words []string) string {
	if len(words) == 0 {
		return ""
	}
	return words[rng.Intn(len(words))]
}

func join(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
