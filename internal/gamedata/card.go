package gamedata

import "github.com/gdamore/tcell/v2"

// CardType is the broad category of a card. It decides which effects a card
// can roll.
type CardType string

const (
	TypeSpell    CardType = "spell"
	TypeCreature CardType = "creature"
	TypeArtifact CardType = "artifact"
)

// AllCardTypes lists every card type in generation order.
func AllCardTypes() []CardType {
	return []CardType{TypeSpell, TypeCreature, TypeArtifact}
}

// Rarity grades a card. Higher rarities have more power and are more likely
// to carry an effect.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// CreatureType is the flavour family of a card and of overworld encounters.
type CreatureType string

const (
	CreatureDragon    CreatureType = "dragon"
	CreatureElemental CreatureType = "elemental"
	CreatureBeast     CreatureType = "beast"
	CreatureUndead    CreatureType = "undead"
	CreatureGolem     CreatureType = "golem"
)

// CardEffect is the special rule a card applies when played.
type CardEffect string

const (
	EffectNone         CardEffect = "none"
	EffectStun         CardEffect = "stun"
	EffectHeal         CardEffect = "heal"
	EffectShield       CardEffect = "shield"
	EffectBurn         CardEffect = "burn"
	EffectLeech        CardEffect = "leech"
	EffectBoost        CardEffect = "boost"
	EffectWeaken       CardEffect = "weaken"
	EffectDoubleAttack CardEffect = "double_attack"
	EffectReflect      CardEffect = "reflect"
	EffectFreeze       CardEffect = "freeze"
)

// AllEffects lists every effect kind, including EffectNone.
func AllEffects() []CardEffect {
	return []CardEffect{
		EffectNone, EffectStun, EffectHeal, EffectShield, EffectBurn, EffectLeech,
		EffectBoost, EffectWeaken, EffectDoubleAttack, EffectReflect, EffectFreeze,
	}
}

// effectPools maps each card type to the effects it may roll.
var effectPools = map[CardType][]CardEffect{
	TypeCreature: {EffectLeech, EffectDoubleAttack, EffectShield, EffectBoost},
	TypeSpell:    {EffectStun, EffectBurn, EffectFreeze, EffectWeaken, EffectHeal},
	TypeArtifact: {EffectShield, EffectReflect, EffectBoost},
}

// EffectPool returns the effects a card of type t can carry.
func EffectPool(t CardType) []CardEffect {
	return effectPools[t]
}

// CardSource tells the generator why a card is being made.
type CardSource string

const (
	SourceStarter CardSource = "starter"
	SourcePack    CardSource = "pack"
	SourceEnemy   CardSource = "enemy"
	SourceReward  CardSource = "reward"
)

// Card is an immutable card value. Cards are created by the generator and
// never mutated afterwards; combat reads them and writes status effects
// elsewhere.
type Card struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Type           CardType     `json:"type"`
	Rarity         Rarity       `json:"rarity"`
	Power          int          `json:"power"`
	Cost           int          `json:"cost"`
	CreatureType   CreatureType `json:"creatureType"`
	Color          string       `json:"color"`
	Effect         CardEffect   `json:"effect,omitempty"`
	EffectPower    int          `json:"effectPower,omitempty"`
	EffectDuration int          `json:"effectDuration,omitempty"`
	UnlockLevel    int          `json:"unlockLevel,omitempty"`
}

// HasEffect reports whether the card carries a special rule.
func (c Card) HasEffect() bool {
	return c.Effect != "" && c.Effect != EffectNone
}

// EffectKind returns the card's effect, mapping the empty value to EffectNone.
func (c Card) EffectKind() CardEffect {
	if c.Effect == "" {
		return EffectNone
	}
	return c.Effect
}

// TCellColor returns the card colour for terminal rendering, or white when the
// stored hex value is unusable.
func (c Card) TCellColor() tcell.Color {
	color, err := ParseHexColor(c.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// CostForPower returns ceil(power/3), the mana cost of a card with that power.
func CostForPower(power int) int {
	if power <= 0 {
		return 0
	}
	return (power + 2) / 3
}
