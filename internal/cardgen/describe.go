package cardgen

import (
	"fmt"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

// Describe returns the rules text shown under a card's name.
func Describe(card gamedata.Card) string {
	base := fmt.Sprintf("Deals %d damage.", card.Power)
	p, d := card.EffectPower, card.EffectDuration

	switch card.EffectKind() {
	case gamedata.EffectStun:
		return base + " Stuns the opponent, skipping their next turn."
	case gamedata.EffectFreeze:
		return base + " Freezes the opponent in place for a turn."
	case gamedata.EffectHeal:
		return base + fmt.Sprintf(" Restores %d health at the end of your turn for %s.", p, turns(d))
	case gamedata.EffectShield:
		return base + fmt.Sprintf(" Blocks %d damage per hit for %s.", p, turns(d))
	case gamedata.EffectBurn:
		return base + fmt.Sprintf(" Burns for %d now and %d each turn for %s.", p, p, turns(d))
	case gamedata.EffectLeech:
		return base + fmt.Sprintf(" Drains up to %d health.", p)
	case gamedata.EffectBoost:
		return base + fmt.Sprintf(" Adds %d power to your attacks for %s.", p, turns(d))
	case gamedata.EffectWeaken:
		return base + fmt.Sprintf(" Weakens attacks against the opponent by %d for %s.", p, turns(d))
	case gamedata.EffectDoubleAttack:
		return base + " Strikes twice."
	case gamedata.EffectReflect:
		return base + fmt.Sprintf(" Reflects %d%% of incoming damage for %s.", p, turns(d))
	default:
		return base
	}
}

func turns(n int) string {
	if n == 1 {
		return "1 turn"
	}
	return fmt.Sprintf("%d turns", n)
}
