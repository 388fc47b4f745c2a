package combat

import "github.com/samdwyer/cardclash/internal/gamedata"

// target says which ledger receives a card's status effect.
type target int

const (
	targetNone target = iota // Resolved inline, no ledger entry
	targetSelf
	targetOpponent
)

// effectHandler describes how one effect kind lands after the damage steps.
// onApply runs after the status entry is added and owns the narration for
// kinds with an immediate part.
type effectHandler struct {
	target  target
	onApply func(res *Result, card gamedata.Card, attacker, defender Combatant)
}

// effectHandlers has one entry per gamedata.CardEffect. Leech and double
// attack are handled inside Resolve and leave no ledger entry.
var effectHandlers = map[gamedata.CardEffect]effectHandler{
	gamedata.EffectNone:         {target: targetNone},
	gamedata.EffectLeech:        {target: targetNone},
	gamedata.EffectDoubleAttack: {target: targetNone},
	gamedata.EffectHeal:         {target: targetSelf},
	gamedata.EffectShield:       {target: targetSelf},
	gamedata.EffectBoost:        {target: targetSelf},
	gamedata.EffectReflect:      {target: targetSelf},
	gamedata.EffectWeaken:       {target: targetOpponent},
	gamedata.EffectBurn:         {target: targetOpponent, onApply: applyBurn},
	gamedata.EffectStun:         {target: targetOpponent, onApply: applyStun},
	gamedata.EffectFreeze:       {target: targetOpponent, onApply: applyFreeze},
}

func applyBurn(res *Result, card gamedata.Card, _, defender Combatant) {
	res.Burned = defender.TakeDamage(card.EffectPower)
	res.logf("%s is set ablaze for %d damage.", defender.GetName(), res.Burned)
}

func applyStun(res *Result, _ gamedata.Card, _, defender Combatant) {
	defender.Stun()
	res.Stunned = true
	res.logf("%s is stunned and will lose their next turn.", defender.GetName())
}

func applyFreeze(res *Result, _ gamedata.Card, _, defender Combatant) {
	defender.Stun()
	res.Stunned = true
	res.logf("%s is frozen solid.", defender.GetName())
}
