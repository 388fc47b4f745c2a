// Package combat resolves card plays between two combatants and keeps their
// status effect ledgers.
package combat

import (
	"fmt"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

// Combatant is one side of a battle. The player and the enemy both
// implement it.
type Combatant interface {
	GetName() string
	GetHealth() int
	GetMaxHealth() int

	TakeDamage(amount int) int // Returns actual damage taken
	Heal(amount int) int       // Returns actual amount healed

	Effects() *Ledger
	Stun() // Flag the side to skip its next turn
}

// Outcome is the lethal check result of a resolution.
type Outcome int

const (
	// Continue means both sides are still standing.
	Continue Outcome = iota
	// AttackerWins means the defender was brought to zero health.
	AttackerWins
	// DefenderWins means reflected damage brought the attacker to zero health.
	DefenderWins
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case AttackerWins:
		return "attacker_wins"
	case DefenderWins:
		return "defender_wins"
	default:
		return "unknown"
	}
}

// Result contains everything one card play did.
type Result struct {
	Card           gamedata.Card
	EffectivePower int
	Hits           []int // Damage dealt by each strike, after shields
	Blocked        int   // Damage absorbed by shields over all strikes
	Reflected      int
	Leeched        int
	Burned         int // Immediate burn damage
	StatusAdded    gamedata.CardEffect
	Stunned        bool
	Outcome        Outcome
	Log            []string // Narration, in order
}

// Damage returns the total strike damage dealt to the defender.
func (r Result) Damage() int {
	total := 0
	for _, h := range r.Hits {
		total += h
	}
	return total
}

func (r *Result) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Resolver applies card plays. It holds no battle state of its own.
type Resolver struct {
	handlers map[gamedata.CardEffect]effectHandler
}

// NewResolver creates a resolver with the full effect handler table.
func NewResolver() *Resolver {
	return &Resolver{handlers: effectHandlers}
}

// EffectivePower returns card power after the attacker's boosts and the
// defender's weakens, never below 1.
func EffectivePower(card gamedata.Card, attacker, defender Ledger) int {
	power := card.Power + attacker.Sum(gamedata.EffectBoost)
	power -= defender.Sum(gamedata.EffectWeaken)
	if power < 1 {
		power = 1
	}
	return power
}

// Resolve plays card from attacker against defender. The order is fixed:
// boost, weaken, shield, damage, reflect, leech, lethal check, second
// strike, then the card's status effect.
func (r *Resolver) Resolve(card gamedata.Card, attacker, defender Combatant) Result {
	res := Result{Card: card}
	res.EffectivePower = EffectivePower(card, *attacker.Effects(), *defender.Effects())
	res.logf("%s plays %s for %d power.", attacker.GetName(), card.Name, res.EffectivePower)

	r.strike(&res, defender)

	if reflect, ok := defender.Effects().First(gamedata.EffectReflect); ok {
		if amount := res.EffectivePower * reflect.Power / 100; amount > 0 {
			res.Reflected = attacker.TakeDamage(amount)
			res.logf("%s reflects %d damage back to %s.", defender.GetName(), res.Reflected, attacker.GetName())
			if attacker.GetHealth() <= 0 {
				res.Outcome = DefenderWins
				return res
			}
		}
	}

	if card.EffectKind() == gamedata.EffectLeech {
		res.Leeched = attacker.Heal(min(res.EffectivePower, card.EffectPower))
		res.logf("%s drains %d health.", attacker.GetName(), res.Leeched)
	}

	if defender.GetHealth() <= 0 {
		res.Outcome = AttackerWins
		return res
	}

	if card.EffectKind() == gamedata.EffectDoubleAttack {
		res.logf("%s strikes again!", attacker.GetName())
		r.strike(&res, defender)
		if defender.GetHealth() <= 0 {
			res.Outcome = AttackerWins
			return res
		}
	}

	r.applyStatus(&res, card, attacker, defender)
	if defender.GetHealth() <= 0 {
		res.Outcome = AttackerWins
	}
	return res
}

// strike applies one hit of the effective power through the defender's shields.
func (r *Resolver) strike(res *Result, defender Combatant) {
	damage := res.EffectivePower
	if shields := defender.Effects().OfKind(gamedata.EffectShield); len(shields) > 0 {
		blocked := 0
		for _, s := range shields {
			blocked += s.Power
		}
		damage = max(0, damage-blocked)
		res.Blocked += res.EffectivePower - damage
	}

	dealt := defender.TakeDamage(damage)
	res.Hits = append(res.Hits, dealt)
	if res.EffectivePower > damage {
		res.logf("%s takes %d damage (%d blocked).", defender.GetName(), dealt, res.EffectivePower-damage)
	} else {
		res.logf("%s takes %d damage.", defender.GetName(), dealt)
	}
}

func (r *Resolver) applyStatus(res *Result, card gamedata.Card, attacker, defender Combatant) {
	handler, ok := r.handlers[card.EffectKind()]
	if !ok || handler.target == targetNone {
		return
	}

	owner := defender
	if handler.target == targetSelf {
		owner = attacker
	}
	duration := card.EffectDuration
	if duration < 1 {
		duration = 1
	}
	owner.Effects().Add(StatusEffect{
		Effect:     card.EffectKind(),
		Power:      card.EffectPower,
		Duration:   duration,
		SourceCard: card.ID,
		Fresh:      handler.target == targetSelf,
	})
	res.StatusAdded = card.EffectKind()

	if handler.onApply != nil {
		handler.onApply(res, card, attacker, defender)
		return
	}
	res.logf("%s gains %s %d for %d turn(s).", owner.GetName(), card.EffectKind(), card.EffectPower, duration)
}
