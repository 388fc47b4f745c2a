package combat

import "github.com/samdwyer/cardclash/internal/gamedata"

// StatusEffect is one timed effect owned by a combatant's ledger.
type StatusEffect struct {
	Effect     gamedata.CardEffect `json:"effect"`
	Power      int                 `json:"power"`
	Duration   int                 `json:"duration"` // Remaining turns
	SourceCard string              `json:"sourceCard,omitempty"`
	Fresh      bool                `json:"fresh,omitempty"` // Cast on the owner's own turn, not yet decayed
}

// StatusTick records what happened to one effect during decay.
type StatusTick struct {
	Effect gamedata.CardEffect
	Amount int  // Damage taken or health restored by the tick
	Ended  bool // True if the effect expired
}

// Ledger is the list of active status effects of one combatant. Entries of
// the same kind never merge: each one contributes on its own.
type Ledger []StatusEffect

// Add appends an effect.
func (l *Ledger) Add(effect StatusEffect) {
	*l = append(*l, effect)
}

// OfKind returns the entries of the given kind, in the order they were added.
func (l Ledger) OfKind(kind gamedata.CardEffect) []StatusEffect {
	var out []StatusEffect
	for _, e := range l {
		if e.Effect == kind {
			out = append(out, e)
		}
	}
	return out
}

// Sum adds up the power of every entry of the given kind.
func (l Ledger) Sum(kind gamedata.CardEffect) int {
	total := 0
	for _, e := range l {
		if e.Effect == kind {
			total += e.Power
		}
	}
	return total
}

// First returns the oldest entry of the given kind.
func (l Ledger) First(kind gamedata.CardEffect) (StatusEffect, bool) {
	for _, e := range l {
		if e.Effect == kind {
			return e, true
		}
	}
	return StatusEffect{}, false
}

// Has reports whether any entry of the given kind is active.
func (l Ledger) Has(kind gamedata.CardEffect) bool {
	_, ok := l.First(kind)
	return ok
}

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}

// Clear removes every entry.
func (l *Ledger) Clear() {
	*l = nil
}

// Decay runs the end-of-turn pass over the owner's ledger: burn damages the
// owner, heal restores the owner, then every entry loses one turn and entries
// at zero are removed. Fresh entries only lose their mark, so an effect cast
// on the owner's own turn lasts through the opponent's next turn. It must run
// exactly once per turn the owner ends.
func Decay(owner Combatant) []StatusTick {
	ledger := owner.Effects()
	if len(*ledger) == 0 {
		return nil
	}

	ticks := make([]StatusTick, 0, len(*ledger))
	remaining := (*ledger)[:0]
	for _, effect := range *ledger {
		if effect.Fresh {
			effect.Fresh = false
			remaining = append(remaining, effect)
			continue
		}
		tick := StatusTick{Effect: effect.Effect}

		switch effect.Effect {
		case gamedata.EffectBurn:
			tick.Amount = owner.TakeDamage(effect.Power)
		case gamedata.EffectHeal:
			tick.Amount = owner.Heal(effect.Power)
		}

		effect.Duration--
		if effect.Duration <= 0 {
			tick.Ended = true
		} else {
			remaining = append(remaining, effect)
		}
		ticks = append(ticks, tick)
	}
	*ledger = remaining
	return ticks
}
