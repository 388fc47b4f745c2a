package combat

import (
	"testing"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

func TestLedgerNoMerging(t *testing.T) {
	var l Ledger
	l.Add(StatusEffect{Effect: gamedata.EffectShield, Power: 3, Duration: 1})
	l.Add(StatusEffect{Effect: gamedata.EffectShield, Power: 4, Duration: 2})
	l.Add(StatusEffect{Effect: gamedata.EffectBoost, Power: 2, Duration: 1})

	if got := len(l.OfKind(gamedata.EffectShield)); got != 2 {
		t.Errorf("Expected 2 shield entries, got %d", got)
	}
	if got := l.Sum(gamedata.EffectShield); got != 7 {
		t.Errorf("Expected shield sum 7, got %d", got)
	}
	first, ok := l.First(gamedata.EffectShield)
	if !ok || first.Power != 3 {
		t.Errorf("Expected first shield power 3, got %+v", first)
	}
	if l.Has(gamedata.EffectReflect) {
		t.Error("Unexpected reflect entry")
	}
}

func TestLedgerClone(t *testing.T) {
	var l Ledger
	l.Add(StatusEffect{Effect: gamedata.EffectBurn, Power: 2, Duration: 2})
	c := l.Clone()
	c[0].Duration = 9
	if l[0].Duration != 2 {
		t.Error("Clone shares storage with the original")
	}
}

func TestDecayBurnTicks(t *testing.T) {
	owner := newMockCombatant("Enemy", 30)
	owner.effects.Add(StatusEffect{Effect: gamedata.EffectBurn, Power: 3, Duration: 2})

	ticks := Decay(owner)
	if len(ticks) != 1 || ticks[0].Amount != 3 || ticks[0].Ended {
		t.Fatalf("First tick = %+v", ticks)
	}
	if owner.health != 27 {
		t.Errorf("Expected 27 after first tick, got %d", owner.health)
	}

	ticks = Decay(owner)
	if len(ticks) != 1 || !ticks[0].Ended {
		t.Fatalf("Second tick = %+v", ticks)
	}
	if owner.health != 24 {
		t.Errorf("Expected 24 after second tick, got %d", owner.health)
	}
	if len(owner.effects) != 0 {
		t.Errorf("Burn should be removed, got %v", owner.effects)
	}

	if ticks := Decay(owner); ticks != nil {
		t.Errorf("Empty ledger produced ticks: %v", ticks)
	}
	if owner.health != 24 {
		t.Errorf("Expired burn kept ticking, health %d", owner.health)
	}
}

func TestDecayHealTick(t *testing.T) {
	owner := newMockCombatant("Player", 30)
	owner.health = 28
	owner.effects.Add(StatusEffect{Effect: gamedata.EffectHeal, Power: 5, Duration: 1})

	ticks := Decay(owner)

	if owner.health != 30 {
		t.Errorf("Heal tick should cap at 30, got %d", owner.health)
	}
	if ticks[0].Amount != 2 {
		t.Errorf("Expected 2 healed, got %d", ticks[0].Amount)
	}
}

func TestDecayCountsDownEachEntry(t *testing.T) {
	owner := newMockCombatant("Player", 30)
	owner.effects.Add(StatusEffect{Effect: gamedata.EffectShield, Power: 3, Duration: 1})
	owner.effects.Add(StatusEffect{Effect: gamedata.EffectBoost, Power: 2, Duration: 3})
	owner.effects.Add(StatusEffect{Effect: gamedata.EffectShield, Power: 4, Duration: 2})

	Decay(owner)

	if len(owner.effects) != 2 {
		t.Fatalf("Expected 2 entries left, got %v", owner.effects)
	}
	if owner.effects[0].Effect != gamedata.EffectBoost || owner.effects[0].Duration != 2 {
		t.Errorf("Unexpected first entry %+v", owner.effects[0])
	}
	if owner.effects[1].Effect != gamedata.EffectShield || owner.effects[1].Duration != 1 {
		t.Errorf("Unexpected second entry %+v", owner.effects[1])
	}
	if owner.health != 30 {
		t.Errorf("Non-ticking effects changed health to %d", owner.health)
	}
}

func TestDecaySkipsFreshEntryOnce(t *testing.T) {
	owner := newMockCombatant("Player", 30)
	owner.health = 20
	owner.effects.Add(StatusEffect{Effect: gamedata.EffectShield, Power: 4, Duration: 1, Fresh: true})
	owner.effects.Add(StatusEffect{Effect: gamedata.EffectHeal, Power: 3, Duration: 1, Fresh: true})

	if ticks := Decay(owner); len(ticks) != 0 {
		t.Errorf("Fresh entries produced ticks: %v", ticks)
	}
	if len(owner.effects) != 2 || owner.effects[0].Fresh || owner.effects[0].Duration != 1 {
		t.Fatalf("Fresh entries should survive unmarked, got %+v", owner.effects)
	}
	if owner.health != 20 {
		t.Errorf("Fresh heal ticked on the cast turn, health %d", owner.health)
	}

	ticks := Decay(owner)
	if len(ticks) != 2 || !ticks[0].Ended || !ticks[1].Ended {
		t.Fatalf("Second decay = %+v", ticks)
	}
	if owner.health != 23 {
		t.Errorf("Expected heal tick to 23, got %d", owner.health)
	}
	if len(owner.effects) != 0 {
		t.Errorf("Expected empty ledger, got %v", owner.effects)
	}
}
