package battle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

func TestThresholdPolicyChoose(t *testing.T) {
	hand := []gamedata.Card{
		plainCard(4),
		effectCard(6, gamedata.EffectBurn, 2, 1),
		plainCard(11),
		plainCard(11),
	}

	tests := []struct {
		name      string
		hand      []gamedata.Card
		health    int
		maxHealth int
		want      int
	}{
		{"empty hand", nil, 50, 100, -1},
		{"weak player gets the strongest card", hand, 25, 100, 2},
		{"healthy player gets the first effect card", hand, 90, 100, 1},
		{"healthy player without effect cards", []gamedata.Card{plainCard(3), plainCard(8)}, 100, 100, 1},
		{"zero max health counts as weak", hand, 0, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewThresholdPolicy(rand.New(rand.NewSource(1)))
			assert.Equal(t, tt.want, p.Choose(tt.hand, &Side{Health: tt.health, MaxHealth: tt.maxHealth}))
		})
	}
}

func TestThresholdPolicyMiddleBandIsRandom(t *testing.T) {
	hand := []gamedata.Card{plainCard(1), plainCard(2), plainCard(3)}
	p := NewThresholdPolicy(rand.New(rand.NewSource(7)))

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		idx := p.Choose(hand, &Side{Health: 50, MaxHealth: 100})
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(hand))
		seen[idx] = true
	}
	assert.Len(t, seen, 3, "every card is eventually chosen")
}

func TestThresholdPolicyBandEdges(t *testing.T) {
	hand := []gamedata.Card{plainCard(9), effectCard(2, gamedata.EffectStun, 1, 1)}
	p := NewThresholdPolicy(rand.New(rand.NewSource(1)))

	// Exactly 70% is not above the high band, so the choice is random but valid.
	idx := p.Choose(hand, &Side{Health: 70, MaxHealth: 100})
	assert.Contains(t, []int{0, 1}, idx)

	assert.Equal(t, 0, p.Choose(hand, &Side{Health: 29, MaxHealth: 100}))
	assert.Equal(t, 1, p.Choose(hand, &Side{Health: 71, MaxHealth: 100}))
}

func TestSideHealthRatio(t *testing.T) {
	assert.InDelta(t, 0.25, (&Side{Health: 25, MaxHealth: 100}).HealthRatio(), 1e-9)
	assert.Zero(t, (&Side{Health: 10}).HealthRatio(), "zero max health")
}
