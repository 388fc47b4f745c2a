package battle

import (
	"math/rand"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

// Policy picks the card the enemy plays against opponent. It returns -1 when
// the hand is empty.
type Policy interface {
	Choose(hand []gamedata.Card, opponent *Side) int
}

// ThresholdPolicy plays by the player's health ratio: finish a weak player
// with the strongest card, open against a healthy player with an effect
// card, otherwise pick at random.
type ThresholdPolicy struct {
	rng  *rand.Rand
	Low  float64 // Below this ratio, play the strongest card
	High float64 // Above this ratio, prefer an effect card
}

// NewThresholdPolicy creates the standard policy with 30% and 70% bands.
func NewThresholdPolicy(rng *rand.Rand) *ThresholdPolicy {
	return &ThresholdPolicy{rng: rng, Low: 0.3, High: 0.7}
}

// Choose implements Policy.
func (p *ThresholdPolicy) Choose(hand []gamedata.Card, opponent *Side) int {
	if len(hand) == 0 {
		return -1
	}

	switch ratio := opponent.HealthRatio(); {
	case ratio < p.Low:
		return strongestCard(hand)
	case ratio > p.High:
		for i, card := range hand {
			if card.HasEffect() {
				return i
			}
		}
		return strongestCard(hand)
	default:
		return p.rng.Intn(len(hand))
	}
}

// strongestCard returns the index of the highest-power card; the first wins ties.
func strongestCard(hand []gamedata.Card) int {
	best := 0
	for i := 1; i < len(hand); i++ {
		if hand[i].Power > hand[best].Power {
			best = i
		}
	}
	return best
}
