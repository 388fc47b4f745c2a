// Package cardgen produces cards for starter decks, packs, enemy hands and
// battle rewards.
package cardgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/telemetry"
)

const (
	// powerPerLevel is the flat power bonus enemy and reward cards gain per level above 1.
	powerPerLevel = 2
	// enemyEffectBonus is added to the effect chance of enemy cards per level above 1.
	enemyEffectBonus = 0.05
	// effectPowerRatio scales card power into effect magnitude.
	effectPowerRatio = 0.3
)

// ErrUnknownSource is returned for a source the generator has no rules for.
var ErrUnknownSource = errors.New("unknown card source")

// Generator creates cards from the embedded balance tables. It is safe for
// concurrent use.
type Generator struct {
	tables *gamedata.Tables
	newID  func() string

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator. The rng is owned by the generator afterwards.
func New(tables *gamedata.Tables, rng *rand.Rand) *Generator {
	return &Generator{
		tables: tables,
		rng:    rng,
		newID:  uuid.NewString,
	}
}

// Generate produces one card for source at level. Levels below 1 are treated as 1.
func (g *Generator) Generate(source gamedata.CardSource, level int) (gamedata.Card, error) {
	if level < 1 {
		level = 1
	}
	switch source {
	case gamedata.SourceStarter, gamedata.SourcePack, gamedata.SourceEnemy, gamedata.SourceReward:
	default:
		return gamedata.Card{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	rarity, err := g.tables.Rarities.Roll(g.rng, source, level)
	if err != nil {
		return gamedata.Card{}, fmt.Errorf("roll rarity: %w", err)
	}
	creature := g.tables.Creatures.Pick(g.rng)
	if creature == nil {
		return gamedata.Card{}, errors.New("no creature families loaded")
	}
	types := gamedata.AllCardTypes()
	cardType := types[g.rng.Intn(len(types))]

	power := g.rollPower(rarity, source, level)
	card := gamedata.Card{
		ID:           g.newID(),
		Name:         g.tables.Names.Compose(g.rng, rarity.ID, cardType, creature),
		Type:         cardType,
		Rarity:       rarity.ID,
		Power:        power,
		Cost:         gamedata.CostForPower(power),
		CreatureType: creature.ID,
		Color:        creature.Color,
		Effect:       gamedata.EffectNone,
		UnlockLevel:  level,
	}

	if source != gamedata.SourceStarter && g.rng.Float64() < effectChance(rarity, source, level) {
		pool := gamedata.EffectPool(cardType)
		card.Effect = pool[g.rng.Intn(len(pool))]
		card.EffectPower = int(float64(power)*effectPowerRatio) + g.rng.Intn(3)
		card.EffectDuration = rarity.EffectDuration
		if card.EffectDuration < 1 {
			card.EffectDuration = 1
		}
	}
	card.Description = Describe(card)
	return card, nil
}

// GenerateHand produces n cards for source at level. It fails as a whole:
// either all n cards are returned or none.
func (g *Generator) GenerateHand(ctx context.Context, source gamedata.CardSource, level, n int) ([]gamedata.Card, error) {
	_, span := telemetry.Tracer("cardgen").Start(ctx, "cardgen.generate_hand")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", string(source)),
		attribute.Int("level", level),
		attribute.Int("count", n),
	)

	cards := make([]gamedata.Card, 0, n)
	for i := 0; i < n; i++ {
		card, err := g.Generate(source, level)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (g *Generator) rollPower(rarity *gamedata.RarityDef, source gamedata.CardSource, level int) int {
	power := rarity.BasePower
	switch source {
	case gamedata.SourceEnemy, gamedata.SourceReward:
		power += (level-1)*powerPerLevel + g.rng.Intn(4)
	default:
		power += g.rng.Intn(3)
	}
	if power < 1 {
		power = 1
	}
	return power
}

func effectChance(rarity *gamedata.RarityDef, source gamedata.CardSource, level int) float64 {
	chance := rarity.EffectChance
	if source == gamedata.SourceEnemy {
		chance += enemyEffectBonus * float64(level-1)
	}
	if chance > 1 {
		chance = 1
	}
	return chance
}
