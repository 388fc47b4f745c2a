package cardgen

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

func newTestGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	tables, err := gamedata.LoadTables()
	if err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}
	return New(tables, rand.New(rand.NewSource(seed)))
}

func TestStarterCardsAreCommonWithoutEffect(t *testing.T) {
	g := newTestGenerator(t, 1)

	for i := 0; i < 100; i++ {
		card, err := g.Generate(gamedata.SourceStarter, 1)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if card.Rarity != gamedata.RarityCommon {
			t.Errorf("Starter card rarity = %s, want common", card.Rarity)
		}
		if card.HasEffect() {
			t.Errorf("Starter card has effect %s", card.Effect)
		}
	}
}

func TestGeneratedCardInvariants(t *testing.T) {
	g := newTestGenerator(t, 42)
	durations := map[gamedata.Rarity]int{
		gamedata.RarityCommon:    1,
		gamedata.RarityUncommon:  1,
		gamedata.RarityRare:      2,
		gamedata.RarityEpic:      2,
		gamedata.RarityLegendary: 3,
	}
	sources := []gamedata.CardSource{gamedata.SourcePack, gamedata.SourceEnemy, gamedata.SourceReward}
	seen := map[string]bool{}

	for _, source := range sources {
		for level := 1; level <= 6; level++ {
			for i := 0; i < 50; i++ {
				card, err := g.Generate(source, level)
				if err != nil {
					t.Fatalf("Generate(%s, %d) failed: %v", source, level, err)
				}
				if card.ID == "" || seen[card.ID] {
					t.Fatalf("Card id %q empty or duplicated", card.ID)
				}
				seen[card.ID] = true

				if card.Power < 1 {
					t.Errorf("Power %d < 1", card.Power)
				}
				if card.Cost != (card.Power+2)/3 {
					t.Errorf("Cost %d != ceil(%d/3)", card.Cost, card.Power)
				}
				if !card.HasEffect() {
					continue
				}
				if !inPool(card.Type, card.Effect) {
					t.Errorf("Effect %s not allowed on %s", card.Effect, card.Type)
				}
				if card.EffectDuration != durations[card.Rarity] {
					t.Errorf("%s duration = %d, want %d", card.Rarity, card.EffectDuration, durations[card.Rarity])
				}
				minPower := int(float64(card.Power) * 0.3)
				if card.EffectPower < minPower || card.EffectPower > minPower+2 {
					t.Errorf("Effect power %d outside [%d,%d]", card.EffectPower, minPower, minPower+2)
				}
			}
		}
	}
}

func TestLegendaryAlwaysHasEffect(t *testing.T) {
	g := newTestGenerator(t, 9)
	found := 0
	for i := 0; i < 2000 && found < 10; i++ {
		card, err := g.Generate(gamedata.SourceReward, 3)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if card.Rarity != gamedata.RarityLegendary {
			continue
		}
		found++
		if !card.HasEffect() {
			t.Errorf("Legendary card %s has no effect", card.Name)
		}
	}
	if found == 0 {
		t.Fatal("No legendary cards rolled")
	}
}

func TestRewardBiasedAbovePack(t *testing.T) {
	g := newTestGenerator(t, 5)
	rank := func(source gamedata.CardSource) float64 {
		total := 0
		for i := 0; i < 2000; i++ {
			card, err := g.Generate(source, 1)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			total += g.tables.Rarities.Rank(card.Rarity)
		}
		return float64(total) / 2000
	}

	if pack, reward := rank(gamedata.SourcePack), rank(gamedata.SourceReward); reward <= pack {
		t.Errorf("Reward average rarity %.2f not above pack %.2f", reward, pack)
	}
}

func TestEnemyCardsScaleWithLevel(t *testing.T) {
	g := newTestGenerator(t, 11)
	avg := func(level int) float64 {
		total := 0
		for i := 0; i < 1000; i++ {
			card, err := g.Generate(gamedata.SourceEnemy, level)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			total += card.Power
		}
		return float64(total) / 1000
	}

	if low, high := avg(1), avg(8); high <= low {
		t.Errorf("Level 8 average power %.1f not above level 1 %.1f", high, low)
	}
}

func TestGenerateUnknownSource(t *testing.T) {
	g := newTestGenerator(t, 1)
	_, err := g.Generate("shop", 1)
	if !errors.Is(err, ErrUnknownSource) {
		t.Errorf("Expected ErrUnknownSource, got %v", err)
	}
}

func TestGenerateHand(t *testing.T) {
	g := newTestGenerator(t, 2)
	hand, err := g.GenerateHand(context.Background(), gamedata.SourceEnemy, 2, 3)
	if err != nil {
		t.Fatalf("GenerateHand failed: %v", err)
	}
	if len(hand) != 3 {
		t.Errorf("Hand size = %d, want 3", len(hand))
	}

	if _, err := g.GenerateHand(context.Background(), "shop", 1, 2); err == nil {
		t.Error("Expected hand generation to fail for unknown source")
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	g1 := newTestGenerator(t, 77)
	g2 := newTestGenerator(t, 77)
	for i := 0; i < 20; i++ {
		a, _ := g1.Generate(gamedata.SourcePack, 2)
		b, _ := g2.Generate(gamedata.SourcePack, 2)
		if a.Name != b.Name || a.Power != b.Power || a.Effect != b.Effect {
			t.Errorf("Card %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestDescribe(t *testing.T) {
	card := gamedata.Card{Power: 12, Effect: gamedata.EffectBurn, EffectPower: 3, EffectDuration: 2}
	want := "Deals 12 damage. Burns for 3 now and 3 each turn for 2 turns."
	if got := Describe(card); got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
	if got := Describe(gamedata.Card{Power: 5}); got != "Deals 5 damage." {
		t.Errorf("Describe plain = %q", got)
	}
}

func inPool(cardType gamedata.CardType, effect gamedata.CardEffect) bool {
	for _, e := range gamedata.EffectPool(cardType) {
		if e == effect {
			return true
		}
	}
	return false
}
