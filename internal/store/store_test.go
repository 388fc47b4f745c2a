package store

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/cardclash/internal/battle"
	"github.com/samdwyer/cardclash/internal/cardgen"
	"github.com/samdwyer/cardclash/internal/gamedata"
)

// repositories returns one of each Repository implementation.
func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	lite, err := OpenSQLite(filepath.Join(t.TempDir(), "cardclash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })
	return map[string]Repository{
		"memory": NewMemoryRepository(),
		"sqlite": lite,
	}
}

func newTestPlayer(t *testing.T, repo Repository, opts ...PlayerOption) *Player {
	t.Helper()
	tables, err := gamedata.LoadTables()
	require.NoError(t, err)
	gen := cardgen.New(tables, rand.New(rand.NewSource(3)))
	return NewPlayer(repo, "p1", gen, rand.New(rand.NewSource(4)), opts...)
}

func TestRepositoryProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetProfile(ctx, "nobody")
			require.ErrorIs(t, err, ErrNotFound)

			p := Profile{
				PlayerID:      "p1",
				Level:         3,
				Experience:    40,
				Health:        90,
				MaxHealth:     120,
				UnopenedPacks: 2,
				Cards: []gamedata.Card{
					{ID: "a", Name: "Ash Wyrm", Type: gamedata.TypeCreature, Rarity: gamedata.RarityRare, Power: 16, Cost: 6, CreatureType: gamedata.CreatureDragon, Effect: gamedata.EffectBurn, EffectPower: 4, EffectDuration: 2, UnlockLevel: 3},
					{ID: "b", Name: "Stone Ward", Type: gamedata.TypeArtifact, Rarity: gamedata.RarityCommon, Power: 5, Cost: 2, CreatureType: gamedata.CreatureGolem},
				},
				Deck: []string{"b"},
			}
			require.NoError(t, repo.SaveProfile(ctx, p))

			got, err := repo.GetProfile(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, p, got)

			// Saving again replaces the card list.
			p.Cards = p.Cards[:1]
			p.Deck = nil
			require.NoError(t, repo.SaveProfile(ctx, p))
			got, err = repo.GetProfile(ctx, "p1")
			require.NoError(t, err)
			assert.Len(t, got.Cards, 1)
			assert.Empty(t, got.Deck)
		})
	}
}

func TestMemoryRepositoryCopiesProfiles(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	p := Profile{PlayerID: "p1", Cards: []gamedata.Card{{ID: "a", Power: 5}}}
	require.NoError(t, repo.SaveProfile(ctx, p))

	p.Cards[0].Power = 99
	got, err := repo.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Cards[0].Power)

	got.Cards[0].Power = 42
	again, err := repo.GetProfile(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Cards[0].Power)
}

func TestRepositoryBattles(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"r1", "r2", "r3"} {
				require.NoError(t, repo.AddBattle(ctx, BattleRecord{
					ID:        id,
					PlayerID:  "p1",
					Level:     i + 1,
					Outcome:   "win",
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}))
			}
			require.NoError(t, repo.AddBattle(ctx, BattleRecord{ID: "other", PlayerID: "p2", CreatedAt: base}))

			all, err := repo.ListBattles(ctx, "p1", 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "r3", all[0].ID, "newest first")
			assert.Equal(t, "r1", all[2].ID)

			limited, err := repo.ListBattles(ctx, "p1", 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			rec, err := repo.GetBattle(ctx, "r2")
			require.NoError(t, err)
			assert.Equal(t, 2, rec.Level)
			assert.True(t, rec.CreatedAt.Equal(base.Add(time.Minute)))

			_, err = repo.GetBattle(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestNewPlayerGetsStarterCards(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	p := newTestPlayer(t, repo)

	prof, err := p.Profile(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, prof.Level)
	assert.Equal(t, StartingHealth, prof.Health)
	assert.Equal(t, StartingHealth, prof.MaxHealth)
	require.Len(t, prof.Cards, DefaultStarterSet)
	for _, c := range prof.Cards {
		assert.Equal(t, gamedata.RarityCommon, c.Rarity)
		assert.False(t, c.HasEffect())
	}

	// The profile is created once.
	again, err := p.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, prof.Cards, again.Cards)
}

func TestBattleHand(t *testing.T) {
	ctx := context.Background()
	p := newTestPlayer(t, NewMemoryRepository())

	hand, err := p.BattleHand(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, hand, 3, "random subset of the five starters")

	prof, err := p.Profile(ctx)
	require.NoError(t, err)
	owned := map[string]bool{}
	for _, c := range prof.Cards {
		owned[c.ID] = true
	}
	for _, c := range hand {
		assert.True(t, owned[c.ID])
	}

	all, err := p.BattleHand(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, DefaultStarterSet, "smaller collections are returned whole")

	deck := []string{prof.Cards[1].ID, prof.Cards[3].ID}
	require.NoError(t, p.SetDeck(ctx, deck))
	hand, err = p.BattleHand(ctx, 3)
	require.NoError(t, err)
	require.Len(t, hand, 2, "the deck replaces the collection")
	assert.ElementsMatch(t, deck, []string{hand[0].ID, hand[1].ID})
}

func TestSetDeckValidates(t *testing.T) {
	ctx := context.Background()
	p := newTestPlayer(t, NewMemoryRepository())
	prof, err := p.Profile(ctx)
	require.NoError(t, err)

	err = p.SetDeck(ctx, []string{prof.Cards[0].ID, "forged"})
	require.ErrorIs(t, err, ErrUnknownCard)
	after, err := p.Profile(ctx)
	require.NoError(t, err)
	assert.Empty(t, after.Deck, "failed update is not saved")

	id := prof.Cards[0].ID
	require.NoError(t, p.SetDeck(ctx, []string{id, id}))
	after, err = p.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, after.Deck)
}

func TestGainExperienceLevelsUp(t *testing.T) {
	ctx := context.Background()
	p := newTestPlayer(t, NewMemoryRepository())

	require.NoError(t, p.GainExperience(ctx, 75))
	prof, err := p.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, prof.Level)
	assert.Equal(t, 75, prof.Experience)

	// 75 + 250 crosses level 1 (100) and level 2 (200), leaving 25.
	require.NoError(t, p.GainExperience(ctx, 250))
	prof, err = p.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, prof.Level)
	assert.Equal(t, 25, prof.Experience)
	assert.Equal(t, StartingHealth+2*HealthPerLevel, prof.MaxHealth)
	assert.Equal(t, prof.MaxHealth, prof.Health)
	assert.Equal(t, 2, prof.UnopenedPacks)

	level, err := p.Level(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, level)
}

func TestOpenPack(t *testing.T) {
	ctx := context.Background()
	p := newTestPlayer(t, NewMemoryRepository())

	_, err := p.OpenPack(ctx)
	require.ErrorIs(t, err, ErrNoPacks)

	require.NoError(t, p.GainExperience(ctx, 100))
	cards, err := p.OpenPack(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, PackSize)
	for _, c := range cards {
		assert.Equal(t, 2, c.UnlockLevel, "pack cards use the player's level")
	}

	prof, err := p.Profile(ctx)
	require.NoError(t, err)
	assert.Zero(t, prof.UnopenedPacks)
	assert.Len(t, prof.Cards, DefaultStarterSet+PackSize)
}

func TestRecordBattle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			p := newTestPlayer(t, repo, WithClock(func() time.Time { return now }))
			reward := gamedata.Card{ID: "r", Name: "Gilded Golem"}

			require.NoError(t, p.RecordBattle(ctx, battle.Summary{
				Level:            2,
				Outcome:          battle.OutcomeWin,
				Turns:            7,
				EnemyName:        "Golem Champion",
				PlayerHealth:     64,
				ExperienceGained: 100,
				Reward:           &reward,
			}))

			recs, err := p.Battles(ctx, 10)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			rec := recs[0]
			assert.NotEmpty(t, rec.ID)
			assert.Equal(t, "win", rec.Outcome)
			assert.Equal(t, "Gilded Golem", rec.RewardCard)
			assert.Equal(t, 7, rec.Turns)
			assert.True(t, rec.CreatedAt.Equal(now))

			got, err := p.Battle(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)

			other := NewPlayer(repo, "p2", nil, rand.New(rand.NewSource(1)))
			_, err = other.Battle(ctx, rec.ID)
			assert.ErrorIs(t, err, ErrNotFound, "records are private to their player")
		})
	}
}

func TestPlayerPersistsInSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cardclash.db")

	repo, err := OpenSQLite(path)
	require.NoError(t, err)
	p := newTestPlayer(t, repo)
	require.NoError(t, p.GainExperience(ctx, 120))
	first, err := p.Profile(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = OpenSQLite(path)
	require.NoError(t, err)
	defer repo.Close()
	reloaded, err := newTestPlayer(t, repo).Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, reloaded)
}

func TestOpen(t *testing.T) {
	repo, err := Open("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	repo, err = Open(filepath.Join(t.TempDir(), "open.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Close())
}
