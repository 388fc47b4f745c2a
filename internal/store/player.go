package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/battle"
	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/telemetry"
)

// Progression constants for new and levelling players.
const (
	StartingHealth    = 100
	HealthPerLevel    = 10
	PackSize          = 3
	DefaultStarterSet = 5
)

// Player is one player's view of a Repository. It is the collection,
// progression and battle recorder the battle engine talks to.
type Player struct {
	repo      Repository
	id        string
	generator battle.CardGenerator
	rng       *rand.Rand
	starters  int
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time

	mu sync.Mutex
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithStarterCards sets how many starter cards a new profile receives.
func WithStarterCards(n int) PlayerOption {
	return func(p *Player) { p.starters = n }
}

// WithPlayerLogger sets the logger.
func WithPlayerLogger(logger *zap.Logger) PlayerOption {
	return func(p *Player) { p.logger = logger }
}

// WithClock replaces time.Now for battle record timestamps.
func WithClock(now func() time.Time) PlayerOption {
	return func(p *Player) { p.now = now }
}

// NewPlayer binds playerID in repo. The generator makes starter and pack
// cards; rng picks battle hands.
func NewPlayer(repo Repository, playerID string, generator battle.CardGenerator, rng *rand.Rand, opts ...PlayerOption) *Player {
	p := &Player{
		repo:      repo,
		id:        playerID,
		generator: generator,
		rng:       rng,
		starters:  DefaultStarterSet,
		logger:    zap.NewNop(),
		tracer:    telemetry.Tracer("store"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the player id.
func (p *Player) ID() string { return p.id }

// Profile returns the stored profile, creating a fresh one with starter
// cards on first use.
func (p *Player) Profile(ctx context.Context) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

func (p *Player) load(ctx context.Context) (Profile, error) {
	prof, err := p.repo.GetProfile(ctx, p.id)
	if err == nil {
		return prof, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Profile{}, fmt.Errorf("load profile %s: %w", p.id, err)
	}

	prof = Profile{
		PlayerID:  p.id,
		Level:     1,
		Health:    StartingHealth,
		MaxHealth: StartingHealth,
	}
	for i := 0; i < p.starters; i++ {
		card, err := p.generator.Generate(gamedata.SourceStarter, 1)
		if err != nil {
			return Profile{}, fmt.Errorf("generate starter card: %w", err)
		}
		prof.Cards = append(prof.Cards, card)
	}
	if err := p.repo.SaveProfile(ctx, prof); err != nil {
		return Profile{}, fmt.Errorf("save new profile %s: %w", p.id, err)
	}
	p.logger.Info("profile created", zap.String("player", p.id), zap.Int("cards", len(prof.Cards)))
	return prof, nil
}

// update loads the profile, applies fn and saves the result if fn succeeds.
func (p *Player) update(ctx context.Context, fn func(*Profile) error) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prof, err := p.load(ctx)
	if err != nil {
		return Profile{}, err
	}
	if err := fn(&prof); err != nil {
		return Profile{}, err
	}
	if err := p.repo.SaveProfile(ctx, prof); err != nil {
		return Profile{}, fmt.Errorf("save profile %s: %w", p.id, err)
	}
	return prof, nil
}

// BattleHand implements battle.Collection.
func (p *Player) BattleHand(ctx context.Context, count int) ([]gamedata.Card, error) {
	prof, err := p.Profile(ctx)
	if err != nil {
		return nil, err
	}

	pool := prof.Cards
	if len(prof.Deck) > 0 {
		pool = deckCards(prof)
	}
	pool = append([]gamedata.Card(nil), pool...)
	if len(pool) <= count {
		return pool, nil
	}
	p.mu.Lock()
	p.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	p.mu.Unlock()
	return pool[:count], nil
}

// AddCard implements battle.Collection.
func (p *Player) AddCard(ctx context.Context, card gamedata.Card) error {
	_, err := p.update(ctx, func(prof *Profile) error {
		prof.Cards = append(prof.Cards, card)
		return nil
	})
	return err
}

// Health implements battle.Progression.
func (p *Player) Health(ctx context.Context) (int, int, error) {
	prof, err := p.Profile(ctx)
	if err != nil {
		return 0, 0, err
	}
	return prof.Health, prof.MaxHealth, nil
}

// Level implements battle.Progression.
func (p *Player) Level(ctx context.Context) (int, error) {
	prof, err := p.Profile(ctx)
	if err != nil {
		return 0, err
	}
	return prof.Level, nil
}

// GainExperience implements battle.Progression. Each level threshold crossed
// raises max health, refills health and grants an unopened pack.
func (p *Player) GainExperience(ctx context.Context, amount int) error {
	if amount <= 0 {
		return nil
	}
	prof, err := p.update(ctx, func(prof *Profile) error {
		prof.Experience += amount
		for prof.Experience >= prof.NextLevelAt() {
			prof.Experience -= prof.NextLevelAt()
			prof.Level++
			prof.MaxHealth += HealthPerLevel
			prof.Health = prof.MaxHealth
			prof.UnopenedPacks++
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.logger.Debug("experience gained",
		zap.String("player", p.id),
		zap.Int("amount", amount),
		zap.Int("level", prof.Level),
	)
	return nil
}

// OpenPack spends one unopened pack for PackSize new cards at the player's
// level.
func (p *Player) OpenPack(ctx context.Context) ([]gamedata.Card, error) {
	var opened []gamedata.Card
	_, err := p.update(ctx, func(prof *Profile) error {
		if prof.UnopenedPacks <= 0 {
			return ErrNoPacks
		}
		for i := 0; i < PackSize; i++ {
			card, err := p.generator.Generate(gamedata.SourcePack, prof.Level)
			if err != nil {
				return fmt.Errorf("generate pack card: %w", err)
			}
			opened = append(opened, card)
		}
		prof.UnopenedPacks--
		prof.Cards = append(prof.Cards, opened...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

// SetDeck chooses the cards battle hands are drawn from. An empty list
// goes back to drawing from the whole collection.
func (p *Player) SetDeck(ctx context.Context, ids []string) error {
	_, err := p.update(ctx, func(prof *Profile) error {
		owned := make(map[string]bool, len(prof.Cards))
		for _, c := range prof.Cards {
			owned[c.ID] = true
		}
		seen := make(map[string]bool, len(ids))
		deck := make([]string, 0, len(ids))
		for _, id := range ids {
			if !owned[id] {
				return fmt.Errorf("%w: %s", ErrUnknownCard, id)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			deck = append(deck, id)
		}
		prof.Deck = deck
		return nil
	})
	return err
}

// RecordBattle implements battle.Recorder.
func (p *Player) RecordBattle(ctx context.Context, s battle.Summary) error {
	_, err := p.Record(ctx, s)
	return err
}

// Record stores s as a new battle record and returns it.
func (p *Player) Record(ctx context.Context, s battle.Summary) (BattleRecord, error) {
	ctx, span := p.tracer.Start(ctx, "store.record_battle")
	defer span.End()

	rec := BattleRecord{
		ID:               uuid.NewString(),
		PlayerID:         p.id,
		Level:            s.Level,
		Outcome:          s.Outcome.String(),
		Turns:            s.Turns,
		EnemyName:        s.EnemyName,
		PlayerHealth:     s.PlayerHealth,
		EnemyHealth:      s.EnemyHealth,
		ExperienceGained: s.ExperienceGained,
		CreatedAt:        p.now().UTC(),
	}
	if s.Reward != nil {
		rec.RewardCard = s.Reward.Name
	}
	span.SetAttributes(
		attribute.String("battle.id", rec.ID),
		attribute.String("outcome", rec.Outcome),
	)
	if err := p.repo.AddBattle(ctx, rec); err != nil {
		span.RecordError(err)
		return BattleRecord{}, fmt.Errorf("add battle record: %w", err)
	}
	return rec, nil
}

// Battles lists the player's history, newest first.
func (p *Player) Battles(ctx context.Context, limit int) ([]BattleRecord, error) {
	return p.repo.ListBattles(ctx, p.id, limit)
}

// Battle fetches one record of this player.
func (p *Player) Battle(ctx context.Context, id string) (BattleRecord, error) {
	rec, err := p.repo.GetBattle(ctx, id)
	if err != nil {
		return BattleRecord{}, err
	}
	if rec.PlayerID != p.id {
		return BattleRecord{}, ErrNotFound
	}
	return rec, nil
}

func deckCards(prof Profile) []gamedata.Card {
	byID := make(map[string]gamedata.Card, len(prof.Cards))
	for _, c := range prof.Cards {
		byID[c.ID] = c
	}
	out := make([]gamedata.Card, 0, len(prof.Deck))
	for _, id := range prof.Deck {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
