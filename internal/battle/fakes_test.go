package battle

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/schedule"
)

// fakeGenerator hands out copies of a template card per source.
type fakeGenerator struct {
	cards   map[gamedata.CardSource]gamedata.Card
	err     error
	calls   []gamedata.CardSource
	counter int
}

func (g *fakeGenerator) Generate(source gamedata.CardSource, level int) (gamedata.Card, error) {
	g.calls = append(g.calls, source)
	if g.err != nil {
		return gamedata.Card{}, g.err
	}
	g.counter++
	card := g.cards[source]
	card.ID = fmt.Sprintf("%s-%d", source, g.counter)
	card.UnlockLevel = level
	return card, nil
}

type fakeCollection struct {
	hand    []gamedata.Card
	added   []gamedata.Card
	handErr error
	addErr  error
}

func (c *fakeCollection) BattleHand(_ context.Context, count int) ([]gamedata.Card, error) {
	if c.handErr != nil {
		return nil, c.handErr
	}
	if len(c.hand) > count {
		return append([]gamedata.Card(nil), c.hand[:count]...), nil
	}
	return append([]gamedata.Card(nil), c.hand...), nil
}

func (c *fakeCollection) AddCard(_ context.Context, card gamedata.Card) error {
	if c.addErr != nil {
		return c.addErr
	}
	c.added = append(c.added, card)
	return nil
}

type fakeProgression struct {
	health, maxHealth int
	level             int
	experience        int
	err               error
	xpErr             error
}

func (p *fakeProgression) Health(context.Context) (int, int, error) {
	return p.health, p.maxHealth, p.err
}

func (p *fakeProgression) Level(context.Context) (int, error) {
	return p.level, p.err
}

func (p *fakeProgression) GainExperience(_ context.Context, amount int) error {
	if p.xpErr != nil {
		return p.xpErr
	}
	p.experience += amount
	return nil
}

type recordingNavigator struct {
	views []View
}

func (n *recordingNavigator) SetView(view View) {
	n.views = append(n.views, view)
}

type recordingNotifier struct {
	notes []Notification
}

func (n *recordingNotifier) Notify(note Notification) {
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) has(level Level) bool {
	for _, note := range n.notes {
		if note.Level == level {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) messages() []string {
	out := make([]string, 0, len(n.notes))
	for _, note := range n.notes {
		out = append(out, note.Message)
	}
	return out
}

type recordingRecorder struct {
	summaries []Summary
}

func (r *recordingRecorder) RecordBattle(_ context.Context, s Summary) error {
	r.summaries = append(r.summaries, s)
	return nil
}

type policyFunc func(hand []gamedata.Card, opponent *Side) int

func (f policyFunc) Choose(hand []gamedata.Card, opponent *Side) int {
	return f(hand, opponent)
}

// handGenerator adds batch dealing to fakeGenerator.
type handGenerator struct {
	*fakeGenerator
	hands []int
}

func (g *handGenerator) GenerateHand(_ context.Context, source gamedata.CardSource, level, n int) ([]gamedata.Card, error) {
	g.hands = append(g.hands, n)
	hand := make([]gamedata.Card, 0, n)
	for i := 0; i < n; i++ {
		card, err := g.Generate(source, level)
		if err != nil {
			return nil, err
		}
		hand = append(hand, card)
	}
	return hand, nil
}

// harness wires an engine to fakes and a manual scheduler.
type harness struct {
	engine      *Engine
	sched       *schedule.Manual
	generator   *fakeGenerator
	collection  *fakeCollection
	progression *fakeProgression
	nav         *recordingNavigator
	notes       *recordingNotifier
	recorder    *recordingRecorder
}

func plainCard(power int) gamedata.Card {
	return gamedata.Card{
		ID:           fmt.Sprintf("plain-%d", power),
		Name:         fmt.Sprintf("Plain %d", power),
		Type:         gamedata.TypeCreature,
		Rarity:       gamedata.RarityCommon,
		Power:        power,
		Cost:         gamedata.CostForPower(power),
		CreatureType: gamedata.CreatureBeast,
		Effect:       gamedata.EffectNone,
	}
}

func effectCard(power int, effect gamedata.CardEffect, effectPower, duration int) gamedata.Card {
	c := plainCard(power)
	c.ID = fmt.Sprintf("%s-%d", effect, power)
	c.Name = string(effect)
	c.Effect = effect
	c.EffectPower = effectPower
	c.EffectDuration = duration
	return c
}

// newHarness builds an engine whose player has 100 health and the given
// hand, facing enemy copies of enemyCard.
func newHarness(t *testing.T, hand []gamedata.Card, enemyCard gamedata.Card, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		sched: schedule.NewManual(),
		generator: &fakeGenerator{cards: map[gamedata.CardSource]gamedata.Card{
			gamedata.SourceEnemy:  enemyCard,
			gamedata.SourceReward: effectCard(15, gamedata.EffectShield, 4, 2),
		}},
		collection:  &fakeCollection{hand: hand},
		progression: &fakeProgression{health: 100, maxHealth: 100, level: 1},
		nav:         &recordingNavigator{},
		notes:       &recordingNotifier{},
		recorder:    &recordingRecorder{},
	}
	all := append([]Option{
		WithRand(rand.New(rand.NewSource(1))),
		WithRecorder(h.recorder),
	}, opts...)
	h.engine = New(h.generator, h.collection, h.progression, h.nav, h.notes, h.sched, all...)
	return h
}
