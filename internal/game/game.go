// Package game runs the terminal client: the overworld, battles and the
// collection screens, all driven from one schedule.Loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/battle"
	"github.com/samdwyer/cardclash/internal/entity"
	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/schedule"
	"github.com/samdwyer/cardclash/internal/store"
	"github.com/samdwyer/cardclash/internal/telemetry"
	"github.com/samdwyer/cardclash/internal/ui"
	"github.com/samdwyer/cardclash/internal/world"
)

// Game holds the entire client state. Everything below is touched only from
// the loop goroutine.
type Game struct {
	cfg       Config
	loop      *schedule.Loop
	sched     schedule.Scheduler
	screen    *ui.Screen
	renderer  *ui.Renderer
	log       *ui.MessageLog
	engine    *battle.Engine
	player    *store.Player
	creatures *gamedata.CreatureRegistry
	rng       *rand.Rand
	logger    *zap.Logger

	worldMap   *world.Map
	explorer   *entity.Explorer
	encounters []*entity.Encounter
	fighting   *entity.Encounter

	view    battle.View
	profile store.Profile
	cursor  int
	opened  []gamedata.Card
}

// Option configures a Game.
type Option func(*Game)

// WithScheduler replaces the loop as the engine's timer source.
func WithScheduler(s schedule.Scheduler) Option {
	return func(g *Game) { g.sched = s }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// New creates a client for player. The battle engine is built here because
// the game is its navigator.
func New(cfg Config, screen *ui.Screen, player *store.Player, generator battle.CardGenerator,
	creatures *gamedata.CreatureRegistry, opts ...Option) *Game {
	cfg.applyDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		cfg:       cfg,
		loop:      schedule.NewLoop(64),
		screen:    screen,
		renderer:  ui.NewRenderer(screen),
		log:       ui.NewMessageLog(cfg.LogLines),
		player:    player,
		creatures: creatures,
		rng:       rand.New(rand.NewSource(seed)),
		logger:    zap.NewNop(),
		view:      battle.ViewWorld,
	}
	g.sched = g.loop
	for _, opt := range opts {
		opt(g)
	}

	g.engine = battle.New(generator, player, player, g, g.log, g.sched,
		battle.WithConfig(cfg.Battle),
		battle.WithLogger(g.logger.Named("battle")),
		battle.WithRand(rand.New(rand.NewSource(g.rng.Int63()))),
		battle.WithRecorder(player),
	)
	return g
}

// Run draws the client and processes input until the player quits or ctx
// ends. The screen is closed on return.
func (g *Game) Run(ctx context.Context) error {
	if err := g.setup(ctx); err != nil {
		g.screen.Close()
		return err
	}

	g.loop.AfterEach(g.draw)
	go g.readInput(ctx)
	g.loop.Post(func() {})

	err := g.loop.Run(ctx)
	g.screen.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setup generates the overworld, places the explorer and the encounters and
// loads the player profile.
func (g *Game) setup(ctx context.Context) error {
	ctx, span := telemetry.Tracer("game").Start(ctx, "game.init")
	defer span.End()

	g.worldMap = world.NewMap(world.DefaultWidth, world.DefaultHeight, rand.New(rand.NewSource(g.rng.Int63())))
	g.worldMap.Generate(ctx)
	g.explorer = entity.NewExplorer(g.worldMap.Start())
	g.encounters = g.worldMap.SpawnEncounters(g.creatures, g.cfg.EncountersPerRegion)

	if err := g.refreshProfile(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.Int("world.regions", len(g.worldMap.Regions)),
		attribute.Int("world.encounters", len(g.encounters)),
		attribute.Int("player.level", g.profile.Level),
	)
	g.log.Add(fmt.Sprintf("Welcome back. %d creatures roam the land.", len(g.encounters)))
	return nil
}

func (g *Game) readInput(ctx context.Context) {
	for {
		ev := g.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventKey:
			if !g.loop.Post(func() { g.handle(ctx, inputFor(g.view, ev)) }) {
				return
			}
		case *tcell.EventResize:
			g.loop.Post(g.screen.Sync)
		}
	}
}

// SetView implements battle.Navigator. Returning to the world after a won
// battle clears the beaten encounter off the map.
func (g *Game) SetView(view battle.View) {
	if view == battle.ViewWorld && g.fighting != nil {
		if g.engine.Snapshot().Outcome == battle.OutcomeWin {
			g.removeEncounter(g.fighting)
		}
		g.fighting = nil
		if err := g.refreshProfile(context.Background()); err != nil {
			g.logger.Error("refresh profile", zap.Error(err))
		}
	}
	g.view = view
}

// handle applies one input on the loop goroutine.
func (g *Game) handle(ctx context.Context, in Input) {
	switch in.Action {
	case ActionQuit:
		g.loop.Stop()
	case ActionMove:
		g.tryMove(ctx, in.DX, in.DY)
	case ActionPlayCard:
		g.check("play card", g.engine.PlayCard(ctx, in.Index))
	case ActionEndTurn:
		g.check("end turn", g.engine.EndTurn(ctx))
	case ActionCollection:
		g.cursor = 0
		g.check("load collection", g.refreshProfile(ctx))
		g.view = battle.ViewCollection
	case ActionBack, ActionContinue:
		g.view = battle.ViewWorld
	case ActionCursor:
		g.cursor = max(0, min(g.cursor+in.DY, len(g.profile.Cards)-1))
	case ActionToggleDeck:
		g.toggleDeck(ctx)
	case ActionOpenPack:
		g.openPack(ctx)
	}
}

// tryMove moves the explorer if the target is passable. Stepping onto an
// encounter starts its battle.
func (g *Game) tryMove(ctx context.Context, dx, dy int) {
	x, y := g.explorer.X+dx, g.explorer.Y+dy
	if !g.worldMap.IsPassable(x, y) {
		return
	}
	g.explorer.Move(dx, dy)

	if enc := g.encounterAt(x, y); enc != nil {
		g.startEncounter(ctx, enc)
	}
}

func (g *Game) startEncounter(ctx context.Context, enc *entity.Encounter) {
	ctx, span := telemetry.Tracer("game").Start(ctx, "game.encounter")
	defer span.End()
	span.SetAttributes(
		attribute.String("creature", enc.Name()),
		attribute.Int("level", enc.Level),
		attribute.Int("region", enc.Region),
	)

	g.engine.StartNewBattle()
	if err := g.engine.StartBattle(ctx, enc.Level); err != nil {
		span.RecordError(err)
		if errors.Is(err, battle.ErrNoHand) {
			g.log.Notify(battle.Notification{Level: battle.LevelWarning, Message: "You have no cards to fight with."})
			return
		}
		g.check("start battle", err)
		return
	}
	g.fighting = enc
	g.logger.Info("encounter started", zap.String("creature", enc.Name()))
}

func (g *Game) encounterAt(x, y int) *entity.Encounter {
	for _, e := range g.encounters {
		if e.X == x && e.Y == y {
			return e
		}
	}
	return nil
}

func (g *Game) removeEncounter(enc *entity.Encounter) {
	g.encounters = slices.DeleteFunc(g.encounters, func(e *entity.Encounter) bool { return e == enc })
}

func (g *Game) openPack(ctx context.Context) {
	cards, err := g.player.OpenPack(ctx)
	if errors.Is(err, store.ErrNoPacks) {
		g.log.Notify(battle.Notification{Level: battle.LevelWarning, Message: "No unopened packs. Level up to earn one."})
		return
	}
	if err != nil {
		g.check("open pack", err)
		return
	}
	g.opened = cards
	g.check("load collection", g.refreshProfile(ctx))
	g.log.Notify(battle.Notification{Level: battle.LevelSuccess, Message: fmt.Sprintf("Opened a pack: %d new cards.", len(cards))})
	g.view = battle.ViewPackOpening
}

// toggleDeck adds or removes the card under the cursor from the deck.
func (g *Game) toggleDeck(ctx context.Context) {
	if g.cursor < 0 || g.cursor >= len(g.profile.Cards) {
		return
	}
	id := g.profile.Cards[g.cursor].ID
	deck := slices.Clone(g.profile.Deck)
	if i := slices.Index(deck, id); i >= 0 {
		deck = slices.Delete(deck, i, i+1)
	} else {
		deck = append(deck, id)
	}
	if err := g.player.SetDeck(ctx, deck); err != nil {
		g.check("set deck", err)
		return
	}
	g.check("load collection", g.refreshProfile(ctx))
}

func (g *Game) refreshProfile(ctx context.Context) error {
	prof, err := g.player.Profile(ctx)
	if err != nil {
		return err
	}
	g.profile = prof
	return nil
}

// check logs err and shows it in the message log.
func (g *Game) check(action string, err error) {
	if err == nil {
		return
	}
	g.logger.Error(action, zap.Error(err))
	g.log.Notify(battle.Notification{Level: battle.LevelError, Message: fmt.Sprintf("Could not %s: %v", action, err)})
}

func (g *Game) status() string {
	p := g.profile
	return fmt.Sprintf("Lv %d  XP %d/%d  HP %d/%d  packs %d  cards %d   arrows move  c cards  p pack  q quit",
		p.Level, p.Experience, p.NextLevelAt(), p.Health, p.MaxHealth, p.UnopenedPacks, len(p.Cards))
}

// draw renders the current view and the message log.
func (g *Game) draw() {
	g.renderer.Begin()
	var bottom int
	switch g.view {
	case battle.ViewBattle:
		bottom = g.renderer.Battle(g.engine.Snapshot())
	case battle.ViewCollection:
		bottom = g.renderer.Collection(g.profile.Cards, g.profile.Deck, g.cursor, g.profile.UnopenedPacks)
	case battle.ViewPackOpening:
		bottom = g.renderer.PackOpening(g.opened, g.profile.UnopenedPacks)
	default:
		g.renderer.World(g.worldMap, g.explorer, g.encounters, g.status())
		bottom = g.worldMap.Height + 1
	}
	g.renderer.Messages(g.log, bottom)
	g.renderer.End()
}
