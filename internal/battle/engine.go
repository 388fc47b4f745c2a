// Package battle runs one card battle at a time between the player and a
// scripted enemy.
//
// The engine is single-threaded: every command and every deferred step must
// run on the goroutine that owns it (see schedule.Loop). Deferred steps are
// tagged with the battle generation when scheduled and dropped on fire if a
// newer battle, or the end of this one, has bumped the generation since.
package battle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/combat"
	"github.com/samdwyer/cardclash/internal/gamedata"
	"github.com/samdwyer/cardclash/internal/schedule"
	"github.com/samdwyer/cardclash/internal/telemetry"
)

// ErrNoHand is returned by StartBattle when the collection has no cards to
// fight with.
var ErrNoHand = errors.New("battle: no cards available for a hand")

// playerName is how narration refers to the player. Combat narration is
// third person, so this must read as a name.
const playerName = "Hero"

// Engine is the battle state machine.
type Engine struct {
	cfg   Config
	state State

	generator   CardGenerator
	collection  Collection
	progression Progression
	nav         Navigator
	notifier    Notifier
	sched       schedule.Scheduler
	recorder    Recorder
	policy      Policy

	resolver *combat.Resolver
	rng      *rand.Rand
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the balance config. Zero fields take defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithTracer sets the tracer used for battle spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithRand sets the random source for reward rolls and the default policy.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithPolicy replaces the enemy policy.
func WithPolicy(policy Policy) Option {
	return func(e *Engine) { e.policy = policy }
}

// WithRecorder stores a summary of every finished battle.
func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) { e.recorder = recorder }
}

// New creates an idle engine wired to its collaborators.
func New(generator CardGenerator, collection Collection, progression Progression,
	nav Navigator, notifier Notifier, sched schedule.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		cfg:         DefaultConfig(),
		generator:   generator,
		collection:  collection,
		progression: progression,
		nav:         nav,
		notifier:    notifier,
		sched:       sched,
		resolver:    combat.NewResolver(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg.ApplyDefaults()
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.policy == nil {
		e.policy = NewThresholdPolicy(e.rng)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.nav == nil {
		e.nav = Navigators{}
	}
	if e.notifier == nil {
		e.notifier = Notifiers{}
	}
	if e.tracer == nil {
		e.tracer = telemetry.Tracer("battle")
	}
	return e
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() State {
	return e.state.Clone()
}

// Phase returns the current state machine position.
func (e *Engine) Phase() Phase {
	return e.state.Phase()
}

// StartBattle begins a battle at level. Everything that can fail runs before
// any state changes, so on error the previous state is untouched.
func (e *Engine) StartBattle(ctx context.Context, level int) error {
	if level < 1 {
		level = 1
	}
	ctx, span := e.tracer.Start(ctx, "battle.start")
	defer span.End()
	span.SetAttributes(attribute.Int("level", level))

	health, maxHealth, err := e.progression.Health(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read player health: %w", err)
	}
	hand, err := e.collection.BattleHand(ctx, e.cfg.HandSize)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("draw battle hand: %w", err)
	}
	if len(hand) == 0 {
		return ErrNoHand
	}

	enemyHand, err := e.enemyHand(ctx, min(e.cfg.MaxEnemyCards, level+1), level)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("generate enemy hand: %w", err)
	}
	enemyMax := e.cfg.EnemyBaseHealth + level*e.cfg.EnemyHealthPerLevel

	e.state = State{
		Active:     true,
		Level:      level,
		Generation: e.state.Generation + 1,
		Player: Side{
			Name:      playerName,
			Health:    max(0, min(health, maxHealth)),
			MaxHealth: maxHealth,
			Hand:      hand,
		},
		Enemy: Side{
			Name:      enemyName(enemyHand),
			Health:    enemyMax,
			MaxHealth: enemyMax,
			Hand:      enemyHand,
		},
		CurrentTurn: TurnPlayer,
	}

	span.SetAttributes(
		attribute.Int("player.health", e.state.Player.Health),
		attribute.Int("player.hand_size", len(hand)),
		attribute.Int("enemy.health", enemyMax),
		attribute.Int("enemy.hand_size", len(enemyHand)),
	)
	e.logger.Info("battle started",
		zap.Int("level", level),
		zap.Uint64("generation", e.state.Generation),
		zap.String("enemy", e.state.Enemy.Name),
	)

	e.nav.SetView(ViewBattle)
	e.notify(LevelInfo, "A wild %s appears! (level %d)", e.state.Enemy.Name, level)
	return nil
}

// PlayCard plays the player's card at index. Calls outside the player's turn,
// with a bad index, or after the battle ended are ignored. A stunned player
// loses the turn instead of playing. Errors come only from collaborators
// touched when the play ends the battle.
func (e *Engine) PlayCard(ctx context.Context, index int) error {
	s := &e.state
	if !s.Active || s.Outcome != OutcomeNone || s.CurrentTurn != TurnPlayer ||
		index < 0 || index >= len(s.Player.Hand) {
		e.logger.Debug("play card ignored",
			zap.Int("index", index),
			zap.String("phase", s.Phase().String()),
		)
		return nil
	}

	if s.Player.SkipNextTurn {
		return e.loseStunnedTurn(ctx)
	}

	ctx, span := e.tracer.Start(ctx, "battle.play_card")
	defer span.End()

	card := s.Player.Hand[index]
	s.Player.ActiveCard = &card
	res := e.resolver.Resolve(card, &s.Player, &s.Enemy)
	s.Turns++
	e.report(span, res)

	switch res.Outcome {
	case combat.AttackerWins:
		return e.endBattle(ctx, OutcomeWin)
	case combat.DefenderWins:
		return e.endBattle(ctx, OutcomeLose)
	}
	return e.endTurn(ctx)
}

// EndTurn passes the player's turn without playing a card. It is ignored
// outside the player's turn. Passing while stunned uses up the stun.
func (e *Engine) EndTurn(ctx context.Context) error {
	if !e.state.Active || e.state.Outcome != OutcomeNone || e.state.CurrentTurn != TurnPlayer {
		return nil
	}
	if e.state.Player.SkipNextTurn {
		return e.loseStunnedTurn(ctx)
	}
	return e.endTurn(ctx)
}

// loseStunnedTurn consumes the player's stun and ends the turn.
func (e *Engine) loseStunnedTurn(ctx context.Context) error {
	e.state.Player.SkipNextTurn = false
	e.notify(LevelWarning, "You are stunned and lose your turn.")
	return e.endTurn(ctx)
}

// StartNewBattle clears the battle-only fields and invalidates every pending
// deferred step. Health and hands are re-seeded by the next StartBattle.
func (e *Engine) StartNewBattle() {
	s := &e.state
	s.Generation++
	s.Active = false
	s.Player.ActiveCard = nil
	s.Enemy.ActiveCard = nil
	s.CurrentTurn = TurnPlayer
	s.Outcome = OutcomeNone
	s.Resolving = false
	s.ExperienceGained = 0
	s.Reward = nil
}

// endTurn decays the ledger of the side whose turn is ending and hands the
// turn over.
func (e *Engine) endTurn(ctx context.Context) error {
	s := &e.state
	if !s.Active || s.Outcome != OutcomeNone {
		return nil
	}

	switch s.CurrentTurn {
	case TurnPlayer:
		if ended, err := e.decay(ctx, &s.Player); ended {
			return err
		}
		s.Player.ActiveCard = nil
		s.CurrentTurn = TurnEnemy

		if s.Enemy.SkipNextTurn {
			s.Enemy.SkipNextTurn = false
			e.notify(LevelInfo, "%s is stunned and skips a turn.", s.Enemy.Name)
			e.after(e.cfg.SkipTurnDelay, e.finishEnemyTurn)
			return nil
		}
		e.after(e.cfg.EnemyThinkDelay, e.enemyAct)

	case TurnEnemy:
		if ended, err := e.decay(ctx, &s.Enemy); ended {
			return err
		}
		s.Enemy.ActiveCard = nil
		s.Resolving = false
		s.CurrentTurn = TurnPlayer
		if s.Player.SkipNextTurn {
			e.notify(LevelWarning, "You are stunned! Your next play will be lost.")
		} else {
			e.notify(LevelInfo, "Your turn.")
		}
	}
	return nil
}

// enemyAct is the deferred enemy decision and play.
func (e *Engine) enemyAct(ctx context.Context) {
	s := &e.state
	if s.Outcome != OutcomeNone || s.CurrentTurn != TurnEnemy || s.Resolving {
		return
	}

	ctx, span := e.tracer.Start(ctx, "battle.enemy_turn")
	defer span.End()

	index := e.policy.Choose(s.Enemy.Hand, &s.Player)
	if index < 0 || index >= len(s.Enemy.Hand) {
		e.notify(LevelInfo, "%s has no cards left to play.", s.Enemy.Name)
		e.logIfErr("end battle", e.endBattle(ctx, OutcomeWin))
		return
	}

	card := s.Enemy.Hand[index]
	s.Enemy.ActiveCard = &card
	s.Resolving = true
	res := e.resolver.Resolve(card, &s.Enemy, &s.Player)
	s.Turns++
	e.report(span, res)

	switch res.Outcome {
	case combat.AttackerWins:
		e.logIfErr("end battle", e.endBattle(ctx, OutcomeLose))
		return
	case combat.DefenderWins:
		e.logIfErr("end battle", e.endBattle(ctx, OutcomeWin))
		return
	}
	e.after(e.cfg.EnemyTurnDelay, e.finishEnemyTurn)
}

// finishEnemyTurn is the deferred return of the turn to the player.
func (e *Engine) finishEnemyTurn(ctx context.Context) {
	if e.state.CurrentTurn != TurnEnemy {
		return
	}
	e.logIfErr("end enemy turn", e.endTurn(ctx))
}

// decay runs end-of-turn ticks on side and ends the battle if a tick was
// lethal. It reports whether the battle ended.
func (e *Engine) decay(ctx context.Context, side *Side) (bool, error) {
	for _, tick := range combat.Decay(side) {
		switch {
		case tick.Effect == gamedata.EffectBurn && tick.Amount > 0:
			e.notify(LevelInfo, "%s burns for %d damage.", side.Name, tick.Amount)
		case tick.Effect == gamedata.EffectHeal && tick.Amount > 0:
			e.notify(LevelInfo, "%s regenerates %d health.", side.Name, tick.Amount)
		}
		if tick.Ended {
			e.notify(LevelInfo, "%s's %s wears off.", side.Name, strings.ReplaceAll(string(tick.Effect), "_", " "))
		}
	}

	switch {
	case e.state.Player.Health <= 0:
		return true, e.endBattle(ctx, OutcomeLose)
	case e.state.Enemy.Health <= 0:
		return true, e.endBattle(ctx, OutcomeWin)
	}
	return false, nil
}

// endBattle sets the terminal outcome once and hands over to the session
// lifecycle.
func (e *Engine) endBattle(ctx context.Context, outcome Outcome) error {
	s := &e.state
	if s.Outcome != OutcomeNone {
		return nil
	}
	s.Outcome = outcome
	s.Resolving = false
	s.Generation++

	_, span := e.tracer.Start(ctx, "battle.end")
	span.SetAttributes(
		attribute.String("outcome", outcome.String()),
		attribute.Int("level", s.Level),
		attribute.Int("turns_taken", s.Turns),
		attribute.Int("player_health_remaining", s.Player.Health),
	)
	span.End()
	e.logger.Info("battle ended",
		zap.String("outcome", outcome.String()),
		zap.Int("level", s.Level),
		zap.Int("turns", s.Turns),
	)

	if outcome == OutcomeWin {
		e.notify(LevelSuccess, "Victory! %s is defeated.", s.Enemy.Name)
	} else {
		e.notify(LevelError, "Defeat... %s wins this time.", s.Enemy.Name)
	}
	return e.settle(ctx, outcome)
}

// after schedules step for the current battle generation.
func (e *Engine) after(d time.Duration, step func(context.Context)) {
	generation := e.state.Generation
	e.sched.After(d, func() {
		if e.state.Generation != generation {
			e.logger.Debug("stale battle step dropped",
				zap.Uint64("scheduled", generation),
				zap.Uint64("current", e.state.Generation),
			)
			return
		}
		step(context.Background())
	})
}

// report forwards a resolution's narration and records it on the span.
func (e *Engine) report(span trace.Span, res combat.Result) {
	span.SetAttributes(
		attribute.String("card", res.Card.ID),
		attribute.Int("effective_power", res.EffectivePower),
		attribute.Int("damage", res.Damage()),
		attribute.String("outcome", res.Outcome.String()),
	)
	if res.StatusAdded != "" {
		span.SetAttributes(attribute.String("status_applied", string(res.StatusAdded)))
	}
	for _, line := range res.Log {
		e.notifier.Notify(Notification{Level: LevelInfo, Message: line})
	}
}

func (e *Engine) notify(level Level, format string, args ...any) {
	e.notifier.Notify(Notification{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (e *Engine) logIfErr(action string, err error) {
	if err == nil {
		return
	}
	e.logger.Error("battle step failed", zap.String("action", action), zap.Error(err))
	e.notify(LevelError, "Something went wrong: %v", err)
}

// enemyHand deals n enemy cards, as one batch when the generator can.
func (e *Engine) enemyHand(ctx context.Context, n, level int) ([]gamedata.Card, error) {
	if hg, ok := e.generator.(HandGenerator); ok {
		return hg.GenerateHand(ctx, gamedata.SourceEnemy, level, n)
	}
	hand := make([]gamedata.Card, 0, n)
	for i := 0; i < n; i++ {
		card, err := e.generator.Generate(gamedata.SourceEnemy, level)
		if err != nil {
			return nil, err
		}
		hand = append(hand, card)
	}
	return hand, nil
}

// enemyName titles the enemy after the creature family of its first card.
func enemyName(hand []gamedata.Card) string {
	if len(hand) == 0 || hand[0].CreatureType == "" {
		return "Enemy"
	}
	kind := string(hand[0].CreatureType)
	return strings.ToUpper(kind[:1]) + kind[1:] + " Champion"
}
