package battle

import (
	"context"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

// CardGenerator produces cards. cardgen.Generator satisfies it.
type CardGenerator interface {
	Generate(source gamedata.CardSource, level int) (gamedata.Card, error)
}

// HandGenerator is implemented by generators that deal a whole hand at once.
// StartBattle prefers it over repeated Generate calls.
type HandGenerator interface {
	GenerateHand(ctx context.Context, source gamedata.CardSource, level, n int) ([]gamedata.Card, error)
}

// Collection is the player's card collection.
type Collection interface {
	// BattleHand returns up to count cards: the deck when it is non-empty,
	// otherwise the whole collection, randomly subset when oversized.
	BattleHand(ctx context.Context, count int) ([]gamedata.Card, error)
	AddCard(ctx context.Context, card gamedata.Card) error
}

// Progression is the player's character: health and experience.
type Progression interface {
	Health(ctx context.Context) (health, maxHealth int, err error)
	Level(ctx context.Context) (int, error)
	GainExperience(ctx context.Context, amount int) error
}

// View names a top-level screen of the client.
type View string

const (
	ViewWorld       View = "world"
	ViewBattle      View = "battle"
	ViewCollection  View = "collection"
	ViewPackOpening View = "pack_opening"
)

// Navigator switches the client between views.
type Navigator interface {
	SetView(view View)
}

// Level grades a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a fire-and-forget message describing what happened.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives notifications. It carries no control flow.
type Notifier interface {
	Notify(n Notification)
}

// Summary describes a finished battle for history and reports.
type Summary struct {
	Level            int
	Outcome          Outcome
	Turns            int
	EnemyName        string
	PlayerHealth     int
	EnemyHealth      int
	ExperienceGained int
	Reward           *gamedata.Card
}

// Recorder stores battle summaries. It is optional.
type Recorder interface {
	RecordBattle(ctx context.Context, summary Summary) error
}

// Notifiers fans a notification out to several sinks.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(n Notification) {
	for _, sink := range ns {
		sink.Notify(n)
	}
}

// Navigators fans a view change out to several targets.
type Navigators []Navigator

// SetView implements Navigator.
func (ns Navigators) SetView(view View) {
	for _, nav := range ns {
		nav.SetView(view)
	}
}
