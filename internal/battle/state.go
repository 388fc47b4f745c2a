package battle

import (
	"encoding/json"

	"github.com/samdwyer/cardclash/internal/combat"
	"github.com/samdwyer/cardclash/internal/gamedata"
)

// Turn says whose turn it is.
type Turn int

const (
	TurnPlayer Turn = iota
	TurnEnemy
)

// String returns a human-readable turn name.
func (t Turn) String() string {
	switch t {
	case TurnPlayer:
		return "player"
	case TurnEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// MarshalText encodes the turn by name.
func (t Turn) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Outcome is the result of a finished battle.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLose
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	default:
		return "none"
	}
}

// MarshalJSON encodes OutcomeNone as null and the others by name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o == OutcomeNone {
		return []byte("null"), nil
	}
	return json.Marshal(o.String())
}

// ParseOutcome maps "win" and "lose" back to an Outcome.
func ParseOutcome(s string) Outcome {
	switch s {
	case "win":
		return OutcomeWin
	case "lose":
		return OutcomeLose
	default:
		return OutcomeNone
	}
}

// Phase is the derived state machine position of a battle.
type Phase int

const (
	// PhaseIdle - no battle running
	PhaseIdle Phase = iota
	// PhasePlayerTurn - waiting for the player to play a card
	PhasePlayerTurn
	// PhaseResolving - the enemy card is on the table, turn about to pass back
	PhaseResolving
	// PhaseEnemyTurn - the enemy is deciding or skipping
	PhaseEnemyTurn
	// PhaseEnded - outcome set, no further commands accepted
	PhaseEnded
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseResolving:
		return "resolving"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Side is one combatant: health, fixed hand, ledger and stun flag.
type Side struct {
	Name         string          `json:"name"`
	Health       int             `json:"health"`
	MaxHealth    int             `json:"maxHealth"`
	Hand         []gamedata.Card `json:"hand"`
	ActiveCard   *gamedata.Card  `json:"activeCard"`
	Ledger       combat.Ledger   `json:"effects"`
	SkipNextTurn bool            `json:"skipNextTurn"`
}

func (s *Side) GetName() string         { return s.Name }
func (s *Side) GetHealth() int          { return s.Health }
func (s *Side) GetMaxHealth() int       { return s.MaxHealth }
func (s *Side) Effects() *combat.Ledger { return &s.Ledger }
func (s *Side) Stun()                   { s.SkipNextTurn = true }

// TakeDamage lowers health, never below zero, and returns the damage taken.
func (s *Side) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	actual := min(amount, s.Health)
	s.Health -= actual
	return actual
}

// Heal raises health, never above max, and returns the amount healed.
func (s *Side) Heal(amount int) int {
	if amount <= 0 || s.Health >= s.MaxHealth {
		return 0
	}
	actual := min(amount, s.MaxHealth-s.Health)
	s.Health += actual
	return actual
}

// HealthRatio returns health as a fraction of max health.
func (s *Side) HealthRatio() float64 {
	if s.MaxHealth <= 0 {
		return 0
	}
	return float64(s.Health) / float64(s.MaxHealth)
}

func (s Side) clone() Side {
	out := s
	if s.Hand != nil {
		out.Hand = append([]gamedata.Card(nil), s.Hand...)
	}
	if s.ActiveCard != nil {
		card := *s.ActiveCard
		out.ActiveCard = &card
	}
	out.Ledger = s.Ledger.Clone()
	return out
}

// State is the single source of truth for one battle. The engine owns it;
// observers get copies through Engine.Snapshot.
type State struct {
	Active      bool    `json:"active"`
	Level       int     `json:"level"`
	Generation  uint64  `json:"generation"`
	Turns       int     `json:"turns"` // Cards resolved so far
	Player      Side    `json:"player"`
	Enemy       Side    `json:"enemy"`
	CurrentTurn Turn    `json:"currentTurn"`
	Outcome     Outcome `json:"outcome"`
	Resolving   bool    `json:"resolving"`

	ExperienceGained int            `json:"experienceGained,omitempty"`
	Reward           *gamedata.Card `json:"reward,omitempty"`
}

// Phase derives the state machine position from the state fields.
func (s *State) Phase() Phase {
	switch {
	case s.Outcome != OutcomeNone:
		return PhaseEnded
	case !s.Active:
		return PhaseIdle
	case s.Resolving:
		return PhaseResolving
	case s.CurrentTurn == TurnPlayer:
		return PhasePlayerTurn
	default:
		return PhaseEnemyTurn
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *State) Clone() State {
	out := *s
	out.Player = s.Player.clone()
	out.Enemy = s.Enemy.clone()
	if s.Reward != nil {
		card := *s.Reward
		out.Reward = &card
	}
	return out
}

// MarshalJSON adds the derived phase to the encoded state.
func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	return json.Marshal(struct {
		plain
		Phase Phase `json:"phase"`
	}{plain(s), s.Phase()})
}
