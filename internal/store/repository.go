// Package store keeps the player's profile, card collection and battle
// history, in memory or in sqlite.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

var (
	// ErrNotFound is returned when a profile or battle record does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrNoPacks is returned by OpenPack when no unopened pack is left.
	ErrNoPacks = errors.New("store: no unopened packs")
	// ErrUnknownCard is returned by SetDeck for an id outside the collection.
	ErrUnknownCard = errors.New("store: card not in collection")
)

// Profile is everything persisted about one player.
type Profile struct {
	PlayerID      string          `json:"playerId"`
	Level         int             `json:"level"`
	Experience    int             `json:"experience"`
	Health        int             `json:"health"`
	MaxHealth     int             `json:"maxHealth"`
	UnopenedPacks int             `json:"unopenedPacks"`
	Cards         []gamedata.Card `json:"cards"`
	Deck          []string        `json:"deck"` // Card ids, a subset of Cards
}

// NextLevelAt is the experience needed to leave the current level.
func (p Profile) NextLevelAt() int {
	return p.Level * 100
}

func (p Profile) clone() Profile {
	out := p
	out.Cards = append([]gamedata.Card(nil), p.Cards...)
	out.Deck = append([]string(nil), p.Deck...)
	return out
}

// BattleRecord is one finished battle in the history.
type BattleRecord struct {
	ID               string    `json:"id"`
	PlayerID         string    `json:"playerId"`
	Level            int       `json:"level"`
	Outcome          string    `json:"outcome"`
	Turns            int       `json:"turns"`
	EnemyName        string    `json:"enemyName"`
	PlayerHealth     int       `json:"playerHealth"`
	EnemyHealth      int       `json:"enemyHealth"`
	ExperienceGained int       `json:"experienceGained"`
	RewardCard       string    `json:"rewardCard,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Repository persists profiles and battle records.
type Repository interface {
	GetProfile(ctx context.Context, playerID string) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error
	AddBattle(ctx context.Context, r BattleRecord) error
	// ListBattles returns the player's battles, newest first. A limit <= 0
	// returns all of them.
	ListBattles(ctx context.Context, playerID string, limit int) ([]BattleRecord, error)
	GetBattle(ctx context.Context, id string) (BattleRecord, error)
	Close() error
}

// Open returns a SQLite repository at path, or an in-memory one when path is
// empty.
func Open(path string) (Repository, error) {
	if path == "" {
		return NewMemoryRepository(), nil
	}
	return OpenSQLite(path)
}
