package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

type playerRow struct {
	ID            string `gorm:"primaryKey"`
	Level         int
	Experience    int
	Health        int
	MaxHealth     int
	UnopenedPacks int
	Deck          string // Comma separated card ids
	UpdatedAt     time.Time
}

func (playerRow) TableName() string { return "players" }

type cardRow struct {
	ID             string `gorm:"primaryKey"`
	PlayerID       string `gorm:"index"`
	Position       int
	Name           string
	Description    string
	Type           string
	Rarity         string
	Power          int
	Cost           int
	CreatureType   string
	Color          string
	Effect         string
	EffectPower    int
	EffectDuration int
	UnlockLevel    int
}

func (cardRow) TableName() string { return "owned_cards" }

type battleRow struct {
	ID               string `gorm:"primaryKey"`
	PlayerID         string `gorm:"index"`
	Level            int
	Outcome          string
	Turns            int
	EnemyName        string
	PlayerHealth     int
	EnemyHealth      int
	ExperienceGained int
	RewardCard       string
	CreatedAt        time.Time `gorm:"index"`
}

func (battleRow) TableName() string { return "battle_records" }

// SQLiteRepository is a Repository backed by gorm over sqlite.
type SQLiteRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// the schema.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&playerRow{}, &cardRow{}, &battleRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, playerID string) (Profile, error) {
	var row playerRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	var cards []cardRow
	if err := r.db.WithContext(ctx).Where("player_id = ?", playerID).Order("position").Find(&cards).Error; err != nil {
		return Profile{}, err
	}

	p := Profile{
		PlayerID:      row.ID,
		Level:         row.Level,
		Experience:    row.Experience,
		Health:        row.Health,
		MaxHealth:     row.MaxHealth,
		UnopenedPacks: row.UnopenedPacks,
		Cards:         make([]gamedata.Card, 0, len(cards)),
	}
	if row.Deck != "" {
		p.Deck = strings.Split(row.Deck, ",")
	}
	for _, c := range cards {
		p.Cards = append(p.Cards, c.card())
	}
	return p, nil
}

// SaveProfile replaces the stored profile and its cards in one transaction.
func (r *SQLiteRepository) SaveProfile(ctx context.Context, p Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := playerRow{
			ID:            p.PlayerID,
			Level:         p.Level,
			Experience:    p.Experience,
			Health:        p.Health,
			MaxHealth:     p.MaxHealth,
			UnopenedPacks: p.UnopenedPacks,
			Deck:          strings.Join(p.Deck, ","),
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("player_id = ?", p.PlayerID).Delete(&cardRow{}).Error; err != nil {
			return err
		}
		if len(p.Cards) == 0 {
			return nil
		}
		rows := make([]cardRow, 0, len(p.Cards))
		for i, c := range p.Cards {
			rows = append(rows, newCardRow(p.PlayerID, i, c))
		}
		return tx.Create(&rows).Error
	})
}

func (r *SQLiteRepository) AddBattle(ctx context.Context, rec BattleRecord) error {
	row := battleRow(rec)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *SQLiteRepository) ListBattles(ctx context.Context, playerID string, limit int) ([]BattleRecord, error) {
	q := r.db.WithContext(ctx).Where("player_id = ?", playerID).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []battleRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]BattleRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, BattleRecord(row))
	}
	return out, nil
}

func (r *SQLiteRepository) GetBattle(ctx context.Context, id string) (BattleRecord, error) {
	var row battleRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BattleRecord{}, ErrNotFound
	}
	if err != nil {
		return BattleRecord{}, err
	}
	return BattleRecord(row), nil
}

func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newCardRow(playerID string, position int, c gamedata.Card) cardRow {
	return cardRow{
		ID:             c.ID,
		PlayerID:       playerID,
		Position:       position,
		Name:           c.Name,
		Description:    c.Description,
		Type:           string(c.Type),
		Rarity:         string(c.Rarity),
		Power:          c.Power,
		Cost:           c.Cost,
		CreatureType:   string(c.CreatureType),
		Color:          c.Color,
		Effect:         string(c.Effect),
		EffectPower:    c.EffectPower,
		EffectDuration: c.EffectDuration,
		UnlockLevel:    c.UnlockLevel,
	}
}

func (c cardRow) card() gamedata.Card {
	return gamedata.Card{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Type:           gamedata.CardType(c.Type),
		Rarity:         gamedata.Rarity(c.Rarity),
		Power:          c.Power,
		Cost:           c.Cost,
		CreatureType:   gamedata.CreatureType(c.CreatureType),
		Color:          c.Color,
		Effect:         gamedata.CardEffect(c.Effect),
		EffectPower:    c.EffectPower,
		EffectDuration: c.EffectDuration,
		UnlockLevel:    c.UnlockLevel,
	}
}
