package battle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

// settle applies the consequences of a finished battle: experience and a
// possible reward card on a win, a history record, then a delayed return to
// the world view. Every step runs even if an earlier one failed; the errors
// are joined.
func (e *Engine) settle(ctx context.Context, outcome Outcome) error {
	s := &e.state
	var errs []error

	if outcome == OutcomeWin {
		xp := e.cfg.ExperienceBase + s.Level*e.cfg.ExperiencePerLevel
		if err := e.progression.GainExperience(ctx, xp); err != nil {
			errs = append(errs, fmt.Errorf("award experience: %w", err))
		} else {
			s.ExperienceGained = xp
			e.notify(LevelSuccess, "You gain %d experience.", xp)
		}

		if e.rng.Float64() < *e.cfg.RewardChance {
			card, err := e.grantReward(ctx)
			if err != nil {
				errs = append(errs, err)
			} else {
				s.Reward = &card
				e.notify(LevelSuccess, "New card: %s (%s)!", card.Name, card.Rarity)
			}
		}
	}

	if e.recorder != nil {
		if err := e.recorder.RecordBattle(ctx, e.summary()); err != nil {
			errs = append(errs, fmt.Errorf("record battle: %w", err))
		}
	}

	e.after(e.cfg.ResultDelay, func(context.Context) {
		e.nav.SetView(ViewWorld)
	})

	err := errors.Join(errs...)
	if err != nil {
		e.logger.Error("battle settlement incomplete", zap.Error(err))
	}
	return err
}

// grantReward generates a reward card at the player's current level and adds
// it to the collection.
func (e *Engine) grantReward(ctx context.Context) (gamedata.Card, error) {
	level, err := e.progression.Level(ctx)
	if err != nil {
		return gamedata.Card{}, fmt.Errorf("read player level: %w", err)
	}
	card, err := e.generator.Generate(gamedata.SourceReward, level)
	if err != nil {
		return gamedata.Card{}, fmt.Errorf("generate reward: %w", err)
	}
	if err := e.collection.AddCard(ctx, card); err != nil {
		return gamedata.Card{}, fmt.Errorf("add reward to collection: %w", err)
	}
	return card, nil
}

func (e *Engine) summary() Summary {
	s := &e.state
	out := Summary{
		Level:            s.Level,
		Outcome:          s.Outcome,
		Turns:            s.Turns,
		EnemyName:        s.Enemy.Name,
		PlayerHealth:     s.Player.Health,
		EnemyHealth:      s.Enemy.Health,
		ExperienceGained: s.ExperienceGained,
	}
	if s.Reward != nil {
		card := *s.Reward
		out.Reward = &card
	}
	return out
}
