package engine

import (
	"context"
	"strings"
)

type AddHabitInput struct {
	Name       string
	Emoji      string
	Difficulty Difficulty
	// Difficulties overrides the default tier set.
	Difficulties map[Difficulty]DifficultyTier
}

// DefaultEmoji is used when a habit is added without one.
const DefaultEmoji = "✅"

func (s *Service) AddHabit(ctx context.Context, in AddHabitInput) (Habit, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return Habit{}, err
	}
	emoji := strings.TrimSpace(in.Emoji)
	if emoji == "" {
		emoji = DefaultEmoji
	}
	diff := in.Difficulty
	if !diff.IsValid() {
		diff = DefaultDifficulty
	}
	tiers := in.Difficulties
	if len(tiers) == 0 {
		tiers = DefaultDifficultyTiers()
	}

	var h Habit
	err = s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		h = Habit{
			ID:                 s.newID(),
			Name:               name,
			Emoji:              emoji,
			Difficulties:       tiers,
			SelectedDifficulty: diff,
			CreatedAt:          tx.today,
		}
		return tx.saveHabits(append(habits, h))
	})
	if err != nil {
		return Habit{}, err
	}
	return h, nil
}
