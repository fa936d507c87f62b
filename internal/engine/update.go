package engine

import (
	"context"
	"fmt"
	"strings"

	"streakcity/internal/storage"
)

// mutateHabit applies fn to one habit and saves the list when fn reports a change.
func (s *Service) mutateHabit(ctx context.Context, id string, fn func(h *Habit) bool) (Habit, error) {
	var out Habit
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		idx := findHabit(habits, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, id)
		}
		changed := fn(&habits[idx])
		out = habits[idx]
		if !changed {
			return nil
		}
		return tx.saveHabits(habits)
	})
	return out, err
}

func (s *Service) SetPinned(ctx context.Context, id string, pinned bool) (Habit, error) {
	return s.mutateHabit(ctx, id, func(h *Habit) bool {
		if h.Pinned == pinned {
			return false
		}
		h.Pinned = pinned
		return true
	})
}

func (s *Service) Rename(ctx context.Context, id, name, emoji string) (Habit, error) {
	n, err := normalizeName(name)
	if err != nil {
		return Habit{}, err
	}
	return s.mutateHabit(ctx, id, func(h *Habit) bool {
		h.Name = n
		if emoji != "" {
			h.Emoji = emoji
		}
		return true
	})
}

// SelectDifficulty changes the tier future completions are scored at.
func (s *Service) SelectDifficulty(ctx context.Context, id string, d Difficulty) (Habit, error) {
	if !d.IsValid() {
		return Habit{}, fmt.Errorf("%w: %q", ErrInvalidDifficulty, d)
	}
	return s.mutateHabit(ctx, id, func(h *Habit) bool {
		if h.SelectedDifficulty == d {
			return false
		}
		h.SelectedDifficulty = d
		return true
	})
}

// ArchiveHabit removes a habit together with its streak milestone ledger.
func (s *Service) ArchiveHabit(ctx context.Context, id string) (Habit, error) {
	var out Habit
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		idx := findHabit(habits, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, id)
		}
		out = habits[idx]
		habits = append(habits[:idx], habits[idx+1:]...)
		if err := tx.saveHabits(habits); err != nil {
			return err
		}

		ledger, err := tx.habitMilestoneLedger()
		if err != nil {
			return err
		}
		if _, ok := ledger[id]; ok {
			delete(ledger, id)
			return tx.set(storage.KeyHabitMilestones, ledger)
		}
		return nil
	})
	return out, err
}

// FindHabit resolves a user reference: an exact id, a unique id prefix or a
// case-insensitive name.
func (s *Service) FindHabit(ctx context.Context, ref string) (Habit, error) {
	habits, err := s.Habits(ctx)
	if err != nil {
		return Habit{}, err
	}
	ref = strings.TrimSpace(ref)
	var matches []Habit
	for _, h := range habits {
		switch {
		case h.ID == ref:
			return h, nil
		case strings.EqualFold(h.Name, ref):
			return h, nil
		case ref != "" && strings.HasPrefix(h.ID, ref):
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, ref)
	default:
		return Habit{}, fmt.Errorf("habit reference %q is ambiguous (%d matches)", ref, len(matches))
	}
}
