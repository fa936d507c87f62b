package engine

import (
	"context"
	"fmt"

	"streakcity/internal/storage"
)

type FreezeResult struct {
	HabitID    string
	Applied    bool
	Reason     error
	TokensLeft int
}

// ActivateFreeze spends one token to protect a habit's streak through the
// next reset.
func (s *Service) ActivateFreeze(ctx context.Context, habitID string) (FreezeResult, error) {
	out := FreezeResult{HabitID: habitID}
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		idx := findHabit(habits, habitID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, habitID)
		}
		tokens, err := tx.intValue(storage.KeyFreezeTokens)
		if err != nil {
			return err
		}
		out.TokensLeft = tokens
		switch {
		case habits[idx].FreezeProtected:
			out.Reason = ErrAlreadyProtected
			return nil
		case tokens < 1:
			out.Reason = ErrNoFreezeTokens
			return nil
		}

		habits[idx].FreezeProtected = true
		if err := tx.saveHabits(habits); err != nil {
			return err
		}
		out.TokensLeft, err = tx.addTokens(-1)
		if err != nil {
			return err
		}
		out.Applied = true
		return nil
	})
	return out, err
}

func (s *Service) FreezeTokens(ctx context.Context) (int, error) {
	var n int
	err := s.update(ctx, func(tx *txn) error {
		var err error
		n, err = tx.intValue(storage.KeyFreezeTokens)
		return err
	})
	return n, err
}

// GrantFreezeTokens adds tokens from an outside reward.
func (s *Service) GrantFreezeTokens(ctx context.Context, n int) (int, error) {
	var left int
	err := s.update(ctx, func(tx *txn) error {
		var err error
		left, err = tx.addTokens(n)
		return err
	})
	return left, err
}
