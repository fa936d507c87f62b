package engine

import (
	"context"

	"streakcity/internal/clock"
	"streakcity/internal/storage"
)

// ComebackDays is the absence after which the recovery mission is installed.
const ComebackDays = 3

type StreakChange struct {
	HabitID string
	From    int
	To      int
}

type ResetResult struct {
	Ran        bool
	Date       string
	DaysMissed int
	Decayed    []StreakChange
	// Frozen lists habits whose streak a freeze token preserved.
	Frozen   []string
	Comeback bool
}

// RotateHistory shifts the window left by daysMissed, fills the vacated
// slots with false and records yesterday's outcome in YesterdaySlot.
func RotateHistory(h History, daysMissed int, completedYesterday bool) History {
	var out History
	if daysMissed < 0 {
		daysMissed = 0
	}
	if daysMissed < HistoryLen {
		copy(out[:], h[daysMissed:])
	}
	out[YesterdaySlot] = completedYesterday
	out[TodaySlot] = false
	return out
}

// ResetHabit applies one rollover pass to h.
func ResetHabit(h Habit, yesterday string, daysMissed int) (Habit, bool) {
	h.CompletedToday = false
	wasYesterday := h.LastCompletedDate != nil && *h.LastCompletedDate == yesterday
	frozen := false
	switch {
	case h.FreezeProtected:
		h.FreezeProtected = false
		frozen = true
	case !wasYesterday && h.Streak > 0:
		h.Streak -= daysMissed
		if h.Streak < 0 {
			h.Streak = 0
		}
	}
	h.CompletionHistory = RotateHistory(h.CompletionHistory, daysMissed, wasYesterday)
	return h, frozen
}

func (tx *txn) dailyReset() (ResetResult, error) {
	res := ResetResult{Date: tx.today}

	last, err := tx.dateValue(storage.KeyLastResetDate)
	if err != nil {
		return res, err
	}
	if first, err := tx.dateValue(storage.KeyFirstUseDate); err != nil {
		return res, err
	} else if first == "" {
		if err := tx.set(storage.KeyFirstUseDate, tx.today); err != nil {
			return res, err
		}
	}
	// Also a no-op when the clock moved backwards.
	if last != "" && last >= tx.today {
		return res, nil
	}

	res.DaysMissed = 1
	if last != "" {
		d, err := clock.DaysBetween(last, tx.today)
		if err != nil {
			tx.s.log.Warn("malformed last reset date", "user", tx.s.user, "value", last, "err", err)
		} else if d > 1 {
			res.DaysMissed = d
		}
	}

	habits, err := tx.habits()
	if err != nil {
		return res, err
	}
	yesterday := tx.yesterday()
	for i := range habits {
		before := habits[i].Streak
		var frozen bool
		habits[i], frozen = ResetHabit(habits[i], yesterday, res.DaysMissed)
		if frozen {
			res.Frozen = append(res.Frozen, habits[i].ID)
		}
		if habits[i].Streak != before {
			res.Decayed = append(res.Decayed, StreakChange{HabitID: habits[i].ID, From: before, To: habits[i].Streak})
		}
	}
	if len(habits) > 0 {
		if err := tx.saveHabits(habits); err != nil {
			return res, err
		}
	}
	if err := tx.set(storage.KeyLastResetDate, tx.today); err != nil {
		return res, err
	}
	res.Ran = true

	if last != "" && res.DaysMissed >= ComebackDays {
		res.Comeback = true
		if err := tx.set(storage.KeyDailyMission, RecoveryMission(tx.today)); err != nil {
			return res, err
		}
	}

	tx.s.log.Info("daily reset",
		"user", tx.s.user,
		"date", tx.today,
		"days_missed", res.DaysMissed,
		"decayed", len(res.Decayed),
		"frozen", len(res.Frozen),
		"comeback", res.Comeback,
	)
	return res, nil
}

// RunDailyReset runs the day rollover if it has not run today.
func (s *Service) RunDailyReset(ctx context.Context) (ResetResult, error) {
	var out ResetResult
	err := s.transact(ctx, func(tx *txn) error {
		var err error
		out, err = tx.dailyReset()
		return err
	})
	return out, err
}
