package engine

import (
	"context"
	"fmt"

	"streakcity/internal/storage"
)

const (
	// CompletionBonusBase feeds ApplyMultipliers for the per-completion bonus.
	CompletionBonusBase = 5
	// AllTasksBonusBase feeds ApplyMultipliers for the all-done-today bonus.
	AllTasksBonusBase = 20
)

type XPAward struct {
	Source Source
	Amount int
}

type CompleteResult struct {
	HabitID string
	Applied bool
	Reason  error

	Streak     int
	BestStreak int
	Awards     []XPAward
	XP         XPResult
	LevelUp    bool
	TimeBonus  TimeBonus

	AllTasksBonus   bool
	HabitMilestones []Milestone
	Mission         MissionResult
	// Celebration is the next unclaimed celebration milestone, if any.
	Celebration *Milestone
}

// XPAwarded sums every award of the completion.
func (r CompleteResult) XPAwarded() int {
	n := 0
	for _, a := range r.Awards {
		n += a.Amount
	}
	return n
}

// TaskXP is the base award of one completion of h.
func TaskXP(h Habit, st Settings) int {
	if st.MinimalMode {
		return st.FlatTaskXP
	}
	tiers := h.Difficulties
	if len(tiers) == 0 {
		tiers = DefaultDifficultyTiers()
	}
	if t, ok := tiers[h.SelectedDifficulty]; ok {
		return t.Points
	}
	return DefaultDifficultyTiers()[DefaultDifficulty].Points
}

// CompleteHabit marks a habit done for today. A second completion on the same
// day is rejected with ErrAlreadyCompleted and changes nothing.
func (s *Service) CompleteHabit(ctx context.Context, id string) (CompleteResult, error) {
	out := CompleteResult{HabitID: id}
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		idx := findHabit(habits, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, id)
		}
		if habits[idx].CompletedToday {
			out.Reason = ErrAlreadyCompleted
			out.Streak = habits[idx].Streak
			out.BestStreak = habits[idx].BestStreak
			return nil
		}
		// Today's mission is chosen from the habits as they stood before this completion.
		if _, err := tx.mission(habits); err != nil {
			return err
		}

		h := &habits[idx]
		h.CompletedToday = true
		h.Streak++
		h.BestStreak = max(h.BestStreak, h.Streak)
		today := tx.today
		h.LastCompletedDate = &today
		h.CompletionHistory[TodaySlot] = true
		if err := tx.saveHabits(habits); err != nil {
			return err
		}
		done := *h

		total, err := tx.intValue(storage.KeyTotalCompletions)
		if err != nil {
			return err
		}
		if err := tx.set(storage.KeyTotalCompletions, total+1); err != nil {
			return err
		}

		xpBefore, err := tx.intValue(storage.KeyXP)
		if err != nil {
			return err
		}
		award := func(amount int, src Source) error {
			if amount == 0 {
				return nil
			}
			if _, err := tx.addXP(amount, src); err != nil {
				return err
			}
			out.Awards = append(out.Awards, XPAward{Source: src, Amount: amount})
			return nil
		}

		st, err := tx.settings()
		if err != nil {
			return err
		}
		if err := award(TaskXP(done, st), SourceTask); err != nil {
			return err
		}

		hour := tx.now.Hour()
		tb := TimeMultiplier(hour)
		out.TimeBonus = tb
		if ComboMultiplier(done.Streak) > 1 || tb.Multiplier > 1 {
			src := SourceCombo
			if tb.Label == TimeLabelEarlyBird {
				src = SourceEarlyBonus
			}
			if err := award(ApplyMultipliers(CompletionBonusBase, done.Streak, hour), src); err != nil {
				return err
			}
		}

		hm, err := tx.claimHabitMilestones(done)
		if err != nil {
			return err
		}
		for _, m := range hm {
			out.Awards = append(out.Awards, XPAward{Source: SourceStreak, Amount: m.XP})
		}
		out.HabitMilestones = hm

		if allCompleted(habits) {
			last, err := tx.dateValue(storage.KeyAllTasksBonusDate)
			if err != nil {
				return err
			}
			if last != tx.today {
				if err := tx.set(storage.KeyAllTasksBonusDate, tx.today); err != nil {
					return err
				}
				if err := award(ApplyMultipliers(AllTasksBonusBase, maxStreak(habits), hour), SourceAllTasks); err != nil {
					return err
				}
				out.AllTasksBonus = true
			}
		}

		out.Mission, err = tx.evaluateMission(habits)
		if err != nil {
			return err
		}
		if out.Mission.JustCompleted {
			out.Awards = append(out.Awards, XPAward{Source: SourceMission, Amount: out.Mission.Mission.XPReward})
		}

		claimed, err := tx.claimedMilestones()
		if err != nil {
			return err
		}
		out.Celebration = CheckMilestones(habits, claimed)

		final, err := tx.intValue(storage.KeyXP)
		if err != nil {
			return err
		}
		lvl := GetLevel(final).Level
		out.LevelUp = lvl > GetLevel(xpBefore).Level
		out.XP = XPResult{Total: final, Level: lvl, LeveledUp: out.LevelUp}
		out.Applied = true
		out.Streak = done.Streak
		out.BestStreak = done.BestStreak
		return nil
	})
	return out, err
}

func allCompleted(habits []Habit) bool {
	if len(habits) == 0 {
		return false
	}
	for _, h := range habits {
		if !h.CompletedToday {
			return false
		}
	}
	return true
}
