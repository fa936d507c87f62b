package engine

import (
	"context"
	"fmt"
	"slices"

	"streakcity/internal/storage"
)

type Milestone struct {
	Day   int
	XP    int
	Title string
}

// CelebrationMilestones are claimed once per user, ascending by day.
var CelebrationMilestones = []Milestone{
	{Day: 3, XP: 30, Title: "Spark"},
	{Day: 7, XP: 75, Title: "One full week"},
	{Day: 14, XP: 150, Title: "Fortnight"},
	{Day: 30, XP: 300, Title: "Monthly master"},
	{Day: 100, XP: 1000, Title: "Centurion"},
}

// HabitStreakMilestones are claimed once per habit, ascending by day.
var HabitStreakMilestones = []Milestone{
	{Day: 7, XP: 50, Title: "7-day streak"},
	{Day: 14, XP: 100, Title: "14-day streak"},
	{Day: 30, XP: 200, Title: "30-day streak"},
}

func maxStreak(habits []Habit) int {
	m := 0
	for _, h := range habits {
		if h.Streak > m {
			m = h.Streak
		}
	}
	return m
}

// CheckMilestones returns the lowest unclaimed celebration reached by the
// longest current streak, or nil.
func CheckMilestones(habits []Habit, claimed []int) *Milestone {
	top := maxStreak(habits)
	for _, m := range CelebrationMilestones {
		if m.Day <= top && !slices.Contains(claimed, m.Day) {
			return &m
		}
	}
	return nil
}

// HabitMilestonesDue lists the per-habit milestones h has reached but not claimed.
func HabitMilestonesDue(h Habit, claimed []int) []Milestone {
	var out []Milestone
	for _, m := range HabitStreakMilestones {
		if m.Day <= h.Streak && !slices.Contains(claimed, m.Day) {
			out = append(out, m)
		}
	}
	return out
}

func celebration(day int) (Milestone, bool) {
	for _, m := range CelebrationMilestones {
		if m.Day == day {
			return m, true
		}
	}
	return Milestone{}, false
}

func (tx *txn) claimedMilestones() ([]int, error) {
	return load[[]int](tx, storage.KeyMilestonesClaimed, nil)
}

func (tx *txn) habitMilestoneLedger() (map[string][]int, error) {
	l, err := load[map[string][]int](tx, storage.KeyHabitMilestones, nil)
	if l == nil {
		l = map[string][]int{}
	}
	return l, err
}

// claimHabitMilestones awards every due per-habit milestone of h.
func (tx *txn) claimHabitMilestones(h Habit) ([]Milestone, error) {
	ledger, err := tx.habitMilestoneLedger()
	if err != nil {
		return nil, err
	}
	due := HabitMilestonesDue(h, ledger[h.ID])
	if len(due) == 0 {
		return nil, nil
	}
	for _, m := range due {
		ledger[h.ID] = append(ledger[h.ID], m.Day)
		if _, err := tx.addXP(m.XP, SourceStreak); err != nil {
			return nil, err
		}
	}
	slices.Sort(ledger[h.ID])
	if err := tx.set(storage.KeyHabitMilestones, ledger); err != nil {
		return nil, err
	}
	return due, nil
}

type MilestoneClaim struct {
	Milestone Milestone
	Applied   bool
	Reason    error
	XP        XPResult
}

// PendingMilestone returns the celebration waiting to be shown, if any.
func (s *Service) PendingMilestone(ctx context.Context) (*Milestone, error) {
	var out *Milestone
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		claimed, err := tx.claimedMilestones()
		if err != nil {
			return err
		}
		out = CheckMilestones(habits, claimed)
		return nil
	})
	return out, err
}

func (s *Service) ClaimedMilestones(ctx context.Context) ([]int, error) {
	var out []int
	err := s.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.claimedMilestones()
		return err
	})
	return out, err
}

// ClaimMilestone records a celebration day. Only the first claim awards XP.
func (s *Service) ClaimMilestone(ctx context.Context, day int) (MilestoneClaim, error) {
	m, ok := celebration(day)
	if !ok {
		return MilestoneClaim{}, fmt.Errorf("%w: day %d", ErrUnknownMilestone, day)
	}
	out := MilestoneClaim{Milestone: m}
	err := s.update(ctx, func(tx *txn) error {
		claimed, err := tx.claimedMilestones()
		if err != nil {
			return err
		}
		if slices.Contains(claimed, day) {
			out.Reason = ErrMilestoneClaimed
			return nil
		}
		claimed = append(claimed, day)
		slices.Sort(claimed)
		if err := tx.set(storage.KeyMilestonesClaimed, claimed); err != nil {
			return err
		}
		out.XP, err = tx.addXP(m.XP, SourceMilestone)
		if err != nil {
			return err
		}
		out.Applied = true
		return nil
	})
	return out, err
}
