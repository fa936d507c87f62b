package engine

import (
	"context"

	"streakcity/internal/storage"
)

type Mission struct {
	ID         string     `json:"id"`
	Date       string     `json:"date"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	XPReward   int        `json:"xpReward"`
	Target     int        `json:"target"`
	Progress   int        `json:"progress"`
	Completed  bool       `json:"completed"`
}

type missionDef struct {
	Kind       string
	Title      string
	Difficulty Difficulty
	XPReward   int
	Applies    func(habits []Habit) bool
	Target     func(habitCount int) int
}

// missionDefs are tried in order; the first that applies wins.
var missionDefs = []missionDef{
	{
		Kind:       "consistency",
		Title:      "Complete at least 90% of your habits today",
		Difficulty: DifficultyHard,
		XPReward:   50,
		Applies:    anyStreakAtLeast(7),
		Target: func(n int) int {
			// ceil(n * 0.9)
			return max((n*9+9)/10, 1)
		},
	},
	{
		Kind:       "keep-streak",
		Title:      "Keep your streaks alive: complete at least 1 habit",
		Difficulty: DifficultyMedium,
		XPReward:   25,
		Applies:    anyStreakAtLeast(3),
		Target:     fixedTarget(1),
	},
	{
		Kind:       "double",
		Title:      "Complete 2 habits today",
		Difficulty: DifficultyMedium,
		XPReward:   25,
		Applies:    func(hs []Habit) bool { return len(hs) >= 3 },
		Target:     fixedTarget(2),
	},
	{
		Kind:       "warm-up",
		Title:      "Complete any 1 habit today",
		Difficulty: DifficultyEasy,
		XPReward:   10,
		Applies:    func([]Habit) bool { return true },
		Target:     fixedTarget(1),
	},
}

func anyStreakAtLeast(n int) func([]Habit) bool {
	return func(hs []Habit) bool {
		for _, h := range hs {
			if h.Streak >= n {
				return true
			}
		}
		return false
	}
}

func fixedTarget(n int) func(int) int {
	return func(int) int { return n }
}

// GenerateMission picks today's mission from the habit set. Same input, same mission.
// The last definition is the fallback.
func GenerateMission(habits []Habit, today string) Mission {
	d := missionDefs[len(missionDefs)-1]
	for _, def := range missionDefs {
		if def.Applies(habits) {
			d = def
			break
		}
	}
	return Mission{
		ID:         today + "-" + d.Kind,
		Date:       today,
		Title:      d.Title,
		Difficulty: d.Difficulty,
		XPReward:   d.XPReward,
		Target:     d.Target(len(habits)),
	}
}

// RecoveryMission is installed after an absence, replacing the day's mission.
func RecoveryMission(today string) Mission {
	return Mission{
		ID:         today + "-recovery",
		Date:       today,
		Title:      "Complete 1 task today",
		Difficulty: DifficultyEasy,
		XPReward:   30,
		Target:     1,
	}
}

type MissionResult struct {
	Mission Mission
	// JustCompleted is set on the evaluation that awarded the mission XP.
	JustCompleted bool
	XP            XPResult
}

func (tx *txn) mission(habits []Habit) (Mission, error) {
	m, err := load(tx, storage.KeyDailyMission, Mission{})
	if err != nil {
		return Mission{}, err
	}
	if m.Date == tx.today && m.Target > 0 {
		return m, nil
	}
	m = GenerateMission(habits, tx.today)
	if err := tx.set(storage.KeyDailyMission, m); err != nil {
		return Mission{}, err
	}
	return m, nil
}

// evaluateMission refreshes progress and awards the reward on the first
// transition to completed.
func (tx *txn) evaluateMission(habits []Habit) (MissionResult, error) {
	m, err := tx.mission(habits)
	if err != nil {
		return MissionResult{}, err
	}
	res := MissionResult{Mission: m}
	if m.Completed {
		return res, nil
	}

	done := 0
	for _, h := range habits {
		if h.CompletedToday {
			done++
		}
	}
	progress := min(done, m.Target)
	if progress == m.Progress && progress < m.Target {
		return res, nil
	}
	m.Progress = progress
	if m.Progress >= m.Target {
		m.Completed = true
		xp, err := tx.addXP(m.XPReward, SourceMission)
		if err != nil {
			return MissionResult{}, err
		}
		res.JustCompleted = true
		res.XP = xp
	}
	if err := tx.set(storage.KeyDailyMission, m); err != nil {
		return MissionResult{}, err
	}
	res.Mission = m
	return res, nil
}

// DailyMission returns today's mission, generating it if needed.
func (s *Service) DailyMission(ctx context.Context) (MissionResult, error) {
	var out MissionResult
	err := s.update(ctx, func(tx *txn) error {
		habits, err := tx.habits()
		if err != nil {
			return err
		}
		out, err = tx.evaluateMission(habits)
		return err
	})
	return out, err
}

// InstallRecoveryMission overwrites today's mission with the recovery one.
func (s *Service) InstallRecoveryMission(ctx context.Context) (Mission, error) {
	var m Mission
	err := s.update(ctx, func(tx *txn) error {
		m = RecoveryMission(tx.today)
		return tx.set(storage.KeyDailyMission, m)
	})
	return m, err
}
