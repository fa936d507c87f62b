package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakcity/internal/storage"
)

func streaks(ss ...int) []Habit {
	hs := make([]Habit, len(ss))
	for i, s := range ss {
		hs[i] = Habit{ID: string(rune('a' + i)), Streak: s, BestStreak: s}
	}
	return hs
}

func TestGenerateMissionDeterministic(t *testing.T) {
	hs := streaks(8, 0, 2, 1, 0)
	first := GenerateMission(hs, "2024-05-10")
	second := GenerateMission(hs, "2024-05-10")
	assert.Equal(t, first, second)
	assert.Equal(t, DifficultyHard, first.Difficulty)
	assert.Equal(t, 5, first.Target)
	assert.Equal(t, 50, first.XPReward)
	assert.Zero(t, first.Progress)
	assert.False(t, first.Completed)
}

func TestGenerateMissionRules(t *testing.T) {
	cases := []struct {
		name   string
		habits []Habit
		diff   Difficulty
		target int
		xp     int
	}{
		{"single hard habit", streaks(7), DifficultyHard, 1, 50},
		{"ten habits hard", streaks(9, 0, 0, 0, 0, 0, 0, 0, 0, 0), DifficultyHard, 9, 50},
		{"three habits hard", streaks(7, 0, 0), DifficultyHard, 3, 50},
		{"streak of three", streaks(3, 0, 0, 0), DifficultyMedium, 1, 25},
		{"three fresh habits", streaks(0, 1, 2), DifficultyMedium, 2, 25},
		{"two fresh habits", streaks(0, 2), DifficultyEasy, 1, 10},
		{"no habits", nil, DifficultyEasy, 1, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := GenerateMission(tc.habits, "2024-05-10")
			assert.Equal(t, tc.diff, m.Difficulty)
			assert.Equal(t, tc.target, m.Target)
			assert.Equal(t, tc.xp, m.XPReward)
			assert.Equal(t, "2024-05-10", m.Date)
		})
	}
}

func TestMissionAwardsOnce(t *testing.T) {
	svc, _, store := newMemService(t)
	ctx := context.Background()
	seed(t, store, map[string]any{
		storage.KeyLastResetDate: "2024-05-10",
		storage.KeyHabits:        streaks(0, 0, 0),
	})

	m, err := svc.DailyMission(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Mission.Target)
	assert.False(t, m.JustCompleted)

	r1, err := svc.CompleteHabit(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, r1.Mission.Mission.Progress)
	assert.False(t, r1.Mission.JustCompleted)

	r2, err := svc.CompleteHabit(ctx, "b")
	require.NoError(t, err)
	assert.True(t, r2.Mission.JustCompleted)
	assert.True(t, r2.Mission.Mission.Completed)

	r3, err := svc.CompleteHabit(ctx, "c")
	require.NoError(t, err)
	assert.False(t, r3.Mission.JustCompleted)
	assert.Equal(t, 2, r3.Mission.Mission.Progress)

	l, err := svc.XPToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, l.Mission)
}

func TestRecoveryMissionOverrides(t *testing.T) {
	svc, _, store := newMemService(t)
	ctx := context.Background()
	seed(t, store, map[string]any{
		storage.KeyLastResetDate: "2024-05-10",
		storage.KeyHabits:        streaks(9),
	})

	m, err := svc.DailyMission(ctx)
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, m.Mission.Difficulty)

	rec, err := svc.InstallRecoveryMission(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Complete 1 task today", rec.Title)
	assert.Equal(t, 30, rec.XPReward)
	assert.Equal(t, 1, rec.Target)

	got, err := svc.DailyMission(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec, got.Mission)
}

func seedStreakTwo(t *testing.T, store storage.Store) {
	t.Helper()
	yesterday := "2024-05-09"
	h := Habit{ID: "a", Name: "Run", Streak: 2, BestStreak: 2, LastCompletedDate: &yesterday}
	h.CompletionHistory[TodaySlot] = true
	h.CompletionHistory[YesterdaySlot] = true
	seed(t, store, map[string]any{
		storage.KeyLastResetDate: yesterday,
		storage.KeyFirstUseDate:  "2024-05-01",
		storage.KeyHabits:        []Habit{h},
	})
}

func TestMissionIndependentOfFirstCall(t *testing.T) {
	ctx := context.Background()

	completeFirst, _, store := newMemService(t)
	seedStreakTwo(t, store)
	r1, err := completeFirst.CompleteHabit(ctx, "a")
	require.NoError(t, err)
	require.True(t, r1.Applied)
	assert.Equal(t, 3, r1.Streak)

	missionFirst, _, store2 := newMemService(t)
	seedStreakTwo(t, store2)
	before, err := missionFirst.DailyMission(ctx)
	require.NoError(t, err)
	assert.Equal(t, DifficultyEasy, before.Mission.Difficulty)
	assert.Equal(t, 10, before.Mission.XPReward)
	r2, err := missionFirst.CompleteHabit(ctx, "a")
	require.NoError(t, err)
	require.True(t, r2.Applied)

	assert.Equal(t, r2.Mission.Mission, r1.Mission.Mission)
	assert.Equal(t, DifficultyEasy, r1.Mission.Mission.Difficulty)
	assert.Equal(t, 10, r1.Mission.Mission.XPReward)
	assert.True(t, r1.Mission.JustCompleted)
}

func TestGenerateMissionFallsBackToLastDefinition(t *testing.T) {
	m := GenerateMission(nil, "2024-05-10")
	last := missionDefs[len(missionDefs)-1]
	assert.Equal(t, "2024-05-10-"+last.Kind, m.ID)
	assert.Equal(t, last.Title, m.Title)
}
