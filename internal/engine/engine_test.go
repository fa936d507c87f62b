package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakcity/internal/clock"
	"streakcity/internal/storage"
)

const testUser = "main_user"

var testStart = time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)

func testOptions(clk clock.Clock) []Option {
	n := 0
	return []Option{
		WithClock(clk),
		WithRand(rand.New(rand.NewSource(1))),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("h%d", n)
		}),
	}
}

func newTestService(t *testing.T) (*Service, *clock.Fake) {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	clk := clock.NewFake(testStart)
	opts := append(testOptions(clk), WithAwardLog(storage.NewAwardRepo(db)))
	return NewService(storage.NewKVRepo(db), testUser, opts...), clk
}

func newMemService(t *testing.T) (*Service, *clock.Fake, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	clk := clock.NewFake(testStart)
	return NewService(store, testUser, testOptions(clk)...), clk, store
}

func seed(t *testing.T, s storage.Store, values map[string]any) {
	t.Helper()
	raw := map[string][]byte{}
	for k, v := range values {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		raw[k] = b
	}
	require.NoError(t, s.Put(context.Background(), testUser, raw))
}

func strptr(s string) *string { return &s }

func countEvents(bus *Bus) *int {
	n := 0
	bus.Subscribe(func(Event) { n++ })
	return &n
}

func TestCompleteHabitAwardsAndGuards(t *testing.T) {
	svc, clk := newTestService(t)
	ctx := context.Background()
	clk.Set(time.Date(2024, 5, 10, 7, 15, 0, 0, time.UTC))

	h, err := svc.AddHabit(ctx, AddHabitInput{Name: "Morning run", Emoji: "🏃"})
	if err != nil {
		t.Fatalf("AddHabit: %v", err)
	}

	res, err := svc.CompleteHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("CompleteHabit: %v", err)
	}
	require.True(t, res.Applied)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 1, res.BestStreak)
	assert.Equal(t, TimeLabelEarlyBird, res.TimeBonus.Label)
	assert.Equal(t, []XPAward{
		{Source: SourceTask, Amount: 10},
		{Source: SourceEarlyBonus, Amount: 8},
		{Source: SourceAllTasks, Amount: 30},
		{Source: SourceMission, Amount: 10},
	}, res.Awards)
	assert.Equal(t, 58, res.XPAwarded())
	assert.True(t, res.AllTasksBonus)
	assert.True(t, res.Mission.JustCompleted)

	p, err := svc.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 58, p.XP)
	assert.Equal(t, 1, p.TotalCompletions)
	assert.Equal(t, XPToday{Date: "2024-05-10", Task: 10, EarlyBonus: 8, AllTasksBonus: 30, Mission: 10, Total: 58}, p.Today)

	events := countEvents(svc.Bus())
	again, err := svc.CompleteHabit(ctx, h.ID)
	if err != nil {
		t.Fatalf("second CompleteHabit: %v", err)
	}
	assert.False(t, again.Applied)
	assert.ErrorIs(t, again.Reason, ErrAlreadyCompleted)
	assert.Zero(t, *events)

	p, err = svc.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 58, p.XP)
	assert.Equal(t, 1, p.TotalCompletions)

	hs, err := svc.Habits(ctx)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.True(t, hs[0].CompletedToday)
	assert.Equal(t, "2024-05-10", *hs[0].LastCompletedDate)
	assert.True(t, hs[0].CompletionHistory[TodaySlot])

	log, err := svc.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, log, 4)
	assert.Equal(t, string(SourceMission), log[0].Source)
	assert.Equal(t, 58, log[0].Total)
}

func TestCompleteUnknownHabit(t *testing.T) {
	svc, _, _ := newMemService(t)
	_, err := svc.CompleteHabit(context.Background(), "nope")
	if !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("err=%v, want ErrHabitNotFound", err)
	}
}

func TestMinimalModeFlatAward(t *testing.T) {
	svc, _, _ := newMemService(t)
	ctx := context.Background()

	_, err := svc.UpdateSettings(ctx, Settings{MinimalMode: true, FlatTaskXP: 15})
	require.NoError(t, err)
	a, err := svc.AddHabit(ctx, AddHabitInput{Name: "Deep work", Difficulty: DifficultyHard})
	require.NoError(t, err)
	_, err = svc.AddHabit(ctx, AddHabitInput{Name: "Stretch"})
	require.NoError(t, err)

	res, err := svc.CompleteHabit(ctx, a.ID)
	require.NoError(t, err)
	require.NotEmpty(t, res.Awards)
	assert.Equal(t, XPAward{Source: SourceTask, Amount: 15}, res.Awards[0])
}

func TestTaskXPUsesSelectedTier(t *testing.T) {
	h := Habit{SelectedDifficulty: DifficultyHard, Difficulties: DefaultDifficultyTiers()}
	assert.Equal(t, 30, TaskXP(h, DefaultSettings()))

	h.Difficulties = map[Difficulty]DifficultyTier{DifficultyHard: {Label: "Beast", Points: 45, CustomLabel: "10k"}}
	assert.Equal(t, 45, TaskXP(h, DefaultSettings()))

	assert.Equal(t, 10, TaskXP(Habit{}, DefaultSettings()))
}

func TestMalformedStateFallsBack(t *testing.T) {
	svc, _, store := newMemService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testUser, map[string][]byte{
		storage.KeyHabits: []byte(`{not json`),
		storage.KeyXP:     []byte(`"lots"`),
	}))

	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Empty(t, ov.Habits)
	assert.Equal(t, 0, ov.Progress.XP)
	assert.Equal(t, GradeNeedsWork, ov.Score.Grade)
}

func TestShortHistoryIsPadded(t *testing.T) {
	svc, _, store := newMemService(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, testUser, map[string][]byte{
		storage.KeyLastResetDate: []byte(`"2024-05-10"`),
		storage.KeyHabits:        []byte(`[{"id":"x","name":"Read","streak":-4,"completionHistory":[true,true]}]`),
	}))

	hs, err := svc.Habits(ctx)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, History{true, true}, hs[0].CompletionHistory)
	assert.Equal(t, 0, hs[0].Streak)
	assert.Equal(t, DefaultDifficulty, hs[0].SelectedDifficulty)
}
