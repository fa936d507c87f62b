package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakcity/internal/storage"
)

func TestAddHabitDefaults(t *testing.T) {
	svc, _, _ := newMemService(t)
	ctx := context.Background()

	h, err := svc.AddHabit(ctx, AddHabitInput{Name: "  Floss  "})
	require.NoError(t, err)
	assert.Equal(t, "h1", h.ID)
	assert.Equal(t, "Floss", h.Name)
	assert.Equal(t, DefaultEmoji, h.Emoji)
	assert.Equal(t, DefaultDifficulty, h.SelectedDifficulty)
	assert.Equal(t, "2024-05-10", h.CreatedAt)
	assert.Nil(t, h.LastCompletedDate)

	_, err = svc.AddHabit(ctx, AddHabitInput{Name: "   "})
	assert.Error(t, err)
}

func TestHabitMutations(t *testing.T) {
	svc, _, _ := newMemService(t)
	ctx := context.Background()
	h, err := svc.AddHabit(ctx, AddHabitInput{Name: "Yoga"})
	require.NoError(t, err)

	got, err := svc.SetPinned(ctx, h.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Pinned)

	got, err = svc.SelectDifficulty(ctx, h.ID, DifficultyMedium)
	require.NoError(t, err)
	assert.Equal(t, DifficultyMedium, got.SelectedDifficulty)

	_, err = svc.SelectDifficulty(ctx, h.ID, Difficulty("epic"))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)

	got, err = svc.Rename(ctx, h.ID, "Evening yoga", "🧘")
	require.NoError(t, err)
	assert.Equal(t, "Evening yoga", got.Name)

	found, err := svc.FindHabit(ctx, "evening YOGA")
	require.NoError(t, err)
	assert.Equal(t, h.ID, found.ID)
	found, err = svc.FindHabit(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, h.ID, found.ID)

	_, err = svc.ArchiveHabit(ctx, h.ID)
	require.NoError(t, err)
	_, err = svc.FindHabit(ctx, h.ID)
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestActivateFreezeRejections(t *testing.T) {
	svc, _, store := newMemService(t)
	ctx := context.Background()
	seed(t, store, map[string]any{
		storage.KeyLastResetDate: "2024-05-10",
		storage.KeyHabits:        streaks(4),
	})

	events := countEvents(svc.Bus())
	res, err := svc.ActivateFreeze(ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.ErrorIs(t, res.Reason, ErrNoFreezeTokens)
	assert.Zero(t, *events)

	left, err := svc.GrantFreezeTokens(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	res, err = svc.ActivateFreeze(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 1, res.TokensLeft)

	res, err = svc.ActivateFreeze(ctx, "a")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Reason, ErrAlreadyProtected)
	assert.Equal(t, 1, res.TokensLeft)

	_, err = svc.ActivateFreeze(ctx, "zzz")
	assert.ErrorIs(t, err, ErrHabitNotFound)
}

func TestSpinOncePerDay(t *testing.T) {
	svc, clk, _ := newMemService(t)
	ctx := context.Background()

	first, err := svc.Spin(ctx)
	require.NoError(t, err)
	require.True(t, first.Applied)
	assert.True(t, first.Segment.XP > 0 || first.Segment.Tokens > 0)

	p, err := svc.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Segment.XP, p.XP)
	assert.Equal(t, first.Segment.XP, p.Today.Other)
	assert.Equal(t, first.Segment.Tokens, p.FreezeTokens)

	second, err := svc.Spin(ctx)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.ErrorIs(t, second.Reason, ErrSpinUnavailable)

	clk.Advance(24 * time.Hour)
	third, err := svc.Spin(ctx)
	require.NoError(t, err)
	assert.True(t, third.Applied)
}

func TestSpinWheelWeights(t *testing.T) {
	total := 0
	for _, seg := range SpinWheel {
		total += seg.Weight
	}
	assert.Equal(t, 100, total)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	svc, _, store := newMemService(t)
	ctx := context.Background()

	var topics []Topic
	unsubscribe := svc.Bus().Subscribe(func(e Event) {
		// Handlers may call back into the service.
		if e.Topic == TopicSettings {
			_, err := svc.Settings(ctx)
			assert.NoError(t, err)
		}
		topics = append(topics, e.Topic)
	})

	_, err := svc.UpdateSettings(ctx, Settings{MinimalMode: true, FlatTaskXP: 12})
	require.NoError(t, err)
	assert.Contains(t, topics, TopicSettings)

	raw, ok, err := store.Get(ctx, testUser, storage.KeySettings)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"minimalMode":true,"flatTaskXP":12}`, string(raw))

	topics = nil
	_, err = svc.UpdateSettings(ctx, Settings{MinimalMode: true, FlatTaskXP: 12})
	require.NoError(t, err)
	assert.Empty(t, topics)

	unsubscribe()
	_, err = svc.AddXP(ctx, 5, SourceOther)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestBadges(t *testing.T) {
	svc, _, _ := newMemService(t)
	ctx := context.Background()
	h, err := svc.AddHabit(ctx, AddHabitInput{Name: "Push-ups"})
	require.NoError(t, err)
	_, err = svc.CompleteHabit(ctx, h.ID)
	require.NoError(t, err)

	badges, err := svc.Badges(ctx)
	require.NoError(t, err)
	earned := map[string]bool{}
	for _, b := range badges {
		earned[b.ID] = b.Earned
	}
	assert.True(t, earned["first_check"])
	assert.False(t, earned["regular"])
	assert.False(t, earned["week_one"])
}
