package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakcity/internal/storage"
)

func habitsDoneYesterday(total, done int) []Habit {
	hs := make([]Habit, total)
	for i := range hs {
		hs[i].BestStreak = 1
		if i < done {
			hs[i].CompletionHistory[YesterdaySlot] = true
		}
	}
	return hs
}

func TestForgeTierFirstRun(t *testing.T) {
	assert.Equal(t, ForgeGold, ForgeTierFor(nil, false))
	assert.Equal(t, ForgeGold, ForgeTierFor([]Habit{{Name: "new"}, {Name: "also new"}}, false))
	assert.Equal(t, ForgeNone, ForgeTierFor([]Habit{{Name: "new"}}, true))
	assert.Equal(t, ForgeNone, ForgeTierFor(nil, true))
}

func TestForgeTierPercentages(t *testing.T) {
	cases := []struct {
		total, done int
		want        ForgeTier
	}{
		{10, 0, ForgeNone},
		{10, 1, ForgeStone},
		{10, 4, ForgeStone},
		{10, 5, ForgeIron},
		{3, 2, ForgeIron},
		{10, 7, ForgeIron},
		{4, 3, ForgeGold},
		{10, 8, ForgeGold},
		{10, 9, ForgeDiamond},
		{1, 1, ForgeDiamond},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ForgeTierFor(habitsDoneYesterday(tc.total, tc.done), true), "%d/%d", tc.done, tc.total)
	}
}

func TestRollForgeRewardRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for tier, r := range forgeXP {
		for i := 0; i < 500; i++ {
			got := RollForgeReward(tier, rng)
			if got.XP < r.Min || got.XP > r.Max {
				t.Fatalf("%s xp=%d outside [%d,%d]", tier, got.XP, r.Min, r.Max)
			}
			switch tier {
			case ForgeStone:
				assert.False(t, got.BonusToken)
				assert.Empty(t, got.Message)
			case ForgeGold:
				assert.False(t, got.BonusToken)
			case ForgeDiamond:
				assert.Equal(t, got.BonusToken, got.Message == MessageDiamondRare)
			}
		}
	}
	assert.Equal(t, ForgeReward{Tier: ForgeNone}, RollForgeReward(ForgeNone, rng))
}

func TestForgeRewardOdds(t *testing.T) {
	const rolls = 20000
	const tolerance = 0.015

	cases := []struct {
		tier    ForgeTier
		token   float64
		message string
		msgRate float64
	}{
		{ForgeStone, 0, "", 0},
		{ForgeIron, ironTokenChance, "", 0},
		{ForgeGold, 0, MessageGoldBadge, goldBadgeChance},
		{ForgeDiamond, diamondRareChance, MessageDiamondRare, diamondRareChance},
	}
	for _, tc := range cases {
		t.Run(string(tc.tier), func(t *testing.T) {
			rng := rand.New(rand.NewSource(2024))
			r := forgeXP[tc.tier]
			counts := map[int]int{}
			tokens, messages, sum := 0, 0, 0
			for i := 0; i < rolls; i++ {
				got := RollForgeReward(tc.tier, rng)
				counts[got.XP]++
				sum += got.XP
				if got.BonusToken {
					tokens++
				}
				if tc.message != "" && got.Message == tc.message {
					messages++
				}
			}

			assert.InDelta(t, tc.token, float64(tokens)/rolls, tolerance, "token rate")
			assert.InDelta(t, tc.msgRate, float64(messages)/rolls, tolerance, "message rate")

			// Uniform XP: every value shows up near 1/width of the time.
			width := r.Max - r.Min + 1
			require.Len(t, counts, width)
			expected := float64(rolls) / float64(width)
			for xp, n := range counts {
				assert.InDelta(t, expected, float64(n), expected*0.25, "xp %d", xp)
			}
			assert.InDelta(t, float64(r.Min+r.Max)/2, float64(sum)/rolls, float64(width)*0.02, "mean xp")
		})
	}
}

func seedForgeable(t *testing.T, store storage.Store) {
	seed(t, store, map[string]any{
		storage.KeyLastResetDate: "2024-05-10",
		storage.KeyFirstUseDate:  "2024-05-01",
		storage.KeyHabits:        habitsDoneYesterday(2, 2),
	})
}

func TestForgeOncePerDay(t *testing.T) {
	svc, clk, store := newMemService(t)
	ctx := context.Background()
	seedForgeable(t, store)

	a, err := svc.BeginForge(ctx)
	require.NoError(t, err)
	assert.Equal(t, ForgeDiamond, a.Tier())
	clk.Advance(ForgeHoldDuration)
	assert.Equal(t, 1.0, a.Progress())

	res, err := a.Commit(ctx)
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.GreaterOrEqual(t, res.Reward.XP, 50)
	assert.Equal(t, res.Reward.XP, res.XP.Total)

	_, err = svc.BeginForge(ctx)
	assert.ErrorIs(t, err, ErrForgeUnavailable)

	again, err := a.Commit(ctx)
	require.NoError(t, err)
	assert.False(t, again.Applied)

	p, err := svc.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Reward.XP, p.XP)
	assert.Equal(t, res.Reward.XP, p.Today.Forge)

	clk.Advance(24 * time.Hour)
	st, err := svc.ForgeStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.UsedToday)
	assert.Equal(t, "2024-05-10", st.LastUsed)
}

func TestForgeHoldTooShort(t *testing.T) {
	svc, clk, store := newMemService(t)
	ctx := context.Background()
	seedForgeable(t, store)

	a, err := svc.BeginForge(ctx)
	require.NoError(t, err)
	clk.Advance(time.Second)

	_, err = a.Commit(ctx)
	var hold HoldError
	require.True(t, errors.As(err, &hold))
	assert.ErrorIs(t, err, ErrHoldTooShort)
	assert.Equal(t, time.Second, hold.Held)

	p, err := svc.Progress(ctx)
	require.NoError(t, err)
	assert.Zero(t, p.XP)

	clk.Advance(500 * time.Millisecond)
	res, err := a.Commit(ctx)
	require.NoError(t, err)
	assert.True(t, res.Applied)
}

func TestForgeCancelLeavesNoTrace(t *testing.T) {
	svc, clk, store := newMemService(t)
	ctx := context.Background()
	seedForgeable(t, store)
	before, err := store.Snapshot(ctx, testUser)
	require.NoError(t, err)

	a, err := svc.BeginForge(ctx)
	require.NoError(t, err)
	clk.Advance(time.Second)
	a.Cancel()
	clk.Advance(time.Second)

	_, err = a.Commit(ctx)
	assert.ErrorIs(t, err, ErrForgeCancelled)

	after, err := store.Snapshot(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	st, err := svc.ForgeStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.Available)
}

func TestForgeEmptyRejected(t *testing.T) {
	svc, _, store := newMemService(t)
	ctx := context.Background()
	seed(t, store, map[string]any{
		storage.KeyLastResetDate: "2024-05-10",
		storage.KeyLastForgeDate: "2024-05-01",
		storage.KeyHabits:        habitsDoneYesterday(3, 0),
	})

	_, err := svc.BeginForge(ctx)
	assert.ErrorIs(t, err, ErrForgeEmpty)
}
