package engine

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"streakcity/internal/storage"
)

type ForgeTier string

const (
	ForgeNone    ForgeTier = "none"
	ForgeStone   ForgeTier = "stone"
	ForgeIron    ForgeTier = "iron"
	ForgeGold    ForgeTier = "gold"
	ForgeDiamond ForgeTier = "diamond"
)

// ForgeHoldDuration is how long the forge must be held before it commits.
const ForgeHoldDuration = 1500 * time.Millisecond

type xpRange struct{ Min, Max int }

var forgeXP = map[ForgeTier]xpRange{
	ForgeStone:   {5, 15},
	ForgeIron:    {15, 30},
	ForgeGold:    {30, 50},
	ForgeDiamond: {50, 100},
}

const (
	ironTokenChance   = 0.20
	goldBadgeChance   = 0.15
	diamondRareChance = 0.30
)

const (
	MessageGoldBadge   = "A golden badge gleams on the anvil!"
	MessageDiamondRare = "Rare find! A freeze token was forged from diamond."
)

// ForgeTierFor grades yesterday's completion percentage. A user with no
// activity at all who never forged gets gold.
func ForgeTierFor(habits []Habit, forgeEverUsed bool) ForgeTier {
	if !forgeEverUsed && !hasActivity(habits) {
		return ForgeGold
	}
	if len(habits) == 0 {
		return ForgeNone
	}
	done := 0
	for _, h := range habits {
		if h.CompletionHistory[YesterdaySlot] {
			done++
		}
	}
	if done == 0 {
		return ForgeNone
	}
	pct := int(math.Round(float64(done) / float64(len(habits)) * 100))
	switch {
	case pct >= 90:
		return ForgeDiamond
	case pct >= 75:
		return ForgeGold
	case pct >= 50:
		return ForgeIron
	default:
		return ForgeStone
	}
}

func hasActivity(habits []Habit) bool {
	for _, h := range habits {
		if h.Streak > 0 || h.BestStreak > 0 || h.LastCompletedDate != nil || h.CompletionHistory.Count() > 0 {
			return true
		}
	}
	return false
}

type ForgeReward struct {
	Tier       ForgeTier
	XP         int
	BonusToken bool
	Message    string
}

// RollForgeReward draws the reward of a tier. Rolls are independent and
// taken in a fixed order so a seeded rng replays exactly.
func RollForgeReward(tier ForgeTier, rng *rand.Rand) ForgeReward {
	r, ok := forgeXP[tier]
	if !ok {
		return ForgeReward{Tier: ForgeNone}
	}
	out := ForgeReward{Tier: tier, XP: r.Min + rng.Intn(r.Max-r.Min+1)}
	if tier == ForgeIron && rng.Float64() < ironTokenChance {
		out.BonusToken = true
	}
	if tier == ForgeGold && !out.BonusToken && rng.Float64() < goldBadgeChance {
		out.Message = MessageGoldBadge
	}
	if tier == ForgeDiamond && rng.Float64() < diamondRareChance {
		out.BonusToken = true
		out.Message = MessageDiamondRare
	}
	return out
}

type ForgeStatus struct {
	Tier      ForgeTier
	Available bool
	UsedToday bool
	LastUsed  string
}

type ForgeResult struct {
	Applied bool
	Reason  error
	Reward  ForgeReward
	XP      XPResult
	Tokens  int
}

func (tx *txn) forgeStatus() (ForgeStatus, error) {
	last, err := tx.dateValue(storage.KeyLastForgeDate)
	if err != nil {
		return ForgeStatus{}, err
	}
	habits, err := tx.habits()
	if err != nil {
		return ForgeStatus{}, err
	}
	tier := ForgeTierFor(habits, last != "")
	return ForgeStatus{
		Tier:      tier,
		Available: last != tx.today && tier != ForgeNone,
		UsedToday: last == tx.today,
		LastUsed:  last,
	}, nil
}

func (tx *txn) claimForge() (ForgeResult, error) {
	st, err := tx.forgeStatus()
	if err != nil {
		return ForgeResult{}, err
	}
	if st.UsedToday {
		return ForgeResult{Reason: ErrForgeUnavailable}, nil
	}
	if st.Tier == ForgeNone {
		return ForgeResult{Reason: ErrForgeEmpty}, nil
	}

	reward := RollForgeReward(st.Tier, tx.s.rng)
	if err := tx.set(storage.KeyLastForgeDate, tx.today); err != nil {
		return ForgeResult{}, err
	}
	xp, err := tx.addXP(reward.XP, SourceForge)
	if err != nil {
		return ForgeResult{}, err
	}
	out := ForgeResult{Applied: true, Reward: reward, XP: xp}
	if reward.BonusToken {
		out.Tokens, err = tx.addTokens(1)
	} else {
		out.Tokens, err = tx.intValue(storage.KeyFreezeTokens)
	}
	if err != nil {
		return ForgeResult{}, err
	}
	return out, nil
}

func (s *Service) ForgeStatus(ctx context.Context) (ForgeStatus, error) {
	var out ForgeStatus
	err := s.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.forgeStatus()
		return err
	})
	return out, err
}

// ForgeAttempt is an in-progress hold on the forge. It mutates nothing until
// Commit succeeds.
type ForgeAttempt struct {
	svc     *Service
	started time.Time
	tier    ForgeTier

	mu        sync.Mutex
	finished  bool
	cancelled bool
}

// BeginForge starts a hold. A forge that is not available today yields
// ErrForgeUnavailable or ErrForgeEmpty.
func (s *Service) BeginForge(ctx context.Context) (*ForgeAttempt, error) {
	st, err := s.ForgeStatus(ctx)
	if err != nil {
		return nil, err
	}
	if st.UsedToday {
		return nil, ErrForgeUnavailable
	}
	if st.Tier == ForgeNone {
		return nil, ErrForgeEmpty
	}
	return &ForgeAttempt{svc: s, started: s.clock.Now(), tier: st.Tier}, nil
}

func (a *ForgeAttempt) Tier() ForgeTier { return a.tier }

// Progress reports the hold completion in [0, 1].
func (a *ForgeAttempt) Progress() float64 {
	held := a.svc.clock.Now().Sub(a.started)
	if held <= 0 {
		return 0
	}
	return math.Min(float64(held)/float64(ForgeHoldDuration), 1)
}

// Cancel abandons the hold. It leaves no trace.
func (a *ForgeAttempt) Cancel() {
	a.mu.Lock()
	if !a.finished {
		a.cancelled = true
	}
	a.mu.Unlock()
}

// Commit claims the forge if the hold lasted at least ForgeHoldDuration.
// A short hold returns a HoldError and the attempt stays usable.
func (a *ForgeAttempt) Commit(ctx context.Context) (ForgeResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelled {
		return ForgeResult{}, ErrForgeCancelled
	}
	if a.finished {
		return ForgeResult{Reason: ErrForgeUnavailable}, nil
	}
	if held := a.svc.clock.Now().Sub(a.started); held < ForgeHoldDuration {
		return ForgeResult{}, HoldError{Held: held, Required: ForgeHoldDuration}
	}

	var out ForgeResult
	err := a.svc.update(ctx, func(tx *txn) error {
		var err error
		out, err = tx.claimForge()
		return err
	})
	if err != nil {
		return ForgeResult{}, err
	}
	a.finished = true
	return out, nil
}
