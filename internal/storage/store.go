package storage

import (
	"context"
	"time"
)

// Keys of the per-user documents. Values are JSON.
const (
	KeyHabits            = "habits"
	KeyXP                = "xp"
	KeyFreezeTokens      = "freeze_tokens"
	KeyTotalCompletions  = "total_completions"
	KeyLastResetDate     = "last_reset_date"
	KeyLastForgeDate     = "last_forge_date"
	KeyFirstUseDate      = "first_use_date"
	KeyXPToday           = "xp_today"
	KeyDailyMission      = "daily_mission"
	KeyMilestonesClaimed = "milestones_claimed"
	KeyHabitMilestones   = "habit_milestones"
	KeyAllTasksBonusDate = "all_tasks_bonus_date"
	KeyLastSpinDate      = "last_spin_date"
	KeySettings          = "settings"
	KeySyncChoice        = "sync_choice"
)

// Store is a user-scoped key/value mapping of JSON documents.
// Get reports ok=false for a missing key; that is not an error.
type Store interface {
	Get(ctx context.Context, user, key string) (value []byte, ok bool, err error)
	// Put writes every value atomically.
	Put(ctx context.Context, user string, values map[string][]byte) error
	Delete(ctx context.Context, user string, keys ...string) error
	Snapshot(ctx context.Context, user string) (map[string][]byte, error)
	// Replace drops every key of user not listed in keep, then writes values.
	Replace(ctx context.Context, user string, values map[string][]byte, keep ...string) error
}

// Award is one row of the append-only XP log.
type Award struct {
	ID        int64
	User      string
	Day       string
	Source    string
	Amount    int
	Total     int
	CreatedAt time.Time
}

type AwardLog interface {
	AppendAwards(ctx context.Context, awards []Award) error
	// ListAwards returns the newest awards first.
	ListAwards(ctx context.Context, user string, limit int) ([]Award, error)
}
