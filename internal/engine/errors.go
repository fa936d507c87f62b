package engine

import (
	"errors"
	"fmt"
	"time"
)

// Rejection reasons. Operations that refuse a request return these in their
// result's Reason and leave state untouched.
var (
	ErrAlreadyCompleted  = errors.New("habit already completed today")
	ErrForgeUnavailable  = errors.New("forge already used today")
	ErrForgeEmpty        = errors.New("nothing to forge: no completions yesterday")
	ErrForgeCancelled    = errors.New("forge hold cancelled")
	ErrNoFreezeTokens    = errors.New("no freeze tokens left")
	ErrAlreadyProtected  = errors.New("habit is already freeze protected")
	ErrSpinUnavailable   = errors.New("daily spin already used today")
	ErrMilestoneClaimed  = errors.New("milestone already claimed")
	ErrHoldTooShort      = errors.New("hold released too early")
	ErrHabitNotFound     = errors.New("habit not found")
	ErrUnknownMilestone  = errors.New("unknown milestone")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// HoldError reports a forge hold that ended before the required duration.
type HoldError struct {
	Held     time.Duration
	Required time.Duration
}

func (e HoldError) Error() string {
	return fmt.Sprintf("held for %s, need %s", e.Held.Round(time.Millisecond), e.Required)
}

func (e HoldError) Unwrap() error { return ErrHoldTooShort }
