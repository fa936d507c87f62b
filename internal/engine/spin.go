package engine

import (
	"context"
	"math/rand"

	"streakcity/internal/storage"
)

type SpinSegment struct {
	Label  string
	XP     int
	Tokens int
	Weight int
}

// SpinWheel weights sum to 100.
var SpinWheel = []SpinSegment{
	{Label: "+10 XP", XP: 10, Weight: 40},
	{Label: "+20 XP", XP: 20, Weight: 30},
	{Label: "+50 XP", XP: 50, Weight: 15},
	{Label: "Freeze token", Tokens: 1, Weight: 15},
}

// RollSpin picks a wheel segment.
func RollSpin(rng *rand.Rand) SpinSegment {
	total := 0
	for _, seg := range SpinWheel {
		total += seg.Weight
	}
	n := rng.Intn(total)
	for _, seg := range SpinWheel {
		if n < seg.Weight {
			return seg
		}
		n -= seg.Weight
	}
	return SpinWheel[len(SpinWheel)-1]
}

type SpinResult struct {
	Applied bool
	Reason  error
	Segment SpinSegment
	XP      XPResult
	Tokens  int
}

// Spin turns the daily wheel once per day.
func (s *Service) Spin(ctx context.Context) (SpinResult, error) {
	var out SpinResult
	err := s.update(ctx, func(tx *txn) error {
		last, err := tx.dateValue(storage.KeyLastSpinDate)
		if err != nil {
			return err
		}
		if last == tx.today {
			out.Reason = ErrSpinUnavailable
			return nil
		}
		if err := tx.set(storage.KeyLastSpinDate, tx.today); err != nil {
			return err
		}
		seg := RollSpin(tx.s.rng)
		out.Segment = seg
		if seg.XP > 0 {
			if out.XP, err = tx.addXP(seg.XP, SourceOther); err != nil {
				return err
			}
		}
		if seg.Tokens > 0 {
			out.Tokens, err = tx.addTokens(seg.Tokens)
		} else {
			out.Tokens, err = tx.intValue(storage.KeyFreezeTokens)
		}
		if err != nil {
			return err
		}
		out.Applied = true
		return nil
	})
	return out, err
}
