package engine

import "math"

// LevelThresholds holds the total XP needed to reach each level, starting at
// level 1. The last level is open-ended.
var LevelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 12000}

// MaxLevel is the highest reachable level.
var MaxLevel = len(LevelThresholds)

type LevelInfo struct {
	Level int
	Min   int
	// Max is the last XP value of this level, or -1 for the open-ended top level.
	Max        int
	Percentage int
	XPToNext   int
}

// GetLevel returns the level bracket for a total XP value.
func GetLevel(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}
	idx := 0
	for i, threshold := range LevelThresholds {
		if xp >= threshold {
			idx = i
		}
	}
	info := LevelInfo{Level: idx + 1, Min: LevelThresholds[idx], Max: -1}
	if idx == len(LevelThresholds)-1 {
		info.Percentage = 100
		return info
	}
	next := LevelThresholds[idx+1]
	info.Max = next - 1
	info.XPToNext = next - xp
	info.Percentage = (xp - info.Min) * 100 / (next - info.Min)
	return info
}

// ComboMultiplier scales rewards by streak length.
func ComboMultiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 2.0
	case streak >= 14:
		return 1.5
	case streak >= 7:
		return 1.2
	default:
		return 1.0
	}
}

const (
	TimeLabelEarlyBird = "Early Bird"
	TimeLabelMorning   = "Morning"
	TimeLabelLateNight = "Late Night"
)

type TimeBonus struct {
	Multiplier float64
	Label      string
}

// TimeMultiplier returns the time-of-day bonus for a local hour (0-23).
func TimeMultiplier(hour int) TimeBonus {
	switch {
	case hour >= 6 && hour <= 8:
		return TimeBonus{Multiplier: 1.5, Label: TimeLabelEarlyBird}
	case hour >= 9 && hour <= 11:
		return TimeBonus{Multiplier: 1.2, Label: TimeLabelMorning}
	case hour >= 21 && hour <= 23:
		return TimeBonus{Multiplier: 0.9, Label: TimeLabelLateNight}
	default:
		return TimeBonus{Multiplier: 1.0}
	}
}

// ApplyMultipliers rounds after the combo stage and again after the time stage.
func ApplyMultipliers(base, streak, hour int) int {
	combo := math.Round(float64(base) * ComboMultiplier(streak))
	return int(math.Round(combo * TimeMultiplier(hour).Multiplier))
}

// XPToday is the per-day XP ledger. A record dated before today is stale.
type XPToday struct {
	Date          string `json:"date"`
	Task          int    `json:"task"`
	EarlyBonus    int    `json:"earlyBonus"`
	AllTasksBonus int    `json:"allTasksBonus"`
	Forge         int    `json:"forge"`
	Mission       int    `json:"mission"`
	Milestone     int    `json:"milestone"`
	Combo         int    `json:"combo"`
	Other         int    `json:"other"`
	Total         int    `json:"total"`
}

func (l *XPToday) add(src Source, amount int) {
	switch src {
	case SourceTask:
		l.Task += amount
	case SourceEarlyBonus:
		l.EarlyBonus += amount
	case SourceAllTasks:
		l.AllTasksBonus += amount
	case SourceForge:
		l.Forge += amount
	case SourceMission:
		l.Mission += amount
	case SourceMilestone, SourceStreak:
		l.Milestone += amount
	case SourceCombo:
		l.Combo += amount
	default:
		l.Other += amount
	}
	l.Total = l.sum()
}

func (l XPToday) sum() int {
	return l.Task + l.EarlyBonus + l.AllTasksBonus + l.Forge + l.Mission + l.Milestone + l.Combo + l.Other
}

type XPResult struct {
	Total     int
	Level     int
	LeveledUp bool
}
