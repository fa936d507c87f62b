package engine

import "math"

type ScoreBreakdown struct {
	CompletionRate    int
	StreakStrength    int
	WeeklyConsistency int
	ImprovementTrend  int
}

type Score struct {
	Total     int
	Breakdown ScoreBreakdown
	Grade     string
}

const GradeNeedsWork = "Needs Work"

// CalculateScore rates the trailing week of habit activity on a 0-100 scale.
// Slot i of every history is the day today-(6-i).
func CalculateScore(habits []Habit) Score {
	if len(habits) == 0 {
		return Score{Grade: GradeNeedsWork}
	}

	var activeDays [HistoryLen]bool
	longestBest := 0
	activeSum, activeCount := 0, 0
	for _, h := range habits {
		for i, done := range h.CompletionHistory {
			if done {
				activeDays[i] = true
			}
		}
		if h.BestStreak > longestBest {
			longestBest = h.BestStreak
		}
		if h.Streak > 0 {
			activeSum += h.Streak
			activeCount++
		}
	}
	uniqueDays := 0
	for _, d := range activeDays {
		if d {
			uniqueDays++
		}
	}

	completion := math.Min(float64(uniqueDays)/HistoryLen*40, 40)

	avgActive := 0.0
	if activeCount > 0 {
		avgActive = float64(activeSum) / float64(activeCount)
	}
	strength := float64(streakBonus(longestBest) + recoveryScore(avgActive))

	consistency := math.Min(float64(uniqueDays)/HistoryLen*15, 15)

	trend := float64(improvementTrend(float64(activeCount) / float64(len(habits))))

	total := int(math.Round(completion + strength + consistency + trend))
	if total > 100 {
		total = 100
	}
	return Score{
		Total: total,
		Breakdown: ScoreBreakdown{
			CompletionRate:    int(math.Round(completion)),
			StreakStrength:    int(strength),
			WeeklyConsistency: int(math.Round(consistency)),
			ImprovementTrend:  int(trend),
		},
		Grade: Grade(total),
	}
}

func streakBonus(best int) int {
	switch {
	case best >= 21:
		return 25
	case best >= 14:
		return 20
	case best >= 10:
		return 15
	case best >= 7:
		return 10
	case best >= 4:
		return 7
	case best >= 1:
		return 5
	default:
		return 0
	}
}

func recoveryScore(avg float64) int {
	switch {
	case avg >= 7:
		return 10
	case avg >= 5:
		return 7
	case avg >= 3:
		return 5
	case avg >= 1:
		return 3
	default:
		return 0
	}
}

func improvementTrend(ratio float64) int {
	switch {
	case ratio >= 0.9:
		return 10
	case ratio >= 0.7:
		return 7
	case ratio >= 0.5:
		return 5
	case ratio >= 0.3:
		return 3
	default:
		return 0
	}
}

// Grade maps a total score to a letter grade.
func Grade(total int) string {
	switch {
	case total >= 95:
		return "A+"
	case total >= 90:
		return "A"
	case total >= 85:
		return "B+"
	case total >= 80:
		return "B"
	case total >= 75:
		return "C+"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return GradeNeedsWork
	}
}
