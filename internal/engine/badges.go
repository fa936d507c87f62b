package engine

import "context"

// Badge is an achievement the user can earn.
type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// BadgeChecker calculates which badges the user has earned.
type BadgeChecker struct {
	progress Progress
	habits   []Habit
}

func NewBadgeChecker(p Progress, habits []Habit) *BadgeChecker {
	return &BadgeChecker{progress: p, habits: habits}
}

// Badges returns all badges with their earned status.
func (c *BadgeChecker) Badges() []Badge {
	return []Badge{
		// Completions
		c.completionBadge("first_check", "First Check", "Complete a habit", "✓", 1),
		c.completionBadge("regular", "Regular", "Complete 10 habits", "📋", 10),
		c.completionBadge("committed", "Committed", "Complete 50 habits", "🏅", 50),
		c.completionBadge("centurion", "Centurion", "Complete 100 habits", "🏆", 100),
		c.completionBadge("unstoppable", "Unstoppable", "Complete 500 habits", "🚀", 500),

		// Levels
		c.levelBadge("townsfolk", "Townsfolk", "Reach level 3", "🌿", 3),
		c.levelBadge("mayor", "Mayor", "Reach level 5", "🏛", 5),
		c.levelBadge("metropolis", "Metropolis", "Reach level 10", "🌆", 10),

		// Streaks
		c.streakBadge("week_one", "Week One", "Best streak of 7 days", "🔥", 7),
		c.streakBadge("month_strong", "Month Strong", "Best streak of 30 days", "💪", 30),
		c.streakBadge("hundred_club", "Hundred Club", "Best streak of 100 days", "💯", 100),
	}
}

// CountEarned returns how many badges have been earned.
func (c *BadgeChecker) CountEarned() int {
	count := 0
	for _, b := range c.Badges() {
		if b.Earned {
			count++
		}
	}
	return count
}

func (c *BadgeChecker) completionBadge(id, name, desc, icon string, n int) Badge {
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.progress.TotalCompletions >= n}
}

func (c *BadgeChecker) levelBadge(id, name, desc, icon string, level int) Badge {
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: c.progress.Level.Level >= level}
}

func (c *BadgeChecker) streakBadge(id, name, desc, icon string, days int) Badge {
	best := 0
	for _, h := range c.habits {
		best = max(best, h.BestStreak)
	}
	return Badge{ID: id, Name: name, Description: desc, Icon: icon, Earned: best >= days}
}

func (s *Service) Badges(ctx context.Context) ([]Badge, error) {
	ov, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	return NewBadgeChecker(ov.Progress, ov.Habits).Badges(), nil
}
