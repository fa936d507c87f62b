package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// streakcity theme (CLI + TUI).

const (
	IconCity    = "🏙️"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconFlame   = "🔥"
	IconFreeze  = "🧊"
	IconAnvil   = "⚒️"
	IconTarget  = "🎯"
	IconWheel   = "🎡"
	IconChart   = "📊"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconCloud   = "☁️"
	IconScroll  = "📜"
	IconPin     = "📌"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
	cIce     = lipgloss.Color("117") // light blue
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Ice   = lipgloss.NewStyle().Bold(true).Foreground(cIce)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// TierText colors a forge tier name.
func TierText(tier string) string {
	switch strings.ToLower(tier) {
	case "diamond":
		return Ice.Render(tier)
	case "gold":
		return Gold.Render(tier)
	case "iron":
		return H2.Render(tier)
	case "stone":
		return Warn.Render(tier)
	default:
		return Muted.Render(tier)
	}
}

// StateText colors a building state.
func StateText(state string) string {
	switch state {
	case "landmark":
		return Gold.Render(state)
	case "thriving":
		return Good.Render(state)
	case "active":
		return H2.Render(state)
	case "new":
		return Warn.Render(state)
	default:
		return Muted.Render(state)
	}
}

func GradeText(grade string) string {
	switch {
	case strings.HasPrefix(grade, "A"):
		return Good.Render(grade)
	case strings.HasPrefix(grade, "B"), strings.HasPrefix(grade, "C"):
		return Warn.Render(grade)
	default:
		return Bad.Render(grade)
	}
}

// Streak renders a streak counter, dimmed at zero.
func Streak(n int) string {
	if n == 0 {
		return Muted.Render("0d")
	}
	return Warn.Render(fmt.Sprintf("%s %dd", IconFlame, n))
}

// HistoryDots renders a 7-day window oldest first.
func HistoryDots(days []bool) string {
	var b strings.Builder
	for _, d := range days {
		if d {
			b.WriteString(Good.Render("●"))
		} else {
			b.WriteString(Muted.Render("○"))
		}
	}
	return b.String()
}

func ProgressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	value = max(0, min(value, total))
	filled := min(int(float64(value)/float64(total)*float64(width)), width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
