// Package report renders the daily summary as markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"streakcity/internal/city"
	"streakcity/internal/engine"
	"streakcity/internal/ui"
)

type Data struct {
	Overview engine.Overview
	Mission  engine.Mission
	Forge    engine.ForgeStatus
	City     city.City
}

// Build returns the markdown source of the report.
func Build(d Data) string {
	ov := d.Overview
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily report %s\n\n", ov.Today)

	lvl := ov.Progress.Level
	b.WriteString("## Progress\n\n")
	fmt.Fprintf(&b, "- **Level** %d (%d%%)\n", lvl.Level, lvl.Percentage)
	fmt.Fprintf(&b, "- **XP** %s, %s today\n", ui.Number(ov.Progress.XP), ui.Number(ov.Progress.Today.Total))
	if lvl.Max >= 0 {
		fmt.Fprintf(&b, "- **Next level** in %s\n", ui.XP(lvl.XPToNext))
	}
	fmt.Fprintf(&b, "- **Freeze tokens** %d\n\n", ov.Progress.FreezeTokens)

	b.WriteString("## Score\n\n")
	fmt.Fprintf(&b, "**%d** / 100, grade **%s**\n\n", ov.Score.Total, ov.Score.Grade)
	br := ov.Score.Breakdown
	b.WriteString("| Part | Points |\n|---|---|\n")
	fmt.Fprintf(&b, "| Completion rate | %d |\n", br.CompletionRate)
	fmt.Fprintf(&b, "| Streak strength | %d |\n", br.StreakStrength)
	fmt.Fprintf(&b, "| Weekly consistency | %d |\n", br.WeeklyConsistency)
	fmt.Fprintf(&b, "| Trend | %d |\n\n", br.ImprovementTrend)

	b.WriteString("## Habits\n\n")
	if len(ov.Habits) == 0 {
		b.WriteString("_No habits yet._\n\n")
	} else {
		for _, h := range ov.Habits {
			mark := "[ ]"
			if h.CompletedToday {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "- %s %s %s, streak %d", mark, h.Emoji, h.Name, h.Streak)
			if h.FreezeProtected {
				b.WriteString(" (frozen)")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Mission\n\n")
	m := d.Mission
	if m.Title == "" {
		b.WriteString("_No mission today._\n\n")
	} else {
		state := fmt.Sprintf("%d/%d", m.Progress, m.Target)
		if m.Completed {
			state = "done"
		}
		fmt.Fprintf(&b, "%s (%s, %d XP): %s\n\n", m.Title, m.Difficulty, m.XPReward, state)
	}

	b.WriteString("## Forge\n\n")
	switch {
	case d.Forge.UsedToday:
		b.WriteString("Used today.\n\n")
	case d.Forge.Available:
		fmt.Fprintf(&b, "Ready, tier **%s**.\n\n", d.Forge.Tier)
	default:
		b.WriteString("Not available. Complete a habit yesterday to light it.\n\n")
	}

	c := d.City
	b.WriteString("## City\n\n")
	fmt.Fprintf(&b, "- **Weather** %s\n", c.Weather)
	fmt.Fprintf(&b, "- **Population** %s\n", ui.Number(c.DisplayPopulation))
	fmt.Fprintf(&b, "- **Buildings** %d\n", len(c.Buildings))
	fmt.Fprintf(&b, "- **Event** %s: %s\n", c.Event.Title, c.Event.Description)
	return b.String()
}

// Render formats markdown for the terminal. style is a glamour style name
// ("dark", "light", "notty") or empty for auto-detection.
func Render(md string, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("report renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return out, nil
}
