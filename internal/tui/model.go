package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"streakcity/internal/engine"
	"streakcity/internal/ui"
)

// forgeTick is the redraw interval of the forge hold bar.
const forgeTick = 100 * time.Millisecond

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	ov      *engine.Overview
	forge   engine.ForgeStatus
	mission engine.Mission

	selected int
	forging  *engine.ForgeAttempt

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	ov      engine.Overview
	forge   engine.ForgeStatus
	mission engine.Mission
	err     error
}

type completedMsg struct {
	res engine.CompleteResult
	err error
}

type forgeBeganMsg struct {
	attempt *engine.ForgeAttempt
	err     error
}

type forgeTickMsg struct{}

type forgedMsg struct {
	res engine.ForgeResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ov, err := m.svc.Overview(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		fs, err := m.svc.ForgeStatus(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		mr, err := m.svc.DailyMission(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{ov: ov, forge: fs, mission: mr.Mission}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteHabit(m.ctx, id)
		return completedMsg{res: res, err: err}
	}
}

func (m boardModel) beginForgeCmd() tea.Cmd {
	return func() tea.Msg {
		a, err := m.svc.BeginForge(m.ctx)
		return forgeBeganMsg{attempt: a, err: err}
	}
}

func (m boardModel) commitForgeCmd(a *engine.ForgeAttempt) tea.Cmd {
	return func() tea.Msg {
		res, err := a.Commit(m.ctx)
		return forgedMsg{res: res, err: err}
	}
}

func tickForge() tea.Cmd {
	return tea.Tick(forgeTick, func(time.Time) tea.Msg { return forgeTickMsg{} })
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		ov := msg.ov
		m.ov = &ov
		m.forge = msg.forge
		m.mission = msg.mission
		m.clampSelection()
		m.lastLog = fmt.Sprintf("Refreshed at %s.", ov.Now.Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = completeLog(msg.res)
		return m, m.loadCmd()
	case forgeBeganMsg:
		if msg.err != nil {
			m.lastLog = "Forge: " + msg.err.Error()
			return m, nil
		}
		m.forging = msg.attempt
		m.lastLog = fmt.Sprintf("Heating the %s forge… keep holding f.", msg.attempt.Tier())
		return m, tickForge()
	case forgeTickMsg:
		if m.forging == nil {
			return m, nil
		}
		if m.forging.Progress() >= 1 {
			return m, m.commitForgeCmd(m.forging)
		}
		return m, tickForge()
	case forgedMsg:
		m.forging = nil
		if msg.err != nil {
			m.lastLog = "Forge failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = forgeLog(msg.res)
		return m, m.loadCmd()
	case tea.KeyMsg:
		if m.forging != nil {
			// Repeated f presses keep the hold alive; anything else drops it.
			if msg.String() == "f" {
				return m, nil
			}
			m.forging.Cancel()
			m.forging = nil
			m.lastLog = "Forge cancelled."
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.habits())-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			h, ok := m.current()
			if !ok {
				m.lastLog = "No habit selected."
				return m, nil
			}
			if h.CompletedToday {
				m.lastLog = "Already done today."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Completing %s…", h.Name)
			return m, m.completeCmd(h.ID)
		case "f":
			return m, m.beginForgeCmd()
		}
	}
	return m, nil
}

func (m boardModel) habits() []engine.Habit {
	if m.ov == nil {
		return nil
	}
	return m.ov.Habits
}

func (m boardModel) current() (engine.Habit, bool) {
	hs := m.habits()
	if m.selected < 0 || m.selected >= len(hs) {
		return engine.Habit{}, false
	}
	return hs[m.selected], true
}

func (m *boardModel) clampSelection() {
	n := len(m.habits())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func completeLog(res engine.CompleteResult) string {
	if !res.Applied {
		if res.Reason != nil {
			return "Not completed: " + res.Reason.Error()
		}
		return "Not completed."
	}
	s := fmt.Sprintf("Streak %d: %s", res.Streak, ui.SignedXP(res.XPAwarded()))
	if res.LevelUp {
		s += fmt.Sprintf(" %s level %d", ui.BadgeLevelUp, res.XP.Level)
	}
	if res.Mission.JustCompleted {
		s += " | mission done"
	}
	if res.Celebration != nil {
		s += fmt.Sprintf(" | %d-day milestone ready", res.Celebration.Day)
	}
	return s
}

func forgeLog(res engine.ForgeResult) string {
	if !res.Applied {
		if res.Reason != nil {
			return "Forge: " + res.Reason.Error()
		}
		return "Forge: nothing happened."
	}
	s := fmt.Sprintf("Forged %s: %s", res.Reward.Tier, ui.SignedXP(res.Reward.XP))
	if res.Reward.BonusToken {
		s += " +1 freeze token"
	}
	if res.Reward.Message != "" {
		s += " | " + res.Reward.Message
	}
	return s
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 30
	if m.width > 0 {
		leftW = max(min(leftW, m.width/2), 20)
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.ov == nil {
		return ui.Heading(ui.IconCity, "StreakCity") + " loading…"
	}
	p := m.ov.Progress
	lvl := p.Level
	bar := ui.ProgressBar(lvl.Percentage, 100, 30)
	return fmt.Sprintf("%s | Level %d | %s %s | %s %d",
		ui.Heading(ui.IconCity, "StreakCity"), lvl.Level, ui.XP(p.XP), bar, ui.IconFreeze, p.FreezeTokens)
}

func (m boardModel) renderSidebar() string {
	if m.ov == nil {
		return "Today\n\nLoading…"
	}
	lines := []string{ui.H2.Render("Today")}
	lines = append(lines, ui.LabelValue("XP", ui.Number(m.ov.Progress.Today.Total)))
	lines = append(lines, ui.LabelValue("Score", fmt.Sprintf("%d %s", m.ov.Score.Total, ui.GradeText(m.ov.Score.Grade))))
	lines = append(lines, "")

	lines = append(lines, ui.H2.Render(ui.IconTarget+" Mission"))
	if m.mission.Title == "" {
		lines = append(lines, ui.Muted.Render("none"))
	} else {
		state := fmt.Sprintf("%d/%d", m.mission.Progress, m.mission.Target)
		if m.mission.Completed {
			state = ui.Good.Render("done")
		}
		lines = append(lines, m.mission.Title, state)
	}
	lines = append(lines, "")

	lines = append(lines, ui.H2.Render(ui.IconAnvil+" Forge"))
	switch {
	case m.forging != nil:
		lines = append(lines, ui.ProgressBar(int(m.forging.Progress()*100), 100, 20))
	case m.forge.UsedToday:
		lines = append(lines, ui.Muted.Render("used today"))
	case m.forge.Available:
		lines = append(lines, "ready: "+ui.TierText(string(m.forge.Tier)))
	default:
		lines = append(lines, ui.Muted.Render("cold"))
	}
	lines = append(lines, "")

	lines = append(lines, ui.H2.Render("Keys"))
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- f: hold to forge")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	out := []string{ui.H2.Render("Habits")}
	hs := m.habits()
	if len(hs) == 0 {
		out = append(out, ui.Muted.Render("(none yet, try `sc add`)"))
		return strings.Join(out, "\n")
	}
	for i, h := range hs {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := "[ ]"
		if h.CompletedToday {
			mark = "[x]"
		}
		name := h.Name
		if h.Pinned {
			name = ui.IconPin + " " + name
		}
		if h.FreezeProtected {
			name += " " + ui.IconFreeze
		}
		row := fmt.Sprintf("%s%s %s %s %s %s", cursor, mark, h.Emoji, padRight(name, 24), ui.HistoryDots(h.CompletionHistory[:]), ui.Streak(h.Streak))
		if i == m.selected {
			row = ui.SelectedRow.Render(row)
		}
		out = append(out, row)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

// padRight pads s to width display cells. Styled strings are measured without
// their escape codes.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
