package root

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"streakcity/internal/engine"
	"streakcity/internal/ui"
)

func newHabitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "habits",
		Aliases: []string{"ls", "list"},
		Short:   "List habits with streaks and the last seven days",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			habits, err := s.svc.Habits(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconFlame, "Habits"))
			if len(habits) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No habits yet. Add one with `sc add <name>`."))
				return nil
			}
			for _, h := range habits {
				printHabit(out, h)
			}
			return nil
		}),
	}
}

func printHabit(w io.Writer, h engine.Habit) {
	mark := ui.Muted.Render("[ ]")
	if h.CompletedToday {
		mark = ui.Good.Render("[x]")
	}
	var tags []string
	if h.Pinned {
		tags = append(tags, ui.IconPin)
	}
	if h.FreezeProtected {
		tags = append(tags, ui.IconFreeze)
	}
	fmt.Fprintf(w, "%s %s %s %s %s %s %s\n",
		mark, ui.Muted.Render(shortID(h.ID)), h.Emoji, h.Name,
		ui.HistoryDots(h.CompletionHistory[:]), ui.Streak(h.Streak), strings.Join(tags, " "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newAddCmd() *cobra.Command {
	var emoji string
	var difficulty string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args:  exactlyOne("name"),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
			h, err := s.svc.AddHabit(ctx, engine.AddHabitInput{
				Name:       args[0],
				Emoji:      emoji,
				Difficulty: engine.ParseDifficulty(difficulty),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s %s\n", ui.IconPlus, h.Emoji, ui.Good.Render(h.Name), ui.Muted.Render("("+shortID(h.ID)+", "+string(h.SelectedDifficulty)+")"))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&emoji, "emoji", "e", "", "Emoji shown next to the habit")
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "easy", "Difficulty (easy|medium|hard)")
	return cmd
}

func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <habit>",
		Aliases: []string{"do"},
		Short:   "Complete a habit for today",
		Args:    exactlyOne("habit"),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
			h, err := s.svc.FindHabit(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := s.svc.CompleteHabit(ctx, h.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Applied {
				rejected(out, res.Reason)
				return nil
			}
			fmt.Fprintf(out, "%s %s %s %s\n", ui.IconDone, h.Emoji, ui.Good.Render(h.Name), ui.Streak(res.Streak))
			for _, a := range res.Awards {
				fmt.Fprintf(out, "  %s %s\n", ui.Muted.Render(string(a.Source)), ui.SignedXP(a.Amount))
			}
			if res.TimeBonus.Multiplier > 1 {
				fmt.Fprintln(out, "  "+ui.Muted.Render(res.TimeBonus.Label))
			}
			printXP(out, res.XPAwarded(), res.XP)
			for _, m := range res.HabitMilestones {
				fmt.Fprintf(out, "%s %s %s\n", ui.IconTrophy, ui.Gold.Render(m.Title), ui.SignedXP(m.XP))
			}
			if res.Mission.JustCompleted {
				fmt.Fprintf(out, "%s Mission complete: %s %s\n", ui.IconTarget, res.Mission.Mission.Title, ui.SignedXP(res.Mission.Mission.XPReward))
			}
			if res.Celebration != nil {
				fmt.Fprintf(out, "%s %d-day milestone %q is ready: %s\n", ui.IconSparkle, res.Celebration.Day, res.Celebration.Title, ui.Key.Render("sc milestones --claim"))
			}
			return nil
		}),
	}
}

func newArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <habit>",
		Short: "Remove a habit",
		Args:  exactlyOne("habit"),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
			h, err := s.svc.FindHabit(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := s.svc.ArchiveHabit(ctx, h.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %s %s\n", h.Emoji, h.Name)
			return nil
		}),
	}
}

func newPinCmd() *cobra.Command {
	var unpin bool
	cmd := &cobra.Command{
		Use:   "pin <habit>",
		Short: "Pin a habit to the top",
		Args:  exactlyOne("habit"),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
			h, err := s.svc.FindHabit(ctx, args[0])
			if err != nil {
				return err
			}
			h, err = s.svc.SetPinned(ctx, h.ID, !unpin)
			if err != nil {
				return err
			}
			state := "Pinned"
			if !h.Pinned {
				state = "Unpinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", state, h.Emoji, h.Name)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&unpin, "off", false, "Unpin instead")
	return cmd
}
