package root

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"streakcity/internal/engine"
	"streakcity/internal/ui"
)

func newFreezeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "freeze <habit>",
		Short: "Spend a freeze token to protect a streak through one missed day",
		Args:  exactlyOne("habit"),
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, args []string, s *session) error {
			h, err := s.svc.FindHabit(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := s.svc.ActivateFreeze(ctx, h.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Applied {
				rejected(out, res.Reason)
				return nil
			}
			fmt.Fprintf(out, "%s %s %s is protected %s\n", ui.IconFreeze, h.Emoji, ui.Ice.Render(h.Name), ui.Muted.Render(fmt.Sprintf("(%d tokens left)", res.TokensLeft)))
			return nil
		}),
	}
}

func newForgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forge",
		Short: "Hold the forge to turn yesterday's completions into XP",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			out := cmd.OutOrStdout()
			attempt, err := s.svc.BeginForge(ctx)
			switch {
			case errors.Is(err, engine.ErrForgeUnavailable), errors.Is(err, engine.ErrForgeEmpty):
				rejected(out, err)
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(out, "%s Heating the %s forge", ui.IconAnvil, ui.TierText(string(attempt.Tier())))
			hold := time.NewTicker(engine.ForgeHoldDuration / 5)
			defer hold.Stop()
			for attempt.Progress() < 1 {
				select {
				case <-ctx.Done():
					attempt.Cancel()
					return ctx.Err()
				case <-hold.C:
					fmt.Fprint(out, ".")
				}
			}
			fmt.Fprintln(out)

			res, err := attempt.Commit(ctx)
			if err != nil {
				return err
			}
			if !res.Applied {
				rejected(out, res.Reason)
				return nil
			}
			fmt.Fprintf(out, "%s Forged %s\n", ui.IconAnvil, ui.TierText(string(res.Reward.Tier)))
			printXP(out, res.Reward.XP, res.XP)
			if res.Reward.BonusToken {
				fmt.Fprintf(out, "%s +1 freeze token %s\n", ui.IconFreeze, ui.Muted.Render(fmt.Sprintf("(%d total)", res.Tokens)))
			}
			if res.Reward.Message != "" {
				fmt.Fprintln(out, ui.Gold.Render(res.Reward.Message))
			}
			return nil
		}),
	}
}

func newSpinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spin",
		Short: "Spin the daily wheel",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			res, err := s.svc.Spin(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Applied {
				rejected(out, res.Reason)
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", ui.IconWheel, ui.Gold.Render(res.Segment.Label))
			if res.Segment.XP > 0 {
				printXP(out, res.Segment.XP, res.XP)
			}
			if res.Segment.Tokens > 0 {
				fmt.Fprintln(out, ui.LabelValue("Freeze tokens", res.Tokens))
			}
			return nil
		}),
	}
}

func newMissionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mission",
		Short: "Show today's mission",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			res, err := s.svc.DailyMission(ctx)
			if err != nil {
				return err
			}
			m := res.Mission
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTarget, m.Title))
			fmt.Fprintln(out, ui.LabelValue("Difficulty", m.Difficulty))
			fmt.Fprintln(out, ui.LabelValue("Reward", ui.XP(m.XPReward)))
			progress := fmt.Sprintf("%s %d/%d", ui.ProgressBar(m.Progress, m.Target, 20), m.Progress, m.Target)
			if m.Completed {
				progress = ui.Good.Render("completed")
			}
			fmt.Fprintln(out, ui.LabelValue("Progress", progress))
			if res.JustCompleted {
				printXP(out, m.XPReward, res.XP)
			}
			return nil
		}),
	}
}

func newMilestonesCmd() *cobra.Command {
	var claim bool
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Show streak celebrations; --claim collects the pending one",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			out := cmd.OutOrStdout()
			pending, err := s.svc.PendingMilestone(ctx)
			if err != nil {
				return err
			}
			if claim {
				if pending == nil {
					fmt.Fprintln(out, ui.Muted.Render("Nothing to claim."))
					return nil
				}
				res, err := s.svc.ClaimMilestone(ctx, pending.Day)
				if err != nil {
					return err
				}
				if !res.Applied {
					rejected(out, res.Reason)
					return nil
				}
				fmt.Fprintf(out, "%s %s\n", ui.IconTrophy, ui.Gold.Render(res.Milestone.Title))
				printXP(out, res.Milestone.XP, res.XP)
				return nil
			}

			claimed, err := s.svc.ClaimedMilestones(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Milestones"))
			for _, m := range engine.CelebrationMilestones {
				switch {
				case slices.Contains(claimed, m.Day):
					fmt.Fprintf(out, "- %s %s\n", ui.Good.Render(fmt.Sprintf("%3dd", m.Day)), m.Title)
				case pending != nil && pending.Day == m.Day:
					fmt.Fprintf(out, "- %s %s %s\n", ui.Gold.Render(fmt.Sprintf("%3dd", m.Day)), m.Title, ui.Key.Render("ready to claim"))
				default:
					fmt.Fprintf(out, "- %s %s\n", ui.Muted.Render(fmt.Sprintf("%3dd", m.Day)), ui.Muted.Render(m.Title))
				}
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&claim, "claim", false, "Claim the pending milestone")
	return cmd
}
