package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"streakcity/internal/city"
	"streakcity/internal/report"
	"streakcity/internal/ui"
)

func newCityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "city",
		Short: "Show the city your habits built",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			ov, err := s.svc.Overview(ctx)
			if err != nil {
				return err
			}
			c := city.FromOverview(ov)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconCity, "StreakCity"))
			fmt.Fprintln(out, ui.LabelValue("Population", ui.Number(c.DisplayPopulation)))
			fmt.Fprintln(out, ui.LabelValue("Weather", c.Weather))
			fmt.Fprintln(out, ui.LabelValue("Today", c.Event.Title+" "+ui.Muted.Render(c.Event.Description)))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Buildings"))
			if len(c.Buildings) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Empty lots. Add a habit to break ground."))
			}
			for _, b := range c.Buildings {
				fmt.Fprintf(out, "- %s %s %s L%d %s\n", b.Emoji, b.Name, ui.Muted.Render(string(b.Type)), b.Level, ui.StateText(string(b.State)))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("Neighborhoods"))
			for _, n := range c.Neighborhoods {
				state := ui.Muted.Render(fmt.Sprintf("locked (%d-day streak)", n.RequiredStreak))
				if n.Unlocked {
					state = ui.Good.Render("unlocked")
				}
				fmt.Fprintf(out, "- %s %s\n", n.Name, state)
			}
			return nil
		}),
	}
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Rate the last seven days",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			sc, err := s.svc.Score(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconChart, "Weekly score"))
			fmt.Fprintln(out, ui.LabelValue("Score", fmt.Sprintf("%d/100 %s", sc.Total, ui.GradeText(sc.Grade))))
			b := sc.Breakdown
			fmt.Fprintln(out, ui.LabelValue("Completion rate", b.CompletionRate))
			fmt.Fprintln(out, ui.LabelValue("Streak strength", b.StreakStrength))
			fmt.Fprintln(out, ui.LabelValue("Weekly consistency", b.WeeklyConsistency))
			fmt.Fprintln(out, ui.LabelValue("Trend", b.ImprovementTrend))
			return nil
		}),
	}
}

func newReportCmd() *cobra.Command {
	var style string
	var width int
	var raw bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the daily report",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			ov, err := s.svc.Overview(ctx)
			if err != nil {
				return err
			}
			mission, err := s.svc.DailyMission(ctx)
			if err != nil {
				return err
			}
			forge, err := s.svc.ForgeStatus(ctx)
			if err != nil {
				return err
			}
			md := report.Build(report.Data{
				Overview: ov,
				Mission:  mission.Mission,
				Forge:    forge,
				City:     city.FromOverview(ov),
			})
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}
			rendered, err := report.Render(md, style, width)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return err
		}),
	}
	cmd.Flags().StringVar(&style, "style", "", "Glamour style (dark|light|notty); auto when empty")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent XP awards",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			awards, err := s.svc.History(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconScroll, "XP history"))
			if len(awards) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No XP earned yet."))
				return nil
			}
			for _, a := range awards {
				fmt.Fprintf(out, "%s %-10s %10s %s\n", ui.Muted.Render(a.Day), a.Source, ui.SignedXP(a.Amount), ui.Muted.Render("→ "+ui.Number(a.Total)))
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries")
	return cmd
}
