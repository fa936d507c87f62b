package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"streakcity/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, tokens and badges",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			ov, err := s.svc.Overview(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := ov.Progress
			lvl := p.Level

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			fmt.Fprintln(out, ui.LabelValue("User", s.svc.User()))
			fmt.Fprintln(out, ui.LabelValue("Today", ov.Today))
			fmt.Fprintln(out, ui.LabelValue("Level", lvl.Level))
			if lvl.Max < 0 {
				fmt.Fprintln(out, ui.LabelValue("XP", ui.XP(p.XP)+" "+ui.Muted.Render("(max level)")))
			} else {
				fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%s %s %s", ui.XP(p.XP), ui.ProgressBar(lvl.Percentage, 100, 20), ui.Muted.Render(ui.Number(lvl.XPToNext)+" to go"))))
			}
			fmt.Fprintln(out, ui.LabelValue("XP today", ui.XP(p.Today.Total)))
			fmt.Fprintln(out, ui.LabelValue("Freeze tokens", fmt.Sprintf("%s %d", ui.IconFreeze, p.FreezeTokens)))
			fmt.Fprintln(out, ui.LabelValue("Completions", ui.Number(p.TotalCompletions)))
			fmt.Fprintln(out, "")

			badges, err := s.svc.Badges(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Badges"))
			for _, b := range badges {
				if b.Earned {
					fmt.Fprintf(out, "- %s %s %s\n", b.Icon, ui.Good.Render(b.Name), ui.Muted.Render(b.Description))
				} else {
					fmt.Fprintf(out, "- %s %s\n", ui.Muted.Render("🔒 "+b.Name), ui.Muted.Render(b.Description))
				}
			}
			return nil
		}),
	}
}
