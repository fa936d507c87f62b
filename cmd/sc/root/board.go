package root

import (
	"context"

	"github.com/spf13/cobra"

	"streakcity/internal/tui"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			return tui.RunBoard(ctx, s.svc, cmd.OutOrStdout())
		}),
	}
}
