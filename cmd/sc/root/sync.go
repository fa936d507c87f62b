package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"streakcity/internal/cloudsync"
	"streakcity/internal/ui"
)

func newSyncCmd() *cobra.Command {
	var keep string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile with the remote copy and push local state",
		RunE: withSession(func(ctx context.Context, cmd *cobra.Command, _ []string, s *session) error {
			if !s.cfg.Sync.Enabled {
				return errors.New("sync is disabled: set sync.enabled and sync.dsn in the config")
			}
			if s.syncer == nil {
				return errors.New("sync remote unavailable, see log for details")
			}
			out := cmd.OutOrStdout()
			if keep != "" {
				choice, err := cloudsync.ParseChoice(keep)
				if err != nil {
					return err
				}
				if err := s.syncer.RememberChoice(ctx, choice); err != nil {
					return err
				}
				outcome, err := s.syncer.Start(ctx, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s\n", ui.IconCloud, ui.Good.Render(string(outcome)))
				return nil
			}
			if err := s.syncer.Push(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", ui.IconCloud, ui.Good.Render("pushed"))
			return nil
		}),
	}
	cmd.Flags().StringVar(&keep, "keep", "", "Resolve a conflict by keeping local or remote data")
	return cmd
}
