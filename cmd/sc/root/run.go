package root

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"streakcity/internal/engine"
	"streakcity/internal/ui"
)

// withSession adapts fn into a RunE that opens and closes the session.
func withSession(fn func(ctx context.Context, cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(ctx, cmd, args, s)
	}
}

func exactlyOne(what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New(what + " is required")
		}
		return nil
	}
}

// rejected prints a refusal from the engine. Refusals are not command errors.
func rejected(w io.Writer, reason error) {
	fmt.Fprintln(w, ui.Warn.Render(ui.IconWarn+" "+reason.Error()))
}

func printXP(w io.Writer, awarded int, xp engine.XPResult) {
	fmt.Fprintf(w, "%s %s %s\n", ui.Gold.Render(ui.SignedXP(awarded)), ui.Muted.Render("total"), ui.XP(xp.Total))
	if xp.LeveledUp {
		fmt.Fprintf(w, "%s %s\n", ui.BadgeLevelUp, ui.LabelValue("Level", xp.Level))
	}
}
