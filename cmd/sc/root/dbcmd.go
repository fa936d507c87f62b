package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"streakcity/internal/storage"
	"streakcity/internal/ui"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, cleanup, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := storage.Migrate(ctx, db); err != nil {
				return err
			}
			v, dirty, err := storage.SchemaVersion(db)
			if err != nil {
				return err
			}
			line := ui.LabelValue("Schema version", v)
			if dirty {
				line += " " + ui.Bad.Render("(dirty)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	})
	return cmd
}
