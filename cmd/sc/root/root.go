package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"streakcity/internal/ui"
)

const Version = "0.1.0"

type globalFlags struct {
	configPath string
	dbPath     string
	user       string
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "sc",
	Short:         "StreakCity: daily habits that build a city",
	Long:          "StreakCity is a local-first habit tracker. Streaks earn XP, the forge rewards yesterday's effort, and every habit becomes a building.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default: user config dir/streakcity/config.yaml)")
	pf.StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides config)")
	pf.StringVar(&flags.user, "user", "", "User key (overrides config)")

	rootCmd.AddCommand(
		newStatusCmd(),
		newHabitsCmd(),
		newAddCmd(),
		newDoneCmd(),
		newArchiveCmd(),
		newPinCmd(),
		newFreezeCmd(),
		newForgeCmd(),
		newSpinCmd(),
		newMissionCmd(),
		newMilestonesCmd(),
		newCityCmd(),
		newScoreCmd(),
		newReportCmd(),
		newHistoryCmd(),
		newBoardCmd(),
		newSyncCmd(),
		newDBCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
