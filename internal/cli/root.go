package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "herald",
	Short: "Herald - decision and vote orchestrator for tabletop campaigns",
	Long: `Herald lets a campaign master draft multiple-choice decisions, publish
them to a shared channel, and let players vote with emoji reactions.
A background scheduler resolves each decision at its deadline by
tallying reactions and announcing the winning action.

Players can also propose their own actions on a published decision,
which the campaign master approves or denies.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("herald %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&guildFlag, "guild", "default", "campaign (guild) the command applies to")
	rootCmd.PersistentFlags().StringVar(&channelFlag, "channel", "", "channel the command is issued from, for gating")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
