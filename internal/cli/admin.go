package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Manage channel assignments",
	Long:  `Commands for assigning the control, publish, and notification channels.`,
}

var channelSetCmd = &cobra.Command{
	Use:   "set <role> <channel-name>",
	Short: "Assign a channel to a role (dm, publish, notifications)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Admin == nil {
			return fmt.Errorf("admin store not initialized")
		}

		cfg, err := Admin.LoadAdmin()
		if err != nil {
			return err
		}
		if !cfg.Channels.SetRole(args[0], args[1]) {
			return fmt.Errorf("unknown channel role %q (expected dm, publish, or notifications)", args[0])
		}
		if err := Admin.SaveAdmin(cfg); err != nil {
			return err
		}

		fmt.Printf("Channel %q assigned to role %s.\n", args[1], args[0])
		return nil
	},
}

var channelShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show channel assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Admin == nil {
			return fmt.Errorf("admin store not initialized")
		}

		cfg, err := Admin.LoadAdmin()
		if err != nil {
			return err
		}

		fmt.Printf("%-15s %s\n", "ROLE", "CHANNEL")
		fmt.Printf("%-15s %s\n", strings.Repeat("-", 15), strings.Repeat("-", 20))
		for _, role := range []string{"dm", "publish", "notifications"} {
			name, _ := cfg.Channels.ByRole(role)
			if name == "" {
				name = "(unset)"
			}
			fmt.Printf("%-15s %s\n", role, name)
		}
		return nil
	},
}

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Manage campaign metadata",
}

var (
	campaignTitle       string
	campaignDescription string
	campaignTheme       []string
)

var campaignSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set campaign title, description, or theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Admin == nil {
			return fmt.Errorf("admin store not initialized")
		}

		cfg, err := Admin.LoadAdmin()
		if err != nil {
			return err
		}
		if campaignTitle != "" {
			cfg.Campaign.Title = campaignTitle
		}
		if campaignDescription != "" {
			cfg.Campaign.Description = campaignDescription
		}
		if len(campaignTheme) > 0 {
			cfg.Campaign.Theme = campaignTheme
		}
		if err := Admin.SaveAdmin(cfg); err != nil {
			return err
		}

		fmt.Println("Campaign updated.")
		return nil
	},
}

var campaignShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show campaign metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Admin == nil {
			return fmt.Errorf("admin store not initialized")
		}

		cfg, err := Admin.LoadAdmin()
		if err != nil {
			return err
		}

		title := cfg.Campaign.Title
		if title == "" {
			title = "(unset)"
		}
		fmt.Printf("Title:       %s\n", title)
		fmt.Printf("Description: %s\n", cfg.Campaign.Description)
		if len(cfg.Campaign.Theme) > 0 {
			fmt.Printf("Theme:       %s\n", strings.Join(cfg.Campaign.Theme, ", "))
		}
		return nil
	},
}

func init() {
	campaignSetCmd.Flags().StringVar(&campaignTitle, "title", "", "campaign title")
	campaignSetCmd.Flags().StringVar(&campaignDescription, "description", "", "campaign description")
	campaignSetCmd.Flags().StringSliceVar(&campaignTheme, "theme", nil, "campaign theme keywords")

	channelCmd.AddCommand(channelSetCmd)
	channelCmd.AddCommand(channelShowCmd)
	campaignCmd.AddCommand(campaignSetCmd)
	campaignCmd.AddCommand(campaignShowCmd)
	rootCmd.AddCommand(channelCmd)
	rootCmd.AddCommand(campaignCmd)
}
