package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldrane/herald/internal/core"
	"github.com/veldrane/herald/pkg/models"
)

var decisionCmd = &cobra.Command{
	Use:   "decision",
	Short: "Manage campaign decisions",
	Long:  `Commands for drafting, editing, publishing, and listing decisions.`,
}

var decisionCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Draft a new decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lifecycle == nil {
			return fmt.Errorf("decision manager not initialized")
		}
		if err := requireDMChannel(); err != nil {
			return err
		}

		d, err := Lifecycle.Create(cmd.Context(), guildFlag, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created decision %s (%s).\n", d.ID, d.Title)
		return nil
	},
}

var decisionModifyCmd = &cobra.Command{
	Use:   "modify [decision-id]",
	Short: "Edit a drafted decision",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lifecycle == nil {
			return fmt.Errorf("decision manager not initialized")
		}
		if err := requireDMChannel(); err != nil {
			return err
		}

		d, err := pickDecision(cmd, args, models.StatePreparation)
		if err != nil {
			return err
		}

		if err := Lifecycle.Modify(cmd.Context(), d); err != nil {
			return err
		}

		fmt.Printf("Updated decision %s.\n", d.ID)
		return nil
	},
}

var decisionPublishResolveAfter int

var decisionPublishCmd = &cobra.Command{
	Use:   "publish [decision-id]",
	Short: "Publish a drafted decision and open voting",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lifecycle == nil {
			return fmt.Errorf("decision manager not initialized")
		}
		if err := requireDMChannel(); err != nil {
			return err
		}

		d, err := pickDecision(cmd, args, models.StatePreparation)
		if err != nil {
			return err
		}

		minutes := decisionPublishResolveAfter
		if minutes <= 0 {
			minutes = Config.DefaultResolveMinutes
		}
		resolveAfter := time.Duration(minutes) * time.Minute

		if err := Lifecycle.Publish(cmd.Context(), d, resolveAfter); err != nil {
			return err
		}

		fmt.Printf("Published decision %s, resolves at %s.\n",
			d.ID, d.ResolveTime.Format(time.RFC3339))
		return nil
	},
}

var decisionListState string

var decisionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lifecycle == nil {
			return fmt.Errorf("decision manager not initialized")
		}

		filter := core.DecisionFilter{GuildID: guildFlag}
		if decisionListState != "" {
			filter.State = models.DecisionState(decisionListState)
		}

		decisions, err := Lifecycle.Find(filter)
		if err != nil {
			return err
		}
		if len(decisions) == 0 {
			fmt.Println("No decisions found.")
			return nil
		}

		fmt.Printf("%-24s %-12s %-8s %-20s %s\n", "ID", "STATE", "ACTIONS", "RESOLVES", "TITLE")
		fmt.Printf("%-24s %-12s %-8s %-20s %s\n",
			strings.Repeat("-", 24), strings.Repeat("-", 12),
			strings.Repeat("-", 8), strings.Repeat("-", 20),
			strings.Repeat("-", 30))
		for _, d := range decisions {
			resolves := "-"
			if d.ResolveTime != nil {
				resolves = d.ResolveTime.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-24s %-12s %-8d %-20s %s\n",
				d.ID, string(d.State), len(d.DisplayedActions()), resolves, d.Title)
		}
		return nil
	},
}

// pickDecision resolves a decision from an explicit ID argument or,
// absent one, by prompting across the candidates in the given state.
func pickDecision(cmd *cobra.Command, args []string, state models.DecisionState) (*models.Decision, error) {
	filter := core.DecisionFilter{State: state, GuildID: guildFlag}
	if len(args) > 0 {
		filter = core.DecisionFilter{ID: args[0]}
	}

	candidates, err := Lifecycle.Find(filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no matching decision in state %q", string(state))
	}
	return Lifecycle.Choose(cmd.Context(), candidates)
}

// requireDMChannel refuses mutating commands issued from a channel
// other than the configured control channel. An unset control channel
// disables the gate.
func requireDMChannel() error {
	if Admin == nil {
		return nil
	}
	cfg, err := Admin.LoadAdmin()
	if err != nil {
		return err
	}
	if cfg.Channels.DM == "" || channelFlag == "" {
		return nil
	}
	if cfg.Channels.DM != channelFlag {
		return fmt.Errorf("command only accepted in channel %q", cfg.Channels.DM)
	}
	return nil
}

func init() {
	decisionPublishCmd.Flags().IntVar(&decisionPublishResolveAfter, "resolve-after", 0,
		"minutes until the decision resolves (default from config)")
	decisionListCmd.Flags().StringVar(&decisionListState, "state", "",
		"filter by state (preparation, published, resolved)")

	decisionCmd.AddCommand(decisionCreateCmd)
	decisionCmd.AddCommand(decisionModifyCmd)
	decisionCmd.AddCommand(decisionPublishCmd)
	decisionCmd.AddCommand(decisionListCmd)
	rootCmd.AddCommand(decisionCmd)
}
