package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veldrane/herald/internal/core"
	"github.com/veldrane/herald/pkg/models"
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Manage decision actions",
	Long:  `Commands for adding actions to drafts, proposing player actions, and reviewing proposals.`,
}

var (
	actionDescription string
	actionGlyph       string
	actionAuthor      string
)

var actionCreateCmd = &cobra.Command{
	Use:   "create [decision-id]",
	Short: "Add an action to a drafted decision",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Actions == nil || Lifecycle == nil {
			return fmt.Errorf("action manager not initialized")
		}
		if err := requireDMChannel(); err != nil {
			return err
		}
		if actionDescription == "" || actionGlyph == "" {
			return fmt.Errorf("--description and --glyph are required")
		}

		d, err := pickDecision(cmd, args, models.StatePreparation)
		if err != nil {
			return err
		}

		a, err := Actions.CreateAction(cmd.Context(), d, actionDescription, actionGlyph)
		if err != nil {
			return err
		}

		fmt.Printf("Added action %s (%s %s) to decision %s.\n",
			a.ID, a.Glyph, a.Description, d.ID)
		return nil
	},
}

var actionProposeCmd = &cobra.Command{
	Use:   "propose [decision-id]",
	Short: "Propose a player action on a published decision",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Actions == nil || Lifecycle == nil {
			return fmt.Errorf("action manager not initialized")
		}
		if actionDescription == "" || actionGlyph == "" {
			return fmt.Errorf("--description and --glyph are required")
		}
		if actionAuthor == "" {
			return fmt.Errorf("--author is required")
		}

		d, err := pickDecision(cmd, args, models.StatePublished)
		if err != nil {
			return err
		}

		a, err := Actions.ProposeAction(cmd.Context(), d, actionDescription, actionGlyph, actionAuthor)
		if err != nil {
			return err
		}

		fmt.Printf("Proposed action %s on decision %s, awaiting review.\n", a.ID, d.ID)
		return nil
	},
}

var (
	actionReviewApprove bool
	actionReviewDeny    bool
)

var actionReviewCmd = &cobra.Command{
	Use:   "review <action-id>",
	Short: "Approve or deny a proposed action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Actions == nil {
			return fmt.Errorf("action manager not initialized")
		}
		if err := requireDMChannel(); err != nil {
			return err
		}
		if actionReviewApprove == actionReviewDeny {
			return fmt.Errorf("exactly one of --approve or --deny is required")
		}

		if err := Actions.Review(cmd.Context(), args[0], actionReviewApprove); err != nil {
			return err
		}

		verdict := "approved"
		if actionReviewDeny {
			verdict = "denied"
		}
		fmt.Printf("Action %s %s.\n", args[0], verdict)
		return nil
	},
}

var actionUpdateCmd = &cobra.Command{
	Use:   "update <action-id>",
	Short: "Edit an action's description and glyph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Actions == nil || Lifecycle == nil {
			return fmt.Errorf("action manager not initialized")
		}
		if err := requireDMChannel(); err != nil {
			return err
		}
		if actionDescription == "" || actionGlyph == "" {
			return fmt.Errorf("--description and --glyph are required")
		}

		d, err := findOwningDecision(args[0])
		if err != nil {
			return err
		}
		if err := Actions.UpdateAction(cmd.Context(), d, args[0], actionDescription, actionGlyph); err != nil {
			return err
		}

		fmt.Printf("Updated action %s on decision %s.\n", args[0], d.ID)
		return nil
	},
}

// findOwningDecision resolves the decision carrying the given action.
func findOwningDecision(actionID string) (*models.Decision, error) {
	decisions, err := Lifecycle.Find(core.DecisionFilter{})
	if err != nil {
		return nil, err
	}
	for i := range decisions {
		if decisions[i].ActionByID(actionID) != nil {
			return &decisions[i], nil
		}
	}
	return nil, fmt.Errorf("no decision carries action %q", actionID)
}

var actionListState string

var actionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List actions across decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if Actions == nil {
			return fmt.Errorf("action manager not initialized")
		}

		filter := core.ActionFilter{GuildID: guildFlag}
		if actionListState != "" {
			filter.State = models.ActionState(actionListState)
		}

		actions, err := Actions.Find(filter)
		if err != nil {
			return err
		}
		if len(actions) == 0 {
			fmt.Println("No actions found.")
			return nil
		}

		fmt.Printf("%-24s %-10s %-6s %-12s %s\n", "ID", "STATE", "GLYPH", "AUTHOR", "DESCRIPTION")
		fmt.Printf("%-24s %-10s %-6s %-12s %s\n",
			strings.Repeat("-", 24), strings.Repeat("-", 10),
			strings.Repeat("-", 6), strings.Repeat("-", 12),
			strings.Repeat("-", 30))
		for _, a := range actions {
			author := a.AuthorID
			if author == "" {
				author = "-"
			}
			fmt.Printf("%-24s %-10s %-6s %-12s %s\n",
				a.ID, string(a.State), a.Glyph, author, a.Description)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{actionCreateCmd, actionProposeCmd, actionUpdateCmd} {
		c.Flags().StringVar(&actionDescription, "description", "", "action description")
		c.Flags().StringVar(&actionGlyph, "glyph", "", "reaction emoji players vote with")
	}
	actionProposeCmd.Flags().StringVar(&actionAuthor, "author", "", "proposing player's ID")
	actionReviewCmd.Flags().BoolVar(&actionReviewApprove, "approve", false, "approve the proposal")
	actionReviewCmd.Flags().BoolVar(&actionReviewDeny, "deny", false, "deny the proposal")
	actionListCmd.Flags().StringVar(&actionListState, "state", "",
		"filter by state (proposed, approved, denied, published)")

	actionCmd.AddCommand(actionCreateCmd)
	actionCmd.AddCommand(actionProposeCmd)
	actionCmd.AddCommand(actionReviewCmd)
	actionCmd.AddCommand(actionUpdateCmd)
	actionCmd.AddCommand(actionListCmd)
	rootCmd.AddCommand(actionCmd)
}
