package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resolution scheduler until interrupted",
	Long: `Starts the background scheduler that periodically scans for published
decisions past their deadline, tallies their reactions, and resolves
them. Runs until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("scheduler not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("Scheduler running, press Ctrl+C to stop.")
		err := Runner.Run(ctx)
		if errors.Is(err, context.Canceled) {
			fmt.Println("Scheduler stopped.")
			return nil
		}
		return err
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Run a single resolution scan",
	Long:  `Performs one scheduler pass: resolves every published decision whose deadline has passed, then exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("scheduler not initialized")
		}

		resolved, err := Runner.Scan(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Resolved %d decision(s).\n", resolved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
}
