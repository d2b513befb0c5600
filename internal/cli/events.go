package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldrane/herald/internal/observability"
)

var (
	eventsType  string
	eventsSince string
	eventsUntil string
	eventsLevel string
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the event history",
	Long:  `Reads the append-only event log: decisions created, published, resolved, and proposals reviewed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		filter := observability.EventFilter{Type: eventsType, Level: eventsLevel}
		if eventsSince != "" {
			since, err := time.Parse(time.RFC3339, eventsSince)
			if err != nil {
				return fmt.Errorf("parsing --since: %w", err)
			}
			filter.Since = &since
		}
		if eventsUntil != "" {
			until, err := time.Parse(time.RFC3339, eventsUntil)
			if err != nil {
				return fmt.Errorf("parsing --until: %w", err)
			}
			filter.Until = &until
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return err
		}
		if eventsLimit > 0 && len(events) > eventsLimit {
			events = events[len(events)-eventsLimit:]
		}
		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		for _, e := range events {
			fmt.Printf("%s %-8s %-20s %s\n",
				e.Time.Format("2006-01-02 15:04:05"), e.Level, e.Type, e.Message)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "filter by event type")
	eventsCmd.Flags().StringVar(&eventsSince, "since", "", "only events after this RFC3339 timestamp")
	eventsCmd.Flags().StringVar(&eventsUntil, "until", "", "only events up to this RFC3339 timestamp")
	eventsCmd.Flags().StringVar(&eventsLevel, "level", "", "filter by level (INFO, WARN, ERROR)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "show at most this many recent events")
	rootCmd.AddCommand(eventsCmd)
}
