package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/veldrane/herald/internal/chat"
)

// Bounds for how often the scheduler scans for due decisions.
const (
	MinSchedulerInterval = time.Second
	MaxSchedulerInterval = 5 * time.Minute
	// DefaultSchedulerInterval matches the bot's historical 5s poll.
	DefaultSchedulerInterval = 5 * time.Second
)

// Scheduler periodically scans for published decisions whose resolve
// time has elapsed, fetches their reaction tallies, and resolves them.
type Scheduler struct {
	interval  time.Duration
	lifecycle DecisionManager
	admin     AdminStore
	gateway   chat.Gateway
	logger    *slog.Logger
	now       func() time.Time
}

// NewScheduler creates a Scheduler. An interval outside the allowed
// bounds is clamped.
func NewScheduler(interval time.Duration, lifecycle DecisionManager, admin AdminStore, gateway chat.Gateway, logger *slog.Logger) *Scheduler {
	if interval < MinSchedulerInterval {
		interval = MinSchedulerInterval
	}
	if interval > MaxSchedulerInterval {
		interval = MaxSchedulerInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval:  interval,
		lifecycle: lifecycle,
		admin:     admin,
		gateway:   gateway,
		logger:    logger,
		now:       time.Now,
	}
}

// Run drives the scan loop until the context is cancelled. Scan
// failures are logged and the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				s.logger.Error("scheduler scan", "error", err)
			}
		}
	}
}

// Scan performs one resolution pass and returns how many decisions
// were resolved. One decision's failure never blocks the rest of the
// pass.
func (s *Scheduler) Scan(ctx context.Context) (int, error) {
	due, err := s.lifecycle.Due(s.now())
	if err != nil {
		return 0, fmt.Errorf("scanning for due decisions: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	cfg, err := s.admin.LoadAdmin()
	if err != nil {
		return 0, fmt.Errorf("scanning for due decisions: %w", err)
	}
	channel := cfg.Channels.Publish
	if channel == "" {
		return 0, fmt.Errorf("scanning for due decisions: publish %w", ErrChannelNotConfigured)
	}

	resolved := 0
	for i := range due {
		d := due[i]
		s.logger.Info("resolve time is up", "decision", d.ID, "title", d.Title)

		tallies, err := s.gateway.Reactions(ctx, channel, d.MessageID)
		if err != nil {
			s.logger.Error("fetching reactions", "decision", d.ID, "error", err)
			continue
		}
		if err := s.lifecycle.Resolve(ctx, &d, tallies); err != nil {
			s.logger.Error("resolving decision", "decision", d.ID, "error", err)
			continue
		}
		resolved++
	}
	return resolved, nil
}
