package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/veldrane/herald/internal/chat"
	"github.com/veldrane/herald/pkg/models"
)

// ErrInvalidTransition is returned when an operation would move a
// decision or action against its state machine. The entity is left
// unmutated.
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrNotDue is returned when resolve is attempted before the decision's
// resolve time has elapsed.
var ErrNotDue = errors.New("decision is not due for resolution")

// ErrChannelNotConfigured is returned when an operation needs a channel
// role that has no channel name bound to it.
var ErrChannelNotConfigured = errors.New("channel not configured")

// DecisionStore is the subset of storage.DecisionStore the managers
// need. Defining it here keeps core independent of the storage package.
type DecisionStore interface {
	ListDecisions() ([]models.Decision, error)
	AppendDecision(d models.Decision) error
	UpdateDecision(d models.Decision) error
}

// AdminStore is the subset of storage.AdminStore the managers need.
type AdminStore interface {
	LoadAdmin() (*models.AdminConfig, error)
	SaveAdmin(cfg *models.AdminConfig) error
}

// EventLogger records operational events. Optional; a nil logger
// disables event recording.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// OutcomeNotifier delivers resolution announcements to an external
// sink beyond the chat channels, such as a webhook.
type OutcomeNotifier interface {
	Announce(title, text string) error
}

// ActionEditor is implemented by the action manager so the decision
// manager can delegate the interactive action-edit flow without a
// package cycle.
type ActionEditor interface {
	ModifyActions(ctx context.Context, d *models.Decision) error
}

// DecisionFilter selects decisions. ID lookup and state/guild
// filtering are mutually exclusive query modes; a non-empty ID takes
// precedence and returns at most one decision.
type DecisionFilter struct {
	ID      string
	State   models.DecisionState
	GuildID string
}

// DecisionManager orchestrates creation, modification, publication,
// and resolution of decisions.
type DecisionManager interface {
	Create(ctx context.Context, guildID, title string) (*models.Decision, error)
	Modify(ctx context.Context, d *models.Decision) error
	Find(filter DecisionFilter) ([]models.Decision, error)
	Choose(ctx context.Context, candidates []models.Decision) (*models.Decision, error)
	Publish(ctx context.Context, d *models.Decision, resolveAfter time.Duration) error
	Resolve(ctx context.Context, d *models.Decision, tallies []chat.ReactionCount) error
	Due(now time.Time) ([]models.Decision, error)
}

// heraldLines are the announcement headlines used when a decision
// resolves.
var heraldLines = []string{
	"The people have spoken.",
	"A fate is drawn.",
	"The gods deign.",
	"A decision has been made.",
	"The future crystalizes.",
}

type decisionManager struct {
	store    DecisionStore
	admin    AdminStore
	gateway  chat.Gateway
	prompter Prompter
	actions  ActionEditor
	events   EventLogger
	notifier OutcomeNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// DecisionManagerDeps bundles the collaborators a DecisionManager
// needs. Actions, Events, Notifier, Logger, and Now are optional.
type DecisionManagerDeps struct {
	Store    DecisionStore
	Admin    AdminStore
	Gateway  chat.Gateway
	Prompter Prompter
	Actions  ActionEditor
	Events   EventLogger
	Notifier OutcomeNotifier
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewDecisionManager creates a DecisionManager with all dependencies
// injected.
func NewDecisionManager(deps DecisionManagerDeps) DecisionManager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &decisionManager{
		store:    deps.Store,
		admin:    deps.Admin,
		gateway:  deps.Gateway,
		prompter: deps.Prompter,
		actions:  deps.Actions,
		events:   deps.Events,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      deps.Now,
	}
}

// Create prompts for the decision body, constructs a decision in the
// preparation state, and appends it to the persisted collection.
func (m *decisionManager) Create(ctx context.Context, guildID, title string) (*models.Decision, error) {
	body, err := m.prompter.Prompt(ctx, PromptRequest{
		Title:    "Decision Body",
		Question: "What is the body?",
	})
	if err != nil {
		return nil, fmt.Errorf("creating decision: %w", err)
	}

	d, err := models.NewDecision(title, body)
	if err != nil {
		return nil, err
	}
	d.GuildID = guildID

	if err := m.store.AppendDecision(*d); err != nil {
		return nil, fmt.Errorf("creating decision: %w", err)
	}
	m.logEvent("decision.created", map[string]any{"id": d.ID, "title": d.Title})
	return d, nil
}

// Modify runs the interactive edit flow for a decision still in
// preparation. All user input is resolved before the store is touched,
// so an abandoned prompt leaves the stored decision unchanged.
func (m *decisionManager) Modify(ctx context.Context, d *models.Decision) error {
	if d.State != models.StatePreparation {
		return fmt.Errorf("modifying decision %s in state %s: %w", d.ID, d.State, ErrInvalidTransition)
	}

	choice, err := m.prompter.Prompt(ctx, PromptRequest{
		Title:    "Decision Property Update",
		Question: "Which property do you wish to update? (c to cancel)\n[1] Title\n[2] Body\n[3] Actions",
		Options:  []string{"1", "2", "3"},
	})
	if err != nil {
		return fmt.Errorf("modifying decision %s: %w", d.ID, err)
	}

	switch choice {
	case "1":
		title, err := m.prompter.Prompt(ctx, PromptRequest{
			Title:    "Decision Title Update",
			Question: "What is the new title?",
		})
		if err != nil {
			return fmt.Errorf("modifying decision %s: %w", d.ID, err)
		}
		d.Title = title
	case "2":
		body, err := m.prompter.Prompt(ctx, PromptRequest{
			Title:    "Decision Body Update",
			Question: "What is the new body?",
		})
		if err != nil {
			return fmt.Errorf("modifying decision %s: %w", d.ID, err)
		}
		d.Body = body
	case "3":
		if m.actions == nil {
			return fmt.Errorf("modifying decision %s: action editor not available", d.ID)
		}
		return m.actions.ModifyActions(ctx, d)
	}

	if err := m.store.UpdateDecision(*d); err != nil {
		return fmt.Errorf("modifying decision %s: %w", d.ID, err)
	}
	return nil
}

// Find returns decisions matching the filter. A non-empty ID returns
// at most one decision; otherwise state and guild act as predicates.
func (m *decisionManager) Find(filter DecisionFilter) ([]models.Decision, error) {
	decisions, err := m.store.ListDecisions()
	if err != nil {
		return nil, fmt.Errorf("finding decisions: %w", err)
	}

	if filter.ID != "" {
		for _, d := range decisions {
			if d.ID == filter.ID {
				return []models.Decision{d}, nil
			}
		}
		return nil, nil
	}

	var result []models.Decision
	for _, d := range decisions {
		if filter.State != "" && d.State != filter.State {
			continue
		}
		if filter.GuildID != "" && d.GuildID != filter.GuildID {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

// Choose presents a numbered menu of candidates and resolves the
// user's pick. Timeout or cancellation yields the corresponding prompt
// error and no selection.
func (m *decisionManager) Choose(ctx context.Context, candidates []models.Decision) (*models.Decision, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	question := "Found decision(s), which one do you want to select? (c to cancel)"
	options := make([]string, 0, len(candidates))
	for i, d := range candidates {
		question += fmt.Sprintf("\n[%d] %s", i+1, truncate(d.Title, 20))
		options = append(options, strconv.Itoa(i+1))
	}

	reply, err := m.prompter.Prompt(ctx, PromptRequest{
		Title:    "Select Decision",
		Question: question,
		Options:  options,
	})
	if err != nil {
		return nil, err
	}
	idx, err := strconv.Atoi(reply)
	if err != nil || idx < 1 || idx > len(candidates) {
		return nil, fmt.Errorf("choosing decision: invalid selection %q", reply)
	}
	return &candidates[idx-1], nil
}

// Publish transitions a decision from preparation to published: it
// confirms the target channel with the facilitator, delivers the
// decision's display representation, seeds one reaction per displayed
// action, and fixes the resolve time. Message ID and resolve time are
// persisted together in a single update.
func (m *decisionManager) Publish(ctx context.Context, d *models.Decision, resolveAfter time.Duration) error {
	if d.State != models.StatePreparation {
		return fmt.Errorf("publishing decision %s in state %s: %w", d.ID, d.State, ErrInvalidTransition)
	}

	cfg, err := m.admin.LoadAdmin()
	if err != nil {
		return fmt.Errorf("publishing decision %s: %w", d.ID, err)
	}
	channel := cfg.Channels.Publish
	if channel == "" {
		return fmt.Errorf("publishing decision %s: publish %w", d.ID, ErrChannelNotConfigured)
	}

	preview := m.now().Add(resolveAfter)
	confirm, err := m.prompter.Prompt(ctx, PromptRequest{
		Title: "Confirm Publication",
		Question: fmt.Sprintf(
			"Publish to %s, resolving at %s?\n[y] Publish\n[n] Continue editing",
			channel, preview.Format("02 Jan at 3:04 PM")),
		Options: []string{"y", "n"},
	})
	if err != nil {
		return fmt.Errorf("publishing decision %s: %w", d.ID, err)
	}
	if confirm != "y" {
		return fmt.Errorf("publishing decision %s: %w", d.ID, ErrPromptCancelled)
	}

	// The clock is re-read after confirmation so the facilitator's
	// deliberation time does not eat into the voting window.
	publishTime := m.now()
	resolveTime := publishTime.Add(resolveAfter)

	messageID, err := m.gateway.Send(ctx, channel, chat.RenderDecision(d))
	if err != nil {
		return fmt.Errorf("publishing decision %s to %s: %w", d.ID, channel, err)
	}
	for _, a := range d.DisplayedActions() {
		if err := m.gateway.React(ctx, channel, messageID, a.Glyph); err != nil {
			m.logger.Warn("seeding reaction failed", "decision", d.ID, "glyph", a.Glyph, "error", err)
		}
	}

	d.MessageID = messageID
	d.PublishTime = &publishTime
	d.ResolveTime = &resolveTime
	d.State = models.StatePublished

	if err := m.store.UpdateDecision(*d); err != nil {
		return fmt.Errorf("publishing decision %s: %w", d.ID, err)
	}
	m.logEvent("decision.published", map[string]any{
		"id":           d.ID,
		"channel":      channel,
		"message_id":   messageID,
		"resolve_time": resolveTime.Format(time.RFC3339),
	})
	return nil
}

// Resolve tallies the reactions on a published, due decision and closes
// it. The winning action is the one bound to the reaction with the
// strictly greatest count; on a tie the first-seen reaction wins. Zero
// reactions still resolve the decision, with no winning action.
func (m *decisionManager) Resolve(ctx context.Context, d *models.Decision, tallies []chat.ReactionCount) error {
	if d.State != models.StatePublished {
		return fmt.Errorf("resolving decision %s in state %s: %w", d.ID, d.State, ErrInvalidTransition)
	}
	if d.ResolveTime == nil || m.now().Before(*d.ResolveTime) {
		return fmt.Errorf("resolving decision %s: %w", d.ID, ErrNotDue)
	}

	var top *chat.ReactionCount
	for i := range tallies {
		if top == nil || tallies[i].Count > top.Count {
			top = &tallies[i]
		}
	}

	var winner *models.Action
	if top != nil {
		winner = d.ActionByGlyph(top.Glyph)
	}
	if winner != nil {
		d.VotedActionID = winner.ID
	} else {
		d.VotedActionID = ""
	}
	d.State = models.StateResolved

	if err := m.store.UpdateDecision(*d); err != nil {
		return fmt.Errorf("resolving decision %s: %w", d.ID, err)
	}
	m.logEvent("decision.resolved", map[string]any{
		"id":           d.ID,
		"voted_action": d.VotedActionID,
	})

	m.announce(ctx, d, winner)
	return nil
}

// announce delivers the outcome to the publish and notifications
// channels and, when configured, the external notifier. Announcement
// failures are logged, never fatal.
func (m *decisionManager) announce(ctx context.Context, d *models.Decision, winner *models.Action) {
	headline := heraldLines[rand.Intn(len(heraldLines))]
	var text string
	if winner != nil {
		text = fmt.Sprintf("An action has been chosen\n%s: %s", winner.Glyph, winner.Description)
	} else {
		text = fmt.Sprintf("No votes were cast on %q. The decision closes without an action.", d.Title)
	}

	cfg, err := m.admin.LoadAdmin()
	if err != nil {
		m.logger.Error("loading admin config for announcement", "decision", d.ID, "error", err)
		return
	}
	msg := chat.Outgoing{Title: headline, Body: text}
	for _, channel := range []string{cfg.Channels.Publish, cfg.Channels.Notifications} {
		if channel == "" {
			continue
		}
		if _, err := m.gateway.Send(ctx, channel, msg); err != nil {
			m.logger.Error("announcing resolution", "decision", d.ID, "channel", channel, "error", err)
		}
	}
	if m.notifier != nil {
		if err := m.notifier.Announce(headline, text); err != nil {
			m.logger.Error("notifying resolution", "decision", d.ID, "error", err)
		}
	}
}

// Due returns the published decisions whose resolve time has elapsed.
func (m *decisionManager) Due(now time.Time) ([]models.Decision, error) {
	published, err := m.Find(DecisionFilter{State: models.StatePublished})
	if err != nil {
		return nil, err
	}
	var due []models.Decision
	for _, d := range published {
		if d.ResolveTime != nil && !d.ResolveTime.After(now) {
			due = append(due, d)
		}
	}
	return due, nil
}

func (m *decisionManager) logEvent(eventType string, data map[string]any) {
	if m.events == nil {
		return
	}
	if err := m.events.LogEvent(eventType, data); err != nil {
		m.logger.Warn("writing event log", "type", eventType, "error", err)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
