package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/veldrane/herald/internal/chat"
	"github.com/veldrane/herald/pkg/models"
)

var errNotFoundInDecision = errors.New("action not found in decision")

// ActionFilter selects actions across all decisions. Same two-mode
// contract as DecisionFilter: a non-empty ID takes precedence.
type ActionFilter struct {
	ID      string
	State   models.ActionState
	GuildID string
}

// ActionManager orchestrates creation and moderation of actions,
// including the player proposal workflow.
type ActionManager interface {
	CreateAction(ctx context.Context, d *models.Decision, description, glyph string) (*models.Action, error)
	ProposeAction(ctx context.Context, d *models.Decision, description, glyph, authorID string) (*models.Action, error)
	Review(ctx context.Context, actionID string, approve bool) error
	Find(filter ActionFilter) ([]models.Action, error)
	UpdateAction(ctx context.Context, d *models.Decision, actionID, description, glyph string) error
	ModifyActions(ctx context.Context, d *models.Decision) error
}

type actionManager struct {
	store    DecisionStore
	admin    AdminStore
	gateway  chat.Gateway
	prompter Prompter
	events   EventLogger
	logger   *slog.Logger
}

// ActionManagerDeps bundles the collaborators an ActionManager needs.
type ActionManagerDeps struct {
	Store    DecisionStore
	Admin    AdminStore
	Gateway  chat.Gateway
	Prompter Prompter
	Events   EventLogger
	Logger   *slog.Logger
}

// NewActionManager creates an ActionManager with all dependencies
// injected.
func NewActionManager(deps ActionManagerDeps) ActionManager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &actionManager{
		store:    deps.Store,
		admin:    deps.Admin,
		gateway:  deps.Gateway,
		prompter: deps.Prompter,
		events:   deps.Events,
		logger:   deps.Logger,
	}
}

// CreateAction appends a facilitator-authored action, which is
// displayed immediately and skips review. Only drafts accept it;
// once published, the message copy is fixed and new options arrive
// through the proposal flow.
func (m *actionManager) CreateAction(ctx context.Context, d *models.Decision, description, glyph string) (*models.Action, error) {
	if d.State != models.StatePreparation {
		return nil, fmt.Errorf("creating action on decision %s in state %s: %w", d.ID, d.State, ErrInvalidTransition)
	}

	a, err := models.NewAction(glyph, description, models.ActionPublished)
	if err != nil {
		return nil, err
	}
	if err := d.AppendAction(*a); err != nil {
		return nil, err
	}
	if err := m.store.UpdateDecision(*d); err != nil {
		return nil, fmt.Errorf("creating action on decision %s: %w", d.ID, err)
	}
	m.logEvent("action.created", map[string]any{"id": a.ID, "decision": d.ID, "glyph": a.Glyph})
	return a, nil
}

// ProposeAction appends a player-proposed action in the proposed state
// and asks the facilitator to review it via the DM channel. The
// published message is not touched until the proposal is approved.
func (m *actionManager) ProposeAction(ctx context.Context, d *models.Decision, description, glyph, authorID string) (*models.Action, error) {
	if d.State != models.StatePublished {
		return nil, fmt.Errorf("proposing action on decision %s in state %s: %w", d.ID, d.State, ErrInvalidTransition)
	}

	a, err := models.NewAction(glyph, description, models.ActionProposed)
	if err != nil {
		return nil, err
	}
	a.AuthorID = authorID
	if err := d.AppendAction(*a); err != nil {
		return nil, err
	}
	if err := m.store.UpdateDecision(*d); err != nil {
		return nil, fmt.Errorf("proposing action on decision %s: %w", d.ID, err)
	}
	m.logEvent("action.proposed", map[string]any{
		"id": a.ID, "decision": d.ID, "glyph": a.Glyph, "author": authorID,
	})

	m.requestReview(ctx, d, a)
	return a, nil
}

// requestReview sends the review prompt to the facilitator's DM
// channel. Failure to deliver is logged; the proposal stands either
// way.
func (m *actionManager) requestReview(ctx context.Context, d *models.Decision, a *models.Action) {
	cfg, err := m.admin.LoadAdmin()
	if err != nil {
		m.logger.Error("loading admin config for review request", "action", a.ID, "error", err)
		return
	}
	if cfg.Channels.DM == "" {
		m.logger.Warn("dm channel not configured, review request not delivered", "action", a.ID)
		return
	}
	body := fmt.Sprintf(
		"Player %s proposed a new action for %q:\n%s = %s\nApprove with `herald action review %s --approve`, deny with `--deny`.",
		a.AuthorID, d.Title, a.Glyph, a.Description, a.ID)
	if _, err := m.gateway.Send(ctx, cfg.Channels.DM, chat.Outgoing{Title: "Action Proposal", Body: body}); err != nil {
		m.logger.Error("sending review request", "action", a.ID, "error", err)
	}
}

// Review settles a proposed action. Approval adds the new glyph as a
// reaction on the already-published message; denial leaves the message
// untouched. The proposer is notified of the outcome either way.
func (m *actionManager) Review(ctx context.Context, actionID string, approve bool) error {
	d, a, err := m.findOwning(actionID)
	if err != nil {
		return fmt.Errorf("reviewing action %s: %w", actionID, err)
	}
	if a.State != models.ActionProposed {
		return fmt.Errorf("reviewing action %s in state %s: %w", actionID, a.State, ErrInvalidTransition)
	}

	outcome := "denied"
	if approve {
		a.State = models.ActionApproved
		outcome = "approved"
	} else {
		a.State = models.ActionDenied
	}

	if approve && d.MessageID != "" {
		cfg, err := m.admin.LoadAdmin()
		if err != nil {
			return fmt.Errorf("reviewing action %s: %w", actionID, err)
		}
		if cfg.Channels.Publish == "" {
			return fmt.Errorf("reviewing action %s: publish %w", actionID, ErrChannelNotConfigured)
		}
		if err := m.gateway.React(ctx, cfg.Channels.Publish, d.MessageID, a.Glyph); err != nil {
			return fmt.Errorf("reviewing action %s: attaching reaction: %w", actionID, err)
		}
	}

	if err := m.store.UpdateDecision(*d); err != nil {
		return fmt.Errorf("reviewing action %s: %w", actionID, err)
	}
	m.logEvent("action.reviewed", map[string]any{"id": a.ID, "decision": d.ID, "outcome": outcome})

	if a.AuthorID != "" {
		body := fmt.Sprintf("Your proposed action %s = %s on %q was %s.", a.Glyph, a.Description, d.Title, outcome)
		if err := m.gateway.DirectMessage(ctx, a.AuthorID, chat.Outgoing{Title: "Proposal Reviewed", Body: body}); err != nil {
			m.logger.Warn("notifying proposer", "action", a.ID, "author", a.AuthorID, "error", err)
		}
	}
	return nil
}

// Find returns actions matching the filter, flattening across all
// decisions' action lists.
func (m *actionManager) Find(filter ActionFilter) ([]models.Action, error) {
	decisions, err := m.store.ListDecisions()
	if err != nil {
		return nil, fmt.Errorf("finding actions: %w", err)
	}

	if filter.ID != "" {
		for _, d := range decisions {
			if a := d.ActionByID(filter.ID); a != nil {
				return []models.Action{*a}, nil
			}
		}
		return nil, nil
	}

	var result []models.Action
	for _, d := range decisions {
		if filter.GuildID != "" && d.GuildID != filter.GuildID {
			continue
		}
		for _, a := range d.Actions {
			if filter.State != "" && a.State != filter.State {
				continue
			}
			result = append(result, a)
		}
	}
	return result, nil
}

// UpdateAction replaces an action's description and glyph in place and
// persists via the owning decision.
func (m *actionManager) UpdateAction(ctx context.Context, d *models.Decision, actionID, description, glyph string) error {
	a := d.ActionByID(actionID)
	if a == nil {
		return fmt.Errorf("updating action %s on decision %s: %w", actionID, d.ID, errNotFoundInDecision)
	}
	if _, err := models.NewAction(glyph, description, a.State); err != nil {
		return fmt.Errorf("updating action %s: %w", actionID, err)
	}
	if other := d.ActionByGlyph(glyph); other != nil && other.ID != actionID {
		return fmt.Errorf("updating action %s: glyph %s already bound to %q", actionID, glyph, other.Description)
	}
	a.Description = description
	a.Glyph = glyph
	if err := m.store.UpdateDecision(*d); err != nil {
		return fmt.Errorf("updating action %s: %w", actionID, err)
	}
	return nil
}

// ModifyActions runs the interactive action-edit flow for a decision.
// Every prompt resolves before any store write.
func (m *actionManager) ModifyActions(ctx context.Context, d *models.Decision) error {
	question := "Which action do you want to modify? (c to cancel)\n"
	options := make([]string, 0, len(d.Actions)+1)
	for i, a := range d.Actions {
		question += fmt.Sprintf("[%d] %s = %s\n", i+1, a.Glyph, a.Description)
		options = append(options, strconv.Itoa(i+1))
	}
	question += "[n] Create new action."
	options = append(options, "n")

	choice, err := m.prompter.Prompt(ctx, PromptRequest{
		Title:    "Modify Action",
		Question: question,
		Options:  options,
	})
	if err != nil {
		if promptAborted(err) {
			return err
		}
		return fmt.Errorf("modifying actions on decision %s: %w", d.ID, err)
	}

	description, glyph, err := m.promptActionFields(ctx)
	if err != nil {
		return err
	}

	if choice == "n" {
		_, err = m.CreateAction(ctx, d, description, glyph)
		return err
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(d.Actions) {
		return fmt.Errorf("modifying actions on decision %s: invalid selection %q", d.ID, choice)
	}
	return m.UpdateAction(ctx, d, d.Actions[idx-1].ID, description, glyph)
}

func (m *actionManager) promptActionFields(ctx context.Context) (description, glyph string, err error) {
	description, err = m.prompter.Prompt(ctx, PromptRequest{
		Title:    "Action Description",
		Question: "Describe the action. (c to cancel)",
	})
	if err != nil {
		return "", "", err
	}
	glyph, err = m.prompter.Prompt(ctx, PromptRequest{
		Title:    "Action Glyph",
		Question: "Give the action a glyph/emoji. (c to cancel)",
	})
	if err != nil {
		return "", "", err
	}
	return description, glyph, nil
}

// findOwning scans the collection for the decision owning the given
// action ID.
func (m *actionManager) findOwning(actionID string) (*models.Decision, *models.Action, error) {
	decisions, err := m.store.ListDecisions()
	if err != nil {
		return nil, nil, err
	}
	for i := range decisions {
		if a := decisions[i].ActionByID(actionID); a != nil {
			return &decisions[i], a, nil
		}
	}
	return nil, nil, errNotFoundInDecision
}

func (m *actionManager) logEvent(eventType string, data map[string]any) {
	if m.events == nil {
		return
	}
	if err := m.events.LogEvent(eventType, data); err != nil {
		m.logger.Warn("writing event log", "type", eventType, "error", err)
	}
}
