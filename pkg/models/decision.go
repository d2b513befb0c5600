// Package models defines the domain entities for Herald: decisions,
// the actions players can vote on, and the admin configuration that
// binds channel roles to real channels.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// DecisionState represents the current lifecycle state of a decision.
type DecisionState string

const (
	// StatePreparation means the decision is being edited by the
	// facilitator and is not yet visible to the voting population.
	StatePreparation DecisionState = "preparation"
	// StatePublished means the decision has been delivered to the
	// publish channel and its resolve time is fixed.
	StatePublished DecisionState = "published"
	// StateResolved means the vote has been tallied and the decision
	// is closed. Terminal.
	StateResolved DecisionState = "resolved"
)

// ActionState represents the lifecycle state of an action.
type ActionState string

const (
	// ActionProposed is the initial state of a player-proposed action
	// awaiting facilitator review.
	ActionProposed ActionState = "proposed"
	// ActionApproved means the facilitator accepted the proposal and
	// the action now appears on the published decision.
	ActionApproved ActionState = "approved"
	// ActionDenied means the facilitator rejected the proposal.
	ActionDenied ActionState = "denied"
	// ActionPublished is the state of facilitator-authored actions,
	// which skip review entirely.
	ActionPublished ActionState = "published"
)

// Decision is one proposal awaiting group input. Actions are kept in
// insertion order, which is also display order. GuildID and MessageID
// back-reference the chat message representing the decision once
// published; PublishTime and ResolveTime are nil until then. The
// resolve time is fixed at publish and never recomputed.
type Decision struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Body          string        `yaml:"body"`
	Actions       []Action      `yaml:"actions"`
	State         DecisionState `yaml:"state"`
	GuildID       string        `yaml:"guild_id,omitempty"`
	MessageID     string        `yaml:"message_id,omitempty"`
	PublishTime   *time.Time    `yaml:"publish_time,omitempty"`
	ResolveTime   *time.Time    `yaml:"resolve_time,omitempty"`
	VotedActionID string        `yaml:"voted_action,omitempty"`
}

// Action is one selectable option attached to a decision. The glyph is
// the reaction symbol players vote with; it must be unique within the
// decision's displayed-action set. AuthorID is empty for
// facilitator-authored actions. NextDecisionID supports decision
// chaining but carries no behavior yet.
type Action struct {
	ID             string      `yaml:"id"`
	Glyph          string      `yaml:"glyph"`
	Description    string      `yaml:"description"`
	State          ActionState `yaml:"state"`
	AuthorID       string      `yaml:"author_id,omitempty"`
	NextDecisionID string      `yaml:"next_decision,omitempty"`
}

// NewDecision constructs a decision in the preparation state with a
// fresh 22-character identifier. The title must not be empty.
func NewDecision(title, body string) (*Decision, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("creating decision: title must not be empty")
	}
	return &Decision{
		ID:    shortuuid.New(),
		Title: title,
		Body:  body,
		State: StatePreparation,
	}, nil
}

// NewAction constructs an action with a fresh identifier in the given
// state. Glyph and description must be non-empty.
func NewAction(glyph, description string, state ActionState) (*Action, error) {
	if strings.TrimSpace(glyph) == "" {
		return nil, fmt.Errorf("creating action: glyph must not be empty")
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("creating action: description must not be empty")
	}
	if state == "" {
		state = ActionPublished
	}
	return &Action{
		ID:          shortuuid.New(),
		Glyph:       glyph,
		Description: description,
		State:       state,
	}, nil
}

// DisplayedActions returns the actions that appear on the published
// message: facilitator-authored ones plus approved proposals, in
// insertion order.
func (d *Decision) DisplayedActions() []Action {
	var out []Action
	for _, a := range d.Actions {
		if a.State == ActionPublished || a.State == ActionApproved {
			out = append(out, a)
		}
	}
	return out
}

// ActionByID returns the action with the given ID, or nil.
func (d *Decision) ActionByID(id string) *Action {
	for i := range d.Actions {
		if d.Actions[i].ID == id {
			return &d.Actions[i]
		}
	}
	return nil
}

// ActionByGlyph returns the first displayed action bound to the given
// glyph, or nil.
func (d *Decision) ActionByGlyph(glyph string) *Action {
	for i := range d.Actions {
		a := &d.Actions[i]
		if a.Glyph == glyph && (a.State == ActionPublished || a.State == ActionApproved) {
			return a
		}
	}
	return nil
}

// AppendAction validates that the action's glyph is not already bound
// within the decision's displayed-action set and appends it. Actions
// are only ever appended, never moved.
func (d *Decision) AppendAction(a Action) error {
	if existing := d.ActionByGlyph(a.Glyph); existing != nil {
		return fmt.Errorf("appending action: glyph %s already bound to %q", a.Glyph, existing.Description)
	}
	d.Actions = append(d.Actions, a)
	return nil
}

// NextDecisionIDs returns the chained decision IDs referenced by this
// decision's actions. Chaining itself is not implemented; the
// references are carried for forward compatibility with decision trees.
func (d *Decision) NextDecisionIDs() []string {
	var ids []string
	for _, a := range d.Actions {
		if a.NextDecisionID != "" {
			ids = append(ids, a.NextDecisionID)
		}
	}
	return ids
}
