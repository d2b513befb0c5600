// Package chat defines the transport interface Herald's core speaks to
// a chat platform through, plus a file-backed implementation for local
// use and tests. The real platform transport is out of scope; anything
// that can send messages, attach reactions, and report reaction
// tallies can back the core.
package chat

import (
	"context"
	"strings"

	"github.com/veldrane/herald/pkg/models"
)

// Outgoing is a message to deliver to a channel or user.
type Outgoing struct {
	Title string
	Body  string
}

// ReactionCount is one glyph's tally on a message. Implementations must
// report tallies in first-seen order: the order reactions were first
// attached to the message. Resolution's tie-break depends on it.
type ReactionCount struct {
	Glyph string `yaml:"glyph"`
	Count int    `yaml:"count"`
}

// Gateway is the transport contract consumed by the core managers.
type Gateway interface {
	// Send delivers a message to the named channel and returns the
	// platform's message identifier.
	Send(ctx context.Context, channel string, msg Outgoing) (string, error)

	// React attaches a reaction glyph to an existing message.
	React(ctx context.Context, channel, messageID, glyph string) error

	// Reactions reports the current reaction tallies on a message,
	// in first-seen order.
	Reactions(ctx context.Context, channel, messageID string) ([]ReactionCount, error)

	// DirectMessage delivers a message to a single user.
	DirectMessage(ctx context.Context, userID string, msg Outgoing) error
}

// RenderDecision builds the display representation of a decision: the
// title in bold, the body, then one line per displayed action.
func RenderDecision(d *models.Decision) Outgoing {
	var b strings.Builder
	b.WriteString("**" + d.Title + "**\n")
	b.WriteString(d.Body + "\n")
	for _, a := range d.DisplayedActions() {
		b.WriteString(a.Glyph + " = " + a.Description + "\n")
	}
	return Outgoing{Title: d.Title, Body: b.String()}
}
