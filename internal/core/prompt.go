// Package core contains the business logic for Herald: the decision
// lifecycle manager, the action proposal/review manager, the resolution
// scheduler, and configuration loading.
package core

import (
	"context"
	"errors"
	"time"
)

// DefaultPromptTimeout bounds how long a prompt waits for a reply.
const DefaultPromptTimeout = 30 * time.Second

// CancelToken is the reply that cancels any prompt.
const CancelToken = "c"

// ErrPromptTimeout is returned when the user did not reply within the
// prompt's timeout. The surrounding operation aborts with no state
// mutation committed.
var ErrPromptTimeout = errors.New("prompt timed out")

// ErrPromptCancelled is returned when the user replied with the cancel
// token. Same abort semantics as a timeout.
var ErrPromptCancelled = errors.New("prompt cancelled")

// PromptRequest describes one question put to the user.
type PromptRequest struct {
	Title    string
	Question string
	// Options restricts accepted replies to this token set. Empty
	// means free text. The cancel token is always accepted.
	Options []string
	// Timeout overrides DefaultPromptTimeout when positive.
	Timeout time.Duration
}

// Prompter awaits the user's next matching reply. Implementations must
// return ErrPromptTimeout on timeout and ErrPromptCancelled when the
// reply is the cancel token.
type Prompter interface {
	Prompt(ctx context.Context, req PromptRequest) (string, error)
}

// promptAborted reports whether an error is a timeout or cancellation,
// the two locally-recovered prompt outcomes.
func promptAborted(err error) bool {
	return errors.Is(err, ErrPromptTimeout) || errors.Is(err, ErrPromptCancelled)
}
