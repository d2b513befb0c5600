package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/veldrane/herald/internal/core"
)

// stdinPrompter implements core.Prompter against an input stream,
// normally stdin. A single reader goroutine feeds replies line by line
// so consecutive prompts never compete for input. A reply outside the
// accepted token set is re-prompted until the timeout elapses.
type stdinPrompter struct {
	in      *bufio.Reader
	out     io.Writer
	timeout time.Duration

	once  sync.Once
	lines chan reply
	errs  chan error
}

// reply is one line of input with the moment it was read, so a prompt
// can tell fresh replies from ones typed before it started.
type reply struct {
	text string
	at   time.Time
}

// NewStdinPrompter creates a Prompter reading from stdin and writing
// to stdout. A non-positive timeout falls back to the default.
func NewStdinPrompter(timeout time.Duration) core.Prompter {
	return NewPrompter(os.Stdin, os.Stdout, timeout)
}

// NewPrompter creates a Prompter over arbitrary streams.
func NewPrompter(in io.Reader, out io.Writer, timeout time.Duration) core.Prompter {
	if timeout <= 0 {
		timeout = core.DefaultPromptTimeout
	}
	return &stdinPrompter{
		in:      bufio.NewReader(in),
		out:     out,
		timeout: timeout,
		lines:   make(chan reply, 8),
		errs:    make(chan error, 1),
	}
}

func (p *stdinPrompter) readLoop() {
	for {
		line, err := p.in.ReadString('\n')
		if err != nil {
			p.errs <- err
			return
		}
		p.lines <- reply{text: strings.TrimSpace(line), at: time.Now()}
	}
}

func (p *stdinPrompter) Prompt(ctx context.Context, req core.PromptRequest) (string, error) {
	p.once.Do(func() { go p.readLoop() })

	// Replies read before this prompt started belong to a prompt
	// that already timed out. They are discarded, not answered with.
	start := time.Now()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = p.timeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	if req.Title != "" {
		fmt.Fprintf(p.out, "== %s ==\n", req.Title)
	}
	fmt.Fprintln(p.out, req.Question)

	for {
		var r reply
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-deadline.C:
			fmt.Fprintln(p.out, "Selection timed out or was canceled.")
			return "", core.ErrPromptTimeout
		case err := <-p.errs:
			// Lines queued before the reader stopped still count as
			// replies; drain them before surfacing the error.
			select {
			case r = <-p.lines:
				p.errs <- err
			default:
				if errors.Is(err, io.EOF) {
					return "", core.ErrPromptTimeout
				}
				return "", fmt.Errorf("reading reply: %w", err)
			}
		case r = <-p.lines:
		}
		if r.at.Before(start) {
			continue
		}
		line := r.text
		if strings.EqualFold(line, core.CancelToken) {
			fmt.Fprintln(p.out, "Selection timed out or was canceled.")
			return "", core.ErrPromptCancelled
		}
		if len(req.Options) == 0 {
			if line == "" {
				continue
			}
			return line, nil
		}
		for _, opt := range req.Options {
			if strings.EqualFold(line, opt) {
				return strings.ToLower(line), nil
			}
		}
		// Replies outside the option set are ignored, the way a
		// bot ignores unrelated messages in a busy channel.
	}
}
