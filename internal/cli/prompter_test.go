package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/veldrane/herald/internal/core"
)

func TestPrompter_FreeText(t *testing.T) {
	p := NewPrompter(strings.NewReader("The party stands before an iron door.\n"), io.Discard, time.Second)

	got, err := p.Prompt(context.Background(), core.PromptRequest{Question: "What is the body?"})
	if err != nil {
		t.Fatalf("prompting: %v", err)
	}
	if got != "The party stands before an iron door." {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestPrompter_OptionMatching(t *testing.T) {
	// Noise replies outside the option set are ignored until a match.
	p := NewPrompter(strings.NewReader("maybe\nfive\n2\n"), io.Discard, time.Second)

	got, err := p.Prompt(context.Background(), core.PromptRequest{
		Question: "Pick one",
		Options:  []string{"1", "2", "3"},
	})
	if err != nil {
		t.Fatalf("prompting: %v", err)
	}
	if got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
}

func TestPrompter_CaseInsensitiveOptions(t *testing.T) {
	p := NewPrompter(strings.NewReader("Y\n"), io.Discard, time.Second)

	got, err := p.Prompt(context.Background(), core.PromptRequest{
		Question: "Publish?",
		Options:  []string{"y", "n"},
	})
	if err != nil {
		t.Fatalf("prompting: %v", err)
	}
	if got != "y" {
		t.Errorf("expected normalized y, got %q", got)
	}
}

func TestPrompter_Cancel(t *testing.T) {
	p := NewPrompter(strings.NewReader("c\n"), io.Discard, time.Second)

	_, err := p.Prompt(context.Background(), core.PromptRequest{
		Question: "Pick one",
		Options:  []string{"1", "2"},
	})
	if !errors.Is(err, core.ErrPromptCancelled) {
		t.Fatalf("expected ErrPromptCancelled, got %v", err)
	}
}

func TestPrompter_Timeout(t *testing.T) {
	// A reader that never delivers a line.
	pr, _ := io.Pipe()
	p := NewPrompter(pr, io.Discard, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Prompt(context.Background(), core.PromptRequest{Question: "Anyone there?"})
	if !errors.Is(err, core.ErrPromptTimeout) {
		t.Fatalf("expected ErrPromptTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout took far longer than configured")
	}
}

func TestPrompter_StaleReplyDiscarded(t *testing.T) {
	// A reply typed after one prompt times out must not be delivered
	// as the answer to the next prompt.
	pr, pw := io.Pipe()
	p := NewPrompter(pr, io.Discard, 20*time.Millisecond)

	_, err := p.Prompt(context.Background(), core.PromptRequest{Question: "First question"})
	if !errors.Is(err, core.ErrPromptTimeout) {
		t.Fatalf("expected first prompt to time out, got %v", err)
	}

	// The late reply to the first prompt arrives now.
	go pw.Write([]byte("y\n"))
	time.Sleep(20 * time.Millisecond)

	_, err = p.Prompt(context.Background(), core.PromptRequest{
		Question: "Publish?",
		Options:  []string{"y", "n"},
	})
	if !errors.Is(err, core.ErrPromptTimeout) {
		t.Fatalf("stale reply answered the second prompt: got %v", err)
	}

	// A reply typed while the prompt is live is still accepted.
	done := make(chan struct{})
	go func() {
		time.Sleep(5 * time.Millisecond)
		pw.Write([]byte("n\n"))
		close(done)
	}()
	got, err := p.Prompt(context.Background(), core.PromptRequest{
		Question: "Publish?",
		Options:  []string{"y", "n"},
		Timeout:  time.Second,
	})
	<-done
	if err != nil {
		t.Fatalf("prompting: %v", err)
	}
	if got != "n" {
		t.Errorf("expected n, got %q", got)
	}
}

func TestPrompter_EOFTreatedAsTimeout(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard, time.Second)

	_, err := p.Prompt(context.Background(), core.PromptRequest{Question: "Anyone there?"})
	if !errors.Is(err, core.ErrPromptTimeout) {
		t.Fatalf("expected ErrPromptTimeout on EOF, got %v", err)
	}
}

func TestPrompter_RequestTimeoutOverride(t *testing.T) {
	pr, _ := io.Pipe()
	p := NewPrompter(pr, io.Discard, time.Hour)

	start := time.Now()
	_, err := p.Prompt(context.Background(), core.PromptRequest{
		Question: "Quick one",
		Timeout:  20 * time.Millisecond,
	})
	if !errors.Is(err, core.ErrPromptTimeout) {
		t.Fatalf("expected ErrPromptTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("per-request timeout not honored")
	}
}

func TestPrompter_ContextCancellation(t *testing.T) {
	pr, _ := io.Pipe()
	p := NewPrompter(pr, io.Discard, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Prompt(ctx, core.PromptRequest{Question: "Waiting"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
