package chat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/veldrane/herald/pkg/models"
)

func newTestGateway(t *testing.T) (Gateway, string) {
	t.Helper()
	dir := t.TempDir()
	g, err := NewFileGateway(dir)
	if err != nil {
		t.Fatalf("creating file gateway: %v", err)
	}
	return g, dir
}

func TestSendAndReactions(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	id, err := g.Send(ctx, "votes", Outgoing{Title: "Open the door?", Body: "body"})
	if err != nil {
		t.Fatalf("sending: %v", err)
	}
	if id == "" {
		t.Fatal("expected a message ID")
	}

	tallies, err := g.Reactions(ctx, "votes", id)
	if err != nil {
		t.Fatalf("reading reactions: %v", err)
	}
	if len(tallies) != 0 {
		t.Errorf("expected no reactions on a fresh message, got %v", tallies)
	}
}

func TestReact_PreservesFirstSeenOrder(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	id, err := g.Send(ctx, "votes", Outgoing{Title: "t", Body: "b"})
	if err != nil {
		t.Fatal(err)
	}

	// 🚪 arrives first, then 🏃, then more 🚪 votes.
	for _, glyph := range []string{"🚪", "🏃", "🚪", "🚪"} {
		if err := g.React(ctx, "votes", id, glyph); err != nil {
			t.Fatalf("reacting with %s: %v", glyph, err)
		}
	}

	tallies, err := g.Reactions(ctx, "votes", id)
	if err != nil {
		t.Fatal(err)
	}
	want := []ReactionCount{{Glyph: "🚪", Count: 3}, {Glyph: "🏃", Count: 1}}
	if len(tallies) != len(want) {
		t.Fatalf("expected %d tallies, got %d", len(want), len(tallies))
	}
	for i := range want {
		if tallies[i] != want[i] {
			t.Errorf("tally %d: got %+v, want %+v", i, tallies[i], want[i])
		}
	}
}

func TestReact_UnknownMessage(t *testing.T) {
	g, _ := newTestGateway(t)
	if err := g.React(context.Background(), "votes", "missing", "🚪"); err == nil {
		t.Fatal("expected error for unknown message")
	}
}

func TestDirectMessage(t *testing.T) {
	g, dir := newTestGateway(t)

	if err := g.DirectMessage(context.Background(), "player-42", Outgoing{Title: "t", Body: "b"}); err != nil {
		t.Fatalf("sending dm: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "dm", "player-42"))
	if err != nil {
		t.Fatalf("reading dm directory: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 dm file, got %d", len(entries))
	}
}

func TestSend_CancelledContext(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Send(ctx, "votes", Outgoing{Title: "t", Body: "b"}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRenderDecision(t *testing.T) {
	d, _ := models.NewDecision("Open the door?", "The party stands before an iron door.")
	open, _ := models.NewAction("🚪", "Open the door", models.ActionPublished)
	run, _ := models.NewAction("🏃", "Run away", models.ActionPublished)
	hidden, _ := models.NewAction("🔎", "Search the room", models.ActionProposed)
	for _, a := range []*models.Action{open, run, hidden} {
		if err := d.AppendAction(*a); err != nil {
			t.Fatal(err)
		}
	}

	msg := RenderDecision(d)
	if msg.Title != "Open the door?" {
		t.Errorf("title mismatch: %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "**Open the door?**") {
		t.Errorf("body missing bold title:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, "🚪 = Open the door") || !strings.Contains(msg.Body, "🏃 = Run away") {
		t.Errorf("body missing displayed actions:\n%s", msg.Body)
	}
	if strings.Contains(msg.Body, "🔎") {
		t.Errorf("body must not show unreviewed proposals:\n%s", msg.Body)
	}
}
