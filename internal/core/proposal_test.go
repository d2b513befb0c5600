package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veldrane/herald/pkg/models"
)

type actionFixture struct {
	*managerFixture
	actions ActionManager
}

func newActionFixture(replies ...string) *actionFixture {
	f := newManagerFixture(replies...)
	return &actionFixture{
		managerFixture: f,
		actions: NewActionManager(ActionManagerDeps{
			Store:    f.store,
			Admin:    f.admin,
			Gateway:  f.gateway,
			Prompter: f.prompter,
			Events:   f.events,
		}),
	}
}

func TestCreateAction(t *testing.T) {
	f := newActionFixture()
	d := f.seedPrepared(t)

	a, err := f.actions.CreateAction(context.Background(), d, "Knock politely", "✊")
	if err != nil {
		t.Fatalf("creating action: %v", err)
	}
	if a.State != models.ActionPublished {
		t.Errorf("facilitator actions skip review, got state %s", a.State)
	}

	stored := f.store.get(t, d.ID)
	if stored.ActionByID(a.ID) == nil {
		t.Error("action not persisted on the decision")
	}
}

func TestCreateAction_DuplicateGlyph(t *testing.T) {
	f := newActionFixture()
	d := f.seedPrepared(t)

	if _, err := f.actions.CreateAction(context.Background(), d, "Also opens the door", "🚪"); err == nil {
		t.Fatal("expected duplicate glyph to be rejected")
	}
	if f.store.updates != 0 {
		t.Error("rejected action must not be persisted")
	}
}

func TestCreateAction_PublishedDecision(t *testing.T) {
	// Once published, the message copy is fixed; direct action
	// creation must be rejected instead of silently diverging from it.
	f := newActionFixture()
	d := f.seedPublished(t, time.Hour)
	before := f.store.updates

	_, err := f.actions.CreateAction(context.Background(), d, "Knock politely", "✊")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if f.store.updates != before {
		t.Error("rejected action must not be persisted")
	}
	if len(f.store.get(t, d.ID).Actions) != 2 {
		t.Error("published decision gained an action")
	}
}

func TestProposeAction(t *testing.T) {
	f := newActionFixture()
	d := f.seedPublished(t, time.Hour)

	a, err := f.actions.ProposeAction(context.Background(), d, "Search the room", "🔎", "42")
	if err != nil {
		t.Fatalf("proposing: %v", err)
	}
	if a.State != models.ActionProposed {
		t.Errorf("expected proposed state, got %s", a.State)
	}
	if a.AuthorID != "42" {
		t.Errorf("author not recorded: %q", a.AuthorID)
	}

	// The proposal must not touch the published message.
	seeded := f.gateway.reactions[d.MessageID]
	for _, r := range seeded {
		if r.Glyph == "🔎" {
			t.Error("proposal must not add a reaction before approval")
		}
	}
	// A review request lands in the control channel.
	if len(f.gateway.sentTo("control")) != 1 {
		t.Errorf("expected review request in control channel, got %d messages", len(f.gateway.sentTo("control")))
	}
	if !f.events.has("action.proposed") {
		t.Error("expected action.proposed event")
	}
}

func TestProposeAction_UnpublishedDecision(t *testing.T) {
	f := newActionFixture()
	d := f.seedPrepared(t)

	if _, err := f.actions.ProposeAction(context.Background(), d, "Search", "🔎", "42"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReview_Approve(t *testing.T) {
	f := newActionFixture()
	d := f.seedPublished(t, time.Hour)
	a, err := f.actions.ProposeAction(context.Background(), d, "Search the room", "🔎", "42")
	if err != nil {
		t.Fatal(err)
	}

	if err := f.actions.Review(context.Background(), a.ID, true); err != nil {
		t.Fatalf("approving: %v", err)
	}

	stored := f.store.get(t, d.ID)
	got := stored.ActionByID(a.ID)
	if got == nil || got.State != models.ActionApproved {
		t.Errorf("expected approved state, got %+v", got)
	}
	// Approval attaches the glyph to the published message.
	found := false
	for _, r := range f.gateway.reactions[d.MessageID] {
		if r.Glyph == "🔎" {
			found = true
		}
	}
	if !found {
		t.Error("expected 🔎 reaction on the published message after approval")
	}
	// The proposer hears back.
	if len(f.gateway.dms["42"]) != 1 {
		t.Errorf("expected 1 dm to the proposer, got %d", len(f.gateway.dms["42"]))
	}
}

func TestReview_DenyLeavesMessageUntouched(t *testing.T) {
	f := newActionFixture()
	d := f.seedPublished(t, time.Hour)
	a, err := f.actions.ProposeAction(context.Background(), d, "Search the room", "🔎", "42")
	if err != nil {
		t.Fatal(err)
	}
	before := len(f.gateway.reactions[d.MessageID])

	if err := f.actions.Review(context.Background(), a.ID, false); err != nil {
		t.Fatalf("denying: %v", err)
	}

	stored := f.store.get(t, d.ID)
	got := stored.ActionByID(a.ID)
	if got == nil || got.State != models.ActionDenied {
		t.Errorf("expected denied state, got %+v", got)
	}
	if len(f.gateway.reactions[d.MessageID]) != before {
		t.Error("denial must leave the published message's reactions untouched")
	}
	if stored.ActionByGlyph("🔎") != nil {
		t.Error("denied action must not be displayed")
	}
	if len(f.gateway.dms["42"]) != 1 {
		t.Errorf("expected 1 dm to the proposer, got %d", len(f.gateway.dms["42"]))
	}
}

func TestReview_AlreadyReviewed(t *testing.T) {
	f := newActionFixture()
	d := f.seedPublished(t, time.Hour)
	a, err := f.actions.ProposeAction(context.Background(), d, "Search the room", "🔎", "42")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.actions.Review(context.Background(), a.ID, false); err != nil {
		t.Fatal(err)
	}

	if err := f.actions.Review(context.Background(), a.ID, true); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second review, got %v", err)
	}
}

func TestReview_UnknownAction(t *testing.T) {
	f := newActionFixture()
	if err := f.actions.Review(context.Background(), "nope", true); err == nil {
		t.Fatal("expected error for unknown action ID")
	}
}

func TestFindActions(t *testing.T) {
	f := newActionFixture()
	d := f.seedPublished(t, time.Hour)
	a, err := f.actions.ProposeAction(context.Background(), d, "Search the room", "🔎", "42")
	if err != nil {
		t.Fatal(err)
	}

	proposed, err := f.actions.Find(ActionFilter{State: models.ActionProposed})
	if err != nil {
		t.Fatal(err)
	}
	if len(proposed) != 1 || proposed[0].ID != a.ID {
		t.Errorf("state filter mismatch: %+v", proposed)
	}

	byID, err := f.actions.Find(ActionFilter{ID: a.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(byID) != 1 || byID[0].Glyph != "🔎" {
		t.Errorf("ID filter mismatch: %+v", byID)
	}
}

func TestUpdateAction(t *testing.T) {
	f := newActionFixture()
	d := f.seedPrepared(t)
	target := d.Actions[0]

	if err := f.actions.UpdateAction(context.Background(), d, target.ID, "Kick the door in", "🦵"); err != nil {
		t.Fatalf("updating action: %v", err)
	}

	stored := f.store.get(t, d.ID)
	got := stored.ActionByID(target.ID)
	if got.Description != "Kick the door in" || got.Glyph != "🦵" {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestUpdateAction_GlyphCollision(t *testing.T) {
	f := newActionFixture()
	d := f.seedPrepared(t)

	// 🏃 already belongs to the second action.
	if err := f.actions.UpdateAction(context.Background(), d, d.Actions[0].ID, "desc", "🏃"); err == nil {
		t.Fatal("expected glyph collision to be rejected")
	}
}

func TestModifyActions_CreateNew(t *testing.T) {
	f := newActionFixture("n", "Listen at the door", "👂")
	d := f.seedPrepared(t)

	if err := f.actions.ModifyActions(context.Background(), d); err != nil {
		t.Fatalf("modify actions: %v", err)
	}

	stored := f.store.get(t, d.ID)
	if stored.ActionByGlyph("👂") == nil {
		t.Error("new action not persisted")
	}
}

func TestModifyActions_EditExisting(t *testing.T) {
	f := newActionFixture("1", "Open the door slowly", "🚪")
	d := f.seedPrepared(t)

	if err := f.actions.ModifyActions(context.Background(), d); err != nil {
		t.Fatalf("modify actions: %v", err)
	}

	stored := f.store.get(t, d.ID)
	got := stored.ActionByGlyph("🚪")
	if got == nil || got.Description != "Open the door slowly" {
		t.Errorf("edit not persisted: %+v", got)
	}
}

func TestModifyActions_CancelLeavesStoreUntouched(t *testing.T) {
	f := newActionFixture()
	d := f.seedPrepared(t)
	f.prompter.err = ErrPromptCancelled

	if err := f.actions.ModifyActions(context.Background(), d); !errors.Is(err, ErrPromptCancelled) {
		t.Fatalf("expected ErrPromptCancelled, got %v", err)
	}
	if f.store.updates != 0 {
		t.Error("cancelled edit must not write to the store")
	}
}
