package observability

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookNotifier_Announce(t *testing.T) {
	var received webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshalling webhook payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Announce("The people have spoken.", "🚪: Open the door"); err != nil {
		t.Fatalf("announcing: %v", err)
	}

	if len(received.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(received.Blocks))
	}
	if received.Blocks[0].Type != "header" || received.Blocks[0].Text.Text != "The people have spoken." {
		t.Errorf("header block mismatch: %+v", received.Blocks[0])
	}
	if received.Blocks[1].Type != "section" || received.Blocks[1].Text.Text != "🚪: Open the door" {
		t.Errorf("section block mismatch: %+v", received.Blocks[1])
	}
}

func TestWebhookNotifier_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Announce("title", "text"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestWebhookNotifier_Unreachable(t *testing.T) {
	n := NewWebhookNotifier("http://127.0.0.1:1/hook")
	if err := n.Announce("title", "text"); err == nil {
		t.Fatal("expected error for unreachable webhook")
	}
}
