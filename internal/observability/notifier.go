package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Notifier sends resolution announcements to an external channel.
type Notifier interface {
	Announce(title, text string) error
}

// webhookNotifier posts Slack-style block messages to a webhook URL.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a Notifier that posts announcements to
// the given webhook URL.
func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type webhookMessage struct {
	Blocks []webhookBlock `json:"blocks"`
}

type webhookBlock struct {
	Type string       `json:"type"`
	Text *webhookText `json:"text,omitempty"`
}

type webhookText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Announce posts a single announcement with a header block and a
// section body.
func (n *webhookNotifier) Announce(title, text string) error {
	msg := webhookMessage{
		Blocks: []webhookBlock{
			{
				Type: "header",
				Text: &webhookText{Type: "plain_text", Text: title},
			},
			{
				Type: "section",
				Text: &webhookText{Type: "mrkdwn", Text: text},
			},
		},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling webhook message: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
