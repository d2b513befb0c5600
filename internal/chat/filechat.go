package chat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"gopkg.in/yaml.v3"
)

// fileGateway implements Gateway using directories as channels and one
// YAML file per message. Reactions are stored as an ordered list so the
// first-seen contract holds across reads.
type fileGateway struct {
	baseDir string
}

// NewFileGateway creates a file-backed Gateway rooted at baseDir.
// Channel messages live under baseDir/channels/<name>/ and direct
// messages under baseDir/dm/<user>/.
func NewFileGateway(baseDir string) (Gateway, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("creating file gateway: base dir is empty")
	}
	for _, dir := range []string{
		filepath.Join(baseDir, "channels"),
		filepath.Join(baseDir, "dm"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating gateway directory %s: %w", dir, err)
		}
	}
	return &fileGateway{baseDir: baseDir}, nil
}

// messageFile is the on-disk representation of one delivered message.
type messageFile struct {
	ID        string          `yaml:"id"`
	Title     string          `yaml:"title"`
	Body      string          `yaml:"body"`
	Posted    string          `yaml:"posted"`
	Reactions []ReactionCount `yaml:"reactions,omitempty"`
}

func (g *fileGateway) channelDir(channel string) string {
	return filepath.Join(g.baseDir, "channels", channel)
}

func (g *fileGateway) messagePath(channel, messageID string) string {
	return filepath.Join(g.channelDir(channel), messageID+".yaml")
}

func (g *fileGateway) Send(ctx context.Context, channel string, msg Outgoing) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if channel == "" {
		return "", fmt.Errorf("sending message: channel is empty")
	}
	if err := os.MkdirAll(g.channelDir(channel), 0o755); err != nil {
		return "", fmt.Errorf("creating channel %s: %w", channel, err)
	}

	mf := messageFile{
		ID:     shortuuid.New(),
		Title:  msg.Title,
		Body:   msg.Body,
		Posted: time.Now().UTC().Format(time.RFC3339),
	}
	if err := g.writeMessage(channel, &mf); err != nil {
		return "", fmt.Errorf("sending message to %s: %w", channel, err)
	}
	return mf.ID, nil
}

func (g *fileGateway) React(ctx context.Context, channel, messageID, glyph string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mf, err := g.readMessage(channel, messageID)
	if err != nil {
		return fmt.Errorf("reacting to message %s: %w", messageID, err)
	}
	for i := range mf.Reactions {
		if mf.Reactions[i].Glyph == glyph {
			mf.Reactions[i].Count++
			return g.writeMessage(channel, mf)
		}
	}
	mf.Reactions = append(mf.Reactions, ReactionCount{Glyph: glyph, Count: 1})
	return g.writeMessage(channel, mf)
}

func (g *fileGateway) Reactions(ctx context.Context, channel, messageID string) ([]ReactionCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mf, err := g.readMessage(channel, messageID)
	if err != nil {
		return nil, fmt.Errorf("reading reactions on %s: %w", messageID, err)
	}
	return mf.Reactions, nil
}

func (g *fileGateway) DirectMessage(ctx context.Context, userID string, msg Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("sending direct message: user ID is empty")
	}
	dir := filepath.Join(g.baseDir, "dm", userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dm directory for %s: %w", userID, err)
	}
	mf := messageFile{
		ID:     shortuuid.New(),
		Title:  msg.Title,
		Body:   msg.Body,
		Posted: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := yaml.Marshal(&mf)
	if err != nil {
		return fmt.Errorf("marshalling direct message: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, mf.ID+".yaml"), data, 0o644)
}

func (g *fileGateway) readMessage(channel, messageID string) (*messageFile, error) {
	data, err := os.ReadFile(g.messagePath(channel, messageID))
	if err != nil {
		return nil, err
	}
	var mf messageFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing message file: %w", err)
	}
	return &mf, nil
}

func (g *fileGateway) writeMessage(channel string, mf *messageFile) error {
	data, err := yaml.Marshal(mf)
	if err != nil {
		return fmt.Errorf("marshalling message: %w", err)
	}
	return os.WriteFile(g.messagePath(channel, mf.ID), data, 0o644)
}
