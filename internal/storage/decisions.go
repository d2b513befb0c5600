// Package storage persists Herald's two documents, the decision
// collection and the admin configuration, as YAML files seeded from
// fixed templates on first use.
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/veldrane/herald/pkg/models"
)

// ErrNotFound is returned when a document or an entry within one does
// not exist.
var ErrNotFound = errors.New("not found")

// ErrCorrupt is returned when a backing document exists but cannot be
// parsed. Operations hitting it must not overwrite the document.
var ErrCorrupt = errors.New("corrupt document")

// DecisionDocument is the top-level structure of decisions.yaml. The
// version counter is bumped on every write so concurrent overwrites
// can be detected rather than silently clobbered.
type DecisionDocument struct {
	Version   int               `yaml:"version"`
	Decisions []models.Decision `yaml:"decisions"`
}

// DecisionStore defines the persistence contract for the decision
// collection. UpdateDecision is the canonical mutation primitive: it
// re-reads the collection under the document lock, replaces the entry
// with a matching ID, and writes the whole collection back.
type DecisionStore interface {
	Load() (*DecisionDocument, error)
	Save(doc *DecisionDocument) error
	AppendDecision(d models.Decision) error
	UpdateDecision(d models.Decision) error
}

type fileDecisionStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewDecisionStore creates a DecisionStore backed by decisions.yaml in
// the given base directory, seeding it from the built-in template if
// it does not exist yet.
func NewDecisionStore(basePath string, logger *slog.Logger) (DecisionStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path := filepath.Join(basePath, "decisions.yaml")
	if err := seedTemplate(path, decisionsTemplate); err != nil {
		return nil, fmt.Errorf("creating decision store: %w", err)
	}
	return &fileDecisionStore{path: path, logger: logger}, nil
}

// Load reads and parses the decisions document.
func (s *fileDecisionStore) Load() (*DecisionDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Save overwrites the whole decisions document. If the on-disk version
// no longer matches the version the caller loaded, the lost update is
// logged before the write proceeds; last writer wins.
func (s *fileDecisionStore) Save(doc *DecisionDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("saving decisions: %w", err)
	}
	defer func() { _ = unlock() }()

	if current, err := s.read(); err == nil && current.Version != doc.Version {
		s.logger.Warn("concurrent update detected, last writer wins",
			"document", "decisions",
			"loaded_version", doc.Version,
			"disk_version", current.Version)
		doc.Version = current.Version
	}
	return s.write(doc)
}

// AppendDecision adds a new decision to the collection in a single
// locked read-modify-write cycle.
func (s *fileDecisionStore) AppendDecision(d models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("appending decision: %w", err)
	}
	defer func() { _ = unlock() }()

	doc, err := s.read()
	if err != nil {
		return fmt.Errorf("appending decision: %w", err)
	}
	doc.Decisions = append(doc.Decisions, d)
	return s.write(doc)
}

// UpdateDecision replaces the stored decision with a matching ID. A
// missing ID is logged and the update discarded; the on-disk document
// is left untouched.
func (s *fileDecisionStore) UpdateDecision(d models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("updating decision %s: %w", d.ID, err)
	}
	defer func() { _ = unlock() }()

	doc, err := s.read()
	if err != nil {
		return fmt.Errorf("updating decision %s: %w", d.ID, err)
	}
	for i := range doc.Decisions {
		if doc.Decisions[i].ID == d.ID {
			doc.Decisions[i] = d
			return s.write(doc)
		}
	}
	s.logger.Warn("decision to replace not found, discarding update", "id", d.ID)
	return nil
}

func (s *fileDecisionStore) read() (*DecisionDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var doc DecisionDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %v", s.path, ErrCorrupt, err)
	}
	return &doc, nil
}

func (s *fileDecisionStore) write(doc *DecisionDocument) error {
	doc.Version++
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling decisions: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// seedTemplate writes the template content to path if no file exists
// there yet.
func seedTemplate(path, template string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
