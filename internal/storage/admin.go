package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/veldrane/herald/pkg/models"
)

// AdminStore defines the persistence contract for the admin document.
type AdminStore interface {
	LoadAdmin() (*models.AdminConfig, error)
	SaveAdmin(cfg *models.AdminConfig) error
}

type fileAdminStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewAdminStore creates an AdminStore backed by admin.yaml in the given
// base directory, seeding it from the built-in template if absent.
func NewAdminStore(basePath string, logger *slog.Logger) (AdminStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path := filepath.Join(basePath, "admin.yaml")
	if err := seedTemplate(path, adminTemplate); err != nil {
		return nil, fmt.Errorf("creating admin store: %w", err)
	}
	return &fileAdminStore{path: path, logger: logger}, nil
}

func (s *fileAdminStore) LoadAdmin() (*models.AdminConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var cfg models.AdminConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %v", s.path, ErrCorrupt, err)
	}
	return &cfg, nil
}

func (s *fileAdminStore) SaveAdmin(cfg *models.AdminConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := lockFile(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("saving admin config: %w", err)
	}
	defer func() { _ = unlock() }()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling admin config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}
