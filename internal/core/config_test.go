package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/veldrane/herald/pkg/models"
)

func TestLoadGlobalConfig_Defaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if cfg.SchedulerInterval != DefaultSchedulerInterval {
		t.Errorf("expected default interval %s, got %s", DefaultSchedulerInterval, cfg.SchedulerInterval)
	}
	if cfg.PromptTimeout != DefaultPromptTimeout {
		t.Errorf("expected default timeout %s, got %s", DefaultPromptTimeout, cfg.PromptTimeout)
	}
	if cfg.DefaultResolveMinutes != 120 {
		t.Errorf("expected 120 default resolve minutes, got %d", cfg.DefaultResolveMinutes)
	}
}

func TestLoadGlobalConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `data_dir: /var/lib/herald
scheduler:
  interval: 10s
prompt:
  timeout: 45s
publish:
  default_resolve_minutes: 30
notifications:
  webhook_url: https://hooks.example.com/T123
`
	if err := os.WriteFile(filepath.Join(dir, ".heraldconfig"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if cfg.DataDir != "/var/lib/herald" {
		t.Errorf("data_dir mismatch: %q", cfg.DataDir)
	}
	if cfg.SchedulerInterval != 10*time.Second {
		t.Errorf("interval mismatch: %s", cfg.SchedulerInterval)
	}
	if cfg.PromptTimeout != 45*time.Second {
		t.Errorf("timeout mismatch: %s", cfg.PromptTimeout)
	}
	if cfg.DefaultResolveMinutes != 30 {
		t.Errorf("resolve minutes mismatch: %d", cfg.DefaultResolveMinutes)
	}
	if cfg.WebhookURL != "https://hooks.example.com/T123" {
		t.Errorf("webhook mismatch: %q", cfg.WebhookURL)
	}
}

func TestLoadGlobalConfig_BadDuration(t *testing.T) {
	dir := t.TempDir()
	content := "scheduler:\n  interval: soonish\n"
	if err := os.WriteFile(filepath.Join(dir, ".heraldconfig"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewConfigurationManager(dir).LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestValidateConfig(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	good := &models.GlobalConfig{
		SchedulerInterval:     5 * time.Second,
		PromptTimeout:         30 * time.Second,
		DefaultResolveMinutes: 120,
	}
	if err := cm.ValidateConfig(good); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	bad := &models.GlobalConfig{
		SchedulerInterval:     time.Hour,
		PromptTimeout:         -time.Second,
		DefaultResolveMinutes: -1,
	}
	err := cm.ValidateConfig(bad)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	// Every problem is reported, not just the first.
	for _, want := range []string{"scheduler.interval", "prompt.timeout", "default_resolve_minutes"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation message missing %q:\n%s", want, err)
		}
	}

	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
