package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/veldrane/herald/pkg/models"
)

// ConfigurationManager loads and validates the .heraldconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .heraldconfig relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible
// defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		SchedulerInterval:     DefaultSchedulerInterval,
		PromptTimeout:         DefaultPromptTimeout,
		DefaultResolveMinutes: 120,
	}
}

// LoadGlobalConfig reads the .heraldconfig file from the base path.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".heraldconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("scheduler.interval", cfg.SchedulerInterval.String())
	v.SetDefault("prompt.timeout", cfg.PromptTimeout.String())
	v.SetDefault("publish.default_resolve_minutes", cfg.DefaultResolveMinutes)
	v.SetDefault("notifications.webhook_url", cfg.WebhookURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .heraldconfig: %w", err)
	}

	cfg.DataDir = v.GetString("data_dir")
	cfg.DefaultResolveMinutes = v.GetInt("publish.default_resolve_minutes")
	cfg.WebhookURL = v.GetString("notifications.webhook_url")

	if raw := v.GetString("scheduler.interval"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing scheduler.interval %q: %w", raw, err)
		}
		cfg.SchedulerInterval = d
	}
	if raw := v.GetString("prompt.timeout"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing prompt.timeout %q: %w", raw, err)
		}
		cfg.PromptTimeout = d
	}

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and
// returns a clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.SchedulerInterval < MinSchedulerInterval || cfg.SchedulerInterval > MaxSchedulerInterval {
		errs = append(errs, fmt.Sprintf(
			"scheduler.interval %s is invalid, must be between %s and %s",
			cfg.SchedulerInterval, MinSchedulerInterval, MaxSchedulerInterval,
		))
	}

	if cfg.PromptTimeout <= 0 {
		errs = append(errs, fmt.Sprintf(
			"prompt.timeout %s is invalid, must be positive", cfg.PromptTimeout,
		))
	}

	if cfg.DefaultResolveMinutes < 0 {
		errs = append(errs, fmt.Sprintf(
			"publish.default_resolve_minutes %d is invalid, must be non-negative",
			cfg.DefaultResolveMinutes,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
