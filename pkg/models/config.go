package models

import "time"

// GlobalConfig holds system-wide settings read from .heraldconfig via Viper.
type GlobalConfig struct {
	DataDir               string        `yaml:"data_dir" mapstructure:"data_dir"`
	SchedulerInterval     time.Duration `yaml:"scheduler_interval" mapstructure:"scheduler_interval"`
	PromptTimeout         time.Duration `yaml:"prompt_timeout" mapstructure:"prompt_timeout"`
	DefaultResolveMinutes int           `yaml:"default_resolve_minutes" mapstructure:"default_resolve_minutes"`
	WebhookURL            string        `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`
}
