package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// Config is the top-level application configuration.
// It is built once per process by Load and passed by value into every
// component; nothing reads the environment after that.
type Config struct {
	// AccountID is the account under watch. When empty it is resolved via STS.
	AccountID string `yaml:"account_id" json:"account_id"`

	Thresholds    models.ThresholdConfig `yaml:"thresholds"    json:"thresholds"`
	Cleanup       CleanupConfig          `yaml:"cleanup"       json:"cleanup"`
	Storage       StorageConfig          `yaml:"storage"       json:"storage"`
	Notifications NotificationConfig     `yaml:"notifications" json:"notifications"`
	AWS           AWSConfig              `yaml:"aws"           json:"aws"`
	Log           LogConfig              `yaml:"log"           json:"log"`
}

// CleanupConfig holds the two independent cleanup gates.
type CleanupConfig struct {
	// DryRun, when true, lets discovery and reporting run but issues no
	// mutating action.
	DryRun bool `yaml:"dry_run" json:"dry_run"`

	// Enabled is the master switch. When false idle-instance discovery is
	// skipped and no action is ever issued.
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Live reports whether mutating actions may be issued.
func (c CleanupConfig) Live() bool {
	return c.Enabled && !c.DryRun
}

// StorageConfig names the durable report location.
type StorageConfig struct {
	Bucket string `yaml:"bucket" json:"bucket"`
}

// NotificationConfig names the notification channel and the chat secret.
type NotificationConfig struct {
	TopicARN string `yaml:"topic_arn" json:"topic_arn"`

	// SlackSecretARN references a secret holding {"webhook_url": "..."}.
	// Only the chat adapter reads it.
	SlackSecretARN string `yaml:"slack_secret_arn" json:"slack_secret_arn"`
}

// AWSConfig holds SDK-level settings.
type AWSConfig struct {
	Region  string `yaml:"region"  json:"region"`
	Profile string `yaml:"profile" json:"profile"`

	// MaxAttempts bounds the SDK retryer, including the first attempt.
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is a zerolog level name ("debug", "info", ...).
	Level string `yaml:"level" json:"level"`

	// Format is "json" or "console".
	Format string `yaml:"format" json:"format"`
}

// Defaults returns the configuration used before any file or environment
// override is applied.
func Defaults() Config {
	return Config{
		Thresholds: models.ThresholdConfig{
			CPUIdleThresholdPercent: 5,
			VolumeAgeDays:           30,
			SnapshotAgeDays:         90,
		},
		Cleanup: CleanupConfig{
			DryRun:  true,
			Enabled: false,
		},
		AWS: AWSConfig{
			MaxAttempts: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ValidateCost checks the keys required by the cost monitor.
func (c Config) ValidateCost() error {
	var errs []error
	if !(c.Thresholds.DailyLimit > 0) || math.IsInf(c.Thresholds.DailyLimit, 0) {
		errs = append(errs, fmt.Errorf("%s must be a positive finite amount", EnvDailyThreshold))
	}
	if !(c.Thresholds.WeeklyLimit > 0) || math.IsInf(c.Thresholds.WeeklyLimit, 0) {
		errs = append(errs, fmt.Errorf("%s must be a positive finite amount", EnvWeeklyThreshold))
	}
	errs = append(errs, c.validateShared()...)
	return errors.Join(errs...)
}

// ValidateCleanup checks the keys required by the resource cleanup.
func (c Config) ValidateCleanup() error {
	var errs []error
	// NaN fails both comparisons below, so the range is stated positively.
	if cpu := c.Thresholds.CPUIdleThresholdPercent; !(cpu >= 0 && cpu <= 100) {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 100", EnvCPUThreshold))
	}
	if c.Thresholds.VolumeAgeDays < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvVolumeAgeDays))
	}
	if c.Thresholds.SnapshotAgeDays < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", EnvSnapshotAgeDays))
	}
	errs = append(errs, c.validateShared()...)
	return errors.Join(errs...)
}

func (c Config) validateShared() []error {
	var errs []error
	if c.Storage.Bucket == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvBucket))
	}
	if c.Notifications.TopicARN == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvTopicARN))
	}
	return errs
}
