package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Recognised environment variables.
const (
	EnvConfigFile      = "COSTWATCH_CONFIG"
	EnvDailyThreshold  = "DAILY_COST_THRESHOLD"
	EnvWeeklyThreshold = "WEEKLY_COST_THRESHOLD"
	EnvCPUThreshold    = "CPU_THRESHOLD"
	EnvVolumeAgeDays   = "VOLUME_AGE_DAYS"
	EnvSnapshotAgeDays = "SNAPSHOT_AGE_DAYS"
	EnvDryRun          = "DRY_RUN"
	EnvCleanupEnabled  = "CLEANUP_ENABLED"
	EnvBucket          = "S3_BUCKET"
	EnvTopicARN        = "SNS_TOPIC_ARN"
	EnvSlackSecretARN  = "SLACK_SECRET_ARN"
	EnvAccountID       = "AWS_ACCOUNT_ID"
	EnvRegion          = "AWS_REGION"
	EnvProfile         = "AWS_PROFILE"
	EnvMaxAttempts     = "AWS_MAX_ATTEMPTS"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
)

// LookupFunc matches os.LookupEnv. Tests pass a map-backed implementation.
type LookupFunc func(key string) (string, bool)

// Load builds the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds the configuration in three layers: Defaults, then the YAML
// file named by COSTWATCH_CONFIG (if set), then individual variables.
func LoadFrom(lookup LookupFunc) (Config, error) {
	cfg := Defaults()

	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	e := envReader{lookup: lookup}
	e.float(EnvDailyThreshold, &cfg.Thresholds.DailyLimit)
	e.float(EnvWeeklyThreshold, &cfg.Thresholds.WeeklyLimit)
	e.float(EnvCPUThreshold, &cfg.Thresholds.CPUIdleThresholdPercent)
	e.int(EnvVolumeAgeDays, &cfg.Thresholds.VolumeAgeDays)
	e.int(EnvSnapshotAgeDays, &cfg.Thresholds.SnapshotAgeDays)
	e.bool(EnvDryRun, &cfg.Cleanup.DryRun)
	e.bool(EnvCleanupEnabled, &cfg.Cleanup.Enabled)
	e.string(EnvBucket, &cfg.Storage.Bucket)
	e.string(EnvTopicARN, &cfg.Notifications.TopicARN)
	e.string(EnvSlackSecretARN, &cfg.Notifications.SlackSecretARN)
	e.string(EnvAccountID, &cfg.AccountID)
	e.string(EnvRegion, &cfg.AWS.Region)
	e.string(EnvProfile, &cfg.AWS.Profile)
	e.int(EnvMaxAttempts, &cfg.AWS.MaxAttempts)
	e.string(EnvLogLevel, &cfg.Log.Level)
	e.string(EnvLogFormat, &cfg.Log.Format)

	if e.err != nil {
		return Config{}, e.err
	}
	return cfg, nil
}

// loadFile overlays the YAML document at path onto cfg. Keys absent from the
// file keep their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// envReader applies environment overrides and keeps the first parse error.
// Unset and empty variables leave the target untouched.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) value(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) string(key string, dst *string) {
	if v, ok := e.value(key); ok {
		*dst = v
	}
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		e.err = fmt.Errorf("%s: invalid number %q", key, v)
		return
	}
	*dst = f
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.err = fmt.Errorf("%s: invalid integer %q", key, v)
		return
	}
	*dst = n
}

// bool accepts only "true" and "false", in any case.
func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.value(key)
	if !ok {
		return
	}
	switch strings.ToLower(v) {
	case "true":
		*dst = true
	case "false":
		*dst = false
	default:
		e.err = fmt.Errorf("%s: invalid boolean %q (want true or false)", key, v)
	}
}
