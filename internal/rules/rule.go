// Package rules classifies raw inventory records into cleanup candidates.
// Every function here is pure: rules never call a cloud API, read the clock
// or keep state between calls.
package rules

import (
	"time"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// RuleContext carries the inputs shared by every rule in one scan.
type RuleContext struct {
	// Now is the reference time for age calculations.
	Now time.Time

	// Thresholds holds the configured idle and age limits.
	Thresholds models.ThresholdConfig
}

// cutoff returns the instant that a resource must be strictly older than to
// exceed an age limit of days.
func (c RuleContext) cutoff(days int) time.Time {
	return c.Now.AddDate(0, 0, -days)
}

// AgeDays returns the number of whole days between t and now.
func AgeDays(now, t time.Time) int {
	if t.After(now) {
		return 0
	}
	return int(now.Sub(t).Hours() / 24)
}

// copyTags returns a copy of tags so candidates never share a map with the
// record they were built from.
func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	m := make(map[string]string, len(tags))
	for k, v := range tags {
		m[k] = v
	}
	return m
}
