// Package report assembles the per-run reports and persists them as JSON
// snapshots in durable storage.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/pankaj-dahiya-devops/costwatch/internal/billing"
	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// TopServiceCount is the number of services kept in CostReport.TopServices.
const TopServiceCount = 5

// CostInput carries everything a cost report is built from.
type CostInput struct {
	Now        time.Time
	AccountID  string
	Billing    billing.Snapshot
	Thresholds models.ThresholdConfig
}

// NewCostReport builds the cost report for one run.
func NewCostReport(in CostInput) models.CostReport {
	all := in.Billing.ByService
	if all == nil {
		all = map[string]float64{}
	}
	return models.CostReport{
		ReportID:        uuid.NewString(),
		Timestamp:       in.Now.UTC(),
		AccountID:       in.AccountID,
		DailyCost:       in.Billing.DailyCost,
		WeeklyCost:      in.Billing.WeeklyCost,
		DailyThreshold:  in.Thresholds.DailyLimit,
		WeeklyThreshold: in.Thresholds.WeeklyLimit,
		TopServices:     billing.TopServices(all, TopServiceCount),
		AllServiceCosts: all,
	}
}

// CleanupInput carries everything a cleanup report is built from.
type CleanupInput struct {
	Now              time.Time
	Gates            config.CleanupConfig
	Candidates       models.Candidates
	ActionsTaken     []string
	EstimatedSavings float64
	DiscoveryErrors  map[string]string
}

// NewCleanupReport builds the cleanup report for one run. Actions are only
// carried over when the gates allowed them.
func NewCleanupReport(in CleanupInput) models.CleanupReport {
	actions := []string{}
	if in.Gates.Live() && len(in.ActionsTaken) > 0 {
		actions = append(actions, in.ActionsTaken...)
	}
	return models.CleanupReport{
		ReportID:         uuid.NewString(),
		Timestamp:        in.Now.UTC(),
		DryRun:           in.Gates.DryRun,
		CleanupEnabled:   in.Gates.Enabled,
		Candidates:       nonNil(in.Candidates),
		ActionsTaken:     actions,
		EstimatedSavings: in.EstimatedSavings,
		DiscoveryErrors:  in.DiscoveryErrors,
	}
}

// nonNil replaces nil candidate slices with empty ones so they serialise as [].
func nonNil(c models.Candidates) models.Candidates {
	if c.IdleInstances == nil {
		c.IdleInstances = []models.IdleInstance{}
	}
	if c.UnattachedVolumes == nil {
		c.UnattachedVolumes = []models.UnattachedVolume{}
	}
	if c.OldSnapshots == nil {
		c.OldSnapshots = []models.OldSnapshot{}
	}
	if c.IdleElasticIPs == nil {
		c.IdleElasticIPs = []models.IdleElasticIP{}
	}
	return c
}
