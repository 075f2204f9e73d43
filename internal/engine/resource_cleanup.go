package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/notify"
	"github.com/pankaj-dahiya-devops/costwatch/internal/report"
	"github.com/pankaj-dahiya-devops/costwatch/internal/savings"
	"github.com/pankaj-dahiya-devops/costwatch/internal/scanner"
)

// ResourceCleanupConfig is the slice of configuration the cleanup reads.
type ResourceCleanupConfig struct {
	Bucket     string
	Thresholds models.ThresholdConfig
	Gates      config.CleanupConfig
}

// CleanupResult is what a cleanup run produced.
type CleanupResult struct {
	Report models.CleanupReport
	// Savings breaks EstimatedSavings down per candidate kind.
	Savings savings.Breakdown
	Saved   bool
}

// ResourceCleanup discovers idle resources, estimates their cost, applies
// gated actions, persists the report and sends one summary.
type ResourceCleanup struct {
	cfg        ResourceCleanupConfig
	discoverer Discoverer
	remediator Remediator
	saver      ReportSaver
	sender     Sender
	now        func() time.Time
	log        zerolog.Logger
	barrier    boundary
}

// NewResourceCleanup wires a ResourceCleanup.
func NewResourceCleanup(
	cfg ResourceCleanupConfig,
	discoverer Discoverer,
	remediator Remediator,
	saver ReportSaver,
	sender Sender,
	log zerolog.Logger,
) *ResourceCleanup {
	log = log.With().Str("component", "resource_cleanup").Logger()
	return &ResourceCleanup{
		cfg:        cfg,
		discoverer: discoverer,
		remediator: remediator,
		saver:      saver,
		sender:     sender,
		now:        time.Now,
		log:        log,
		barrier: boundary{
			pipeline: "resource cleanup",
			subject:  notify.SubjectCleanupError,
			sender:   sender,
			log:      log,
		},
	}
}

// Run executes one cleanup pass. Discovery failures are per check and end up
// in the report; action, persistence and notification failures are logged.
// Only a panic reaches the error boundary.
func (c *ResourceCleanup) Run(ctx context.Context) (res *CleanupResult, err error) {
	defer c.barrier.guard(ctx, &err)

	now := c.now().UTC()
	gates := c.cfg.Gates
	c.log.Info().Bool("dry_run", gates.DryRun).Bool("cleanup_enabled", gates.Enabled).Msg("starting resource cleanup")

	found := c.discoverer.Scan(ctx, scanner.Options{
		Now:              now,
		Thresholds:       c.cfg.Thresholds,
		IncludeInstances: gates.Enabled,
	})
	breakdown := savings.EstimateBreakdown(found.Candidates)
	actions := c.remediator.Execute(ctx, found.Candidates, gates)

	rep := report.NewCleanupReport(report.CleanupInput{
		Now:              now,
		Gates:            gates,
		Candidates:       found.Candidates,
		ActionsTaken:     actions,
		EstimatedSavings: breakdown.Total,
		DiscoveryErrors:  found.ErrorMessages(),
	})
	saved := c.saver.Save(ctx, report.KindCleanup, now, rep) == nil

	location := report.Location(c.cfg.Bucket, report.KindCleanup, now)
	sent := c.sender.Send(ctx, notify.CleanupSummary(rep, location))

	c.log.Info().
		Str("report_id", rep.ReportID).
		Int("candidates", rep.Candidates.Total()).
		Int("actions_taken", len(rep.ActionsTaken)).
		Float64("estimated_savings", rep.EstimatedSavings).
		Bool("saved", saved).
		Int("notifications_sent", sent).
		Msg("resource cleanup completed")

	return &CleanupResult{Report: rep, Savings: breakdown, Saved: saved}, nil
}
