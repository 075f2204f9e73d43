package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/notify"
	"github.com/pankaj-dahiya-devops/costwatch/internal/report"
	"github.com/pankaj-dahiya-devops/costwatch/internal/threshold"
)

// CostMonitorConfig is the slice of configuration the cost monitor reads.
type CostMonitorConfig struct {
	AccountID  string
	Bucket     string
	Thresholds models.ThresholdConfig
}

// CostResult is what a successful cost run produced.
type CostResult struct {
	Report   models.CostReport
	Decision threshold.Decision
	// Saved is false when the report could not be persisted.
	Saved bool
}

// CostMonitor reads billing, evaluates thresholds, persists the report and
// routes either alerts or a summary.
type CostMonitor struct {
	cfg     CostMonitorConfig
	source  CostSource
	saver   ReportSaver
	sender  Sender
	now     func() time.Time
	log     zerolog.Logger
	barrier boundary
}

// NewCostMonitor wires a CostMonitor.
func NewCostMonitor(cfg CostMonitorConfig, source CostSource, saver ReportSaver, sender Sender, log zerolog.Logger) *CostMonitor {
	log = log.With().Str("component", "cost_monitor").Logger()
	return &CostMonitor{
		cfg:    cfg,
		source: source,
		saver:  saver,
		sender: sender,
		now:    time.Now,
		log:    log,
		barrier: boundary{
			pipeline: "cost monitoring",
			subject:  notify.SubjectCostError,
			sender:   sender,
			log:      log,
		},
	}
}

// Run executes one cost monitoring pass. A billing failure aborts the run;
// persistence and notification failures are logged and do not.
func (m *CostMonitor) Run(ctx context.Context) (res *CostResult, err error) {
	defer m.barrier.guard(ctx, &err)

	now := m.now().UTC()
	snap, err := m.source.Snapshot(ctx, now)
	if err != nil {
		return nil, err
	}
	m.log.Info().
		Float64("daily_cost", snap.DailyCost).
		Float64("weekly_cost", snap.WeeklyCost).
		Int("services", len(snap.ByService)).
		Msg("billing read")

	rep := report.NewCostReport(report.CostInput{
		Now:        now,
		AccountID:  m.cfg.AccountID,
		Billing:    *snap,
		Thresholds: m.cfg.Thresholds,
	})
	saved := m.saver.Save(ctx, report.KindCost, now, rep) == nil

	decision := threshold.Evaluate(rep.DailyCost, rep.WeeklyCost, m.cfg.Thresholds.DailyLimit, m.cfg.Thresholds.WeeklyLimit)
	location := report.Location(m.cfg.Bucket, report.KindCost, now)

	var notes []models.Notification
	if decision.Summary {
		notes = append(notes, notify.CostSummary(rep, location))
	} else {
		for _, a := range decision.Alerts {
			notes = append(notes, notify.CostAlert(a, rep, location))
		}
	}
	sent := m.sender.Send(ctx, notes...)

	m.log.Info().
		Str("report_id", rep.ReportID).
		Int("alerts", len(decision.Alerts)).
		Bool("saved", saved).
		Int("notifications_sent", sent).
		Msg("cost monitoring completed")

	return &CostResult{Report: rep, Decision: decision, Saved: saved}, nil
}
