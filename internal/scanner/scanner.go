// Package scanner discovers cleanup candidates by listing inventory from the
// provider and classifying it with the rules package.
package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/rules"
)

const (
	// cpuMetric is the utilisation metric averaged for idle-instance detection.
	cpuMetric = "CPUUtilization"

	// cpuWindow is the lookback window for CPU samples.
	cpuWindow = 7 * 24 * time.Hour

	// maxConcurrentMetricCalls caps in-flight metric queries per scan.
	maxConcurrentMetricCalls = 5
)

// Inventory lists raw resource records from the provider. Every list keeps
// the provider's discovery order.
type Inventory interface {
	ListRunningInstances(ctx context.Context) ([]models.InstanceRecord, error)
	ListAvailableVolumes(ctx context.Context) ([]models.VolumeRecord, error)
	ListOwnedSnapshots(ctx context.Context) ([]models.SnapshotRecord, error)
	ListAddresses(ctx context.Context) ([]models.AddressRecord, error)
}

// Metrics returns utilisation samples for one resource over a trailing window.
type Metrics interface {
	GetUtilization(ctx context.Context, resourceID, metric string, window time.Duration) ([]float64, error)
}

// Options configures a single scan.
type Options struct {
	// Now is the reference time for age limits.
	Now time.Time

	Thresholds models.ThresholdConfig

	// IncludeInstances enables idle-instance discovery. When false the
	// instance check is skipped entirely and no metric calls are made.
	IncludeInstances bool
}

// Result holds the candidates of one scan and the error of every check that
// failed. A failed check contributes an empty candidate list.
type Result struct {
	Candidates models.Candidates
	Errors     map[models.CandidateKind]error
}

// ErrorMessages renders Errors as kind → message for reports.
func (r Result) ErrorMessages() map[string]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Errors))
	for kind, err := range r.Errors {
		out[string(kind)] = err.Error()
	}
	return out
}

// Scanner runs the discovery checks against an inventory and metrics source.
type Scanner struct {
	inventory Inventory
	metrics   Metrics
	log       zerolog.Logger
}

// New returns a Scanner. metrics may be nil when instance discovery is never
// enabled.
func New(inventory Inventory, metrics Metrics, log zerolog.Logger) *Scanner {
	return &Scanner{
		inventory: inventory,
		metrics:   metrics,
		log:       log.With().Str("component", "scanner").Logger(),
	}
}

// Scan runs every enabled check concurrently and merges the results by kind.
// Check failures are logged and recorded in Result.Errors; Scan itself never
// fails.
func (s *Scanner) Scan(ctx context.Context, opts Options) Result {
	rc := rules.RuleContext{Now: opts.Now, Thresholds: opts.Thresholds}
	c := models.Candidates{
		IdleInstances:     []models.IdleInstance{},
		UnattachedVolumes: []models.UnattachedVolume{},
		OldSnapshots:      []models.OldSnapshot{},
		IdleElasticIPs:    []models.IdleElasticIP{},
	}

	checks := []check{
		{kind: models.KindUnattachedVolume, run: func(ctx context.Context) error {
			vols, err := s.inventory.ListAvailableVolumes(ctx)
			if err != nil {
				return err
			}
			c.UnattachedVolumes = rules.UnattachedVolumes(rc, vols)
			return nil
		}},
		{kind: models.KindOldSnapshot, run: func(ctx context.Context) error {
			snaps, err := s.inventory.ListOwnedSnapshots(ctx)
			if err != nil {
				return err
			}
			c.OldSnapshots = rules.OldSnapshots(rc, snaps)
			return nil
		}},
		{kind: models.KindIdleElasticIP, run: func(ctx context.Context) error {
			addrs, err := s.inventory.ListAddresses(ctx)
			if err != nil {
				return err
			}
			c.IdleElasticIPs = rules.IdleElasticIPs(addrs)
			return nil
		}},
	}
	if opts.IncludeInstances {
		checks = append(checks, check{kind: models.KindIdleInstance, run: func(ctx context.Context) error {
			idle, err := s.idleInstances(ctx, rc)
			if err != nil {
				return err
			}
			c.IdleInstances = idle
			return nil
		}})
	}

	errs := runChecks(ctx, checks)
	for kind, err := range errs {
		s.log.Error().Err(err).Str("check", string(kind)).Msg("discovery check failed")
	}

	s.log.Info().
		Int("idle_instances", len(c.IdleInstances)).
		Int("unattached_volumes", len(c.UnattachedVolumes)).
		Int("old_snapshots", len(c.OldSnapshots)).
		Int("idle_elastic_ips", len(c.IdleElasticIPs)).
		Bool("instances_checked", opts.IncludeInstances).
		Msg("discovery finished")

	return Result{Candidates: c, Errors: errs}
}

// idleInstances lists running instances and classifies each against its CPU
// average. Metric failures are logged and treated as missing samples, which
// never flags an instance.
func (s *Scanner) idleInstances(ctx context.Context, rc rules.RuleContext) ([]models.IdleInstance, error) {
	instances, err := s.inventory.ListRunningInstances(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics == nil {
		return nil, errors.New("no metrics source configured")
	}

	samples := make([][]float64, len(instances))
	var g errgroup.Group
	g.SetLimit(maxConcurrentMetricCalls)
	for i, inst := range instances {
		g.Go(func() error {
			points, err := s.metrics.GetUtilization(ctx, inst.InstanceID, cpuMetric, cpuWindow)
			if err != nil {
				s.log.Warn().Err(err).Str("instance_id", inst.InstanceID).Msg("cpu metrics unavailable; instance treated as busy")
				return nil
			}
			samples[i] = points
			return nil
		})
	}
	_ = g.Wait()

	idle := []models.IdleInstance{}
	for i, inst := range instances {
		if c, ok := rules.IdleInstance(rc, inst, samples[i]); ok {
			idle = append(idle, c)
		}
	}
	return idle, nil
}

// ---------------------------------------------------------------------------
// Check runner
// ---------------------------------------------------------------------------

// check is one discovery rule. run writes its own result slot and returns the
// error that made it give up, if any.
type check struct {
	kind models.CandidateKind
	run  func(ctx context.Context) error
}

// runChecks runs every check concurrently on a plain errgroup.Group so a
// failing check never cancels its siblings. It returns the error of each
// failed check keyed by kind, or nil when all succeeded.
func runChecks(ctx context.Context, checks []check) map[models.CandidateKind]error {
	errs := make([]error, len(checks))
	var g errgroup.Group
	for i, ch := range checks {
		g.Go(func() error {
			if err := ch.run(ctx); err != nil {
				errs[i] = models.NewError(models.KindUpstreamUnavailable, "scan "+string(ch.kind), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var out map[models.CandidateKind]error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if out == nil {
			out = make(map[models.CandidateKind]error)
		}
		out[checks[i].kind] = err
	}
	return out
}
