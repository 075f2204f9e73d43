// Package cleanup issues the state-changing actions for discovered candidates
// when both cleanup gates allow it.
package cleanup

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// Actions are the mutating calls the executor may issue. Implementations
// wrap models.ErrResourceGone when the target no longer exists.
type Actions interface {
	StopInstance(ctx context.Context, instanceID string) error
	DeleteVolume(ctx context.Context, volumeID string) error
	DeleteSnapshot(ctx context.Context, snapshotID string) error
	ReleaseAddress(ctx context.Context, allocationID string) error
}

// Executor applies cleanup actions to a candidate set.
type Executor struct {
	actions Actions
	log     zerolog.Logger
}

// NewExecutor returns an Executor that issues actions through a.
func NewExecutor(a Actions, log zerolog.Logger) *Executor {
	return &Executor{
		actions: a,
		log:     log.With().Str("component", "cleanup").Logger(),
	}
}

// action is one pending mutation and the record it produces on success.
type action struct {
	kind   models.CandidateKind
	target string
	record string
	do     func(ctx context.Context) error
}

// Execute issues one action per candidate and returns the records of the
// actions that succeeded, in execution order. Nothing runs unless gates.Live()
// is true. Actions are independent: a failure is logged and the remaining
// actions still run. Instances are stopped, never terminated.
func (e *Executor) Execute(ctx context.Context, c models.Candidates, gates config.CleanupConfig) []string {
	taken := []string{}
	if !gates.Live() {
		e.log.Info().
			Bool("dry_run", gates.DryRun).
			Bool("cleanup_enabled", gates.Enabled).
			Int("candidates", c.Total()).
			Msg("cleanup gated; no actions issued")
		return taken
	}

	for _, a := range e.plan(c) {
		err := a.do(ctx)
		if err == nil {
			e.log.Info().Str("kind", string(a.kind)).Str("target", a.target).Msg(a.record)
			taken = append(taken, a.record)
			continue
		}
		err = models.NewError(models.KindActionFailed, string(a.kind), err)
		if errors.Is(err, models.ErrResourceGone) {
			e.log.Warn().Err(err).Str("kind", string(a.kind)).Str("target", a.target).Msg("cleanup target already gone")
			continue
		}
		e.log.Error().Err(err).Str("kind", string(a.kind)).Str("target", a.target).Msg("cleanup action failed")
	}
	return taken
}

// plan orders the actions: volumes, snapshots, addresses, then instances.
func (e *Executor) plan(c models.Candidates) []action {
	var out []action
	for _, v := range c.UnattachedVolumes {
		id := v.VolumeID
		out = append(out, action{
			kind:   models.KindUnattachedVolume,
			target: id,
			record: fmt.Sprintf("Deleted volume: %s", id),
			do:     func(ctx context.Context) error { return e.actions.DeleteVolume(ctx, id) },
		})
	}
	for _, s := range c.OldSnapshots {
		id := s.SnapshotID
		out = append(out, action{
			kind:   models.KindOldSnapshot,
			target: id,
			record: fmt.Sprintf("Deleted snapshot: %s", id),
			do:     func(ctx context.Context) error { return e.actions.DeleteSnapshot(ctx, id) },
		})
	}
	for _, ip := range c.IdleElasticIPs {
		alloc := ip.AllocationID
		out = append(out, action{
			kind:   models.KindIdleElasticIP,
			target: alloc,
			record: fmt.Sprintf("Released Elastic IP: %s", ip.PublicIP),
			do:     func(ctx context.Context) error { return e.actions.ReleaseAddress(ctx, alloc) },
		})
	}
	for _, inst := range c.IdleInstances {
		id := inst.InstanceID
		out = append(out, action{
			kind:   models.KindIdleInstance,
			target: id,
			record: fmt.Sprintf("Stopped instance: %s", id),
			do:     func(ctx context.Context) error { return e.actions.StopInstance(ctx, id) },
		})
	}
	return out
}
