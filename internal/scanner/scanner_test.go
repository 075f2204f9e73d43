package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

var scanNow = time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)

type fakeInventory struct {
	instances []models.InstanceRecord
	volumes   []models.VolumeRecord
	snapshots []models.SnapshotRecord
	addresses []models.AddressRecord

	instancesErr error
	volumesErr   error
	snapshotsErr error
	addressesErr error

	mu            sync.Mutex
	instanceCalls int
}

func (f *fakeInventory) ListRunningInstances(context.Context) ([]models.InstanceRecord, error) {
	f.mu.Lock()
	f.instanceCalls++
	f.mu.Unlock()
	return f.instances, f.instancesErr
}

func (f *fakeInventory) ListAvailableVolumes(context.Context) ([]models.VolumeRecord, error) {
	return f.volumes, f.volumesErr
}

func (f *fakeInventory) ListOwnedSnapshots(context.Context) ([]models.SnapshotRecord, error) {
	return f.snapshots, f.snapshotsErr
}

func (f *fakeInventory) ListAddresses(context.Context) ([]models.AddressRecord, error) {
	return f.addresses, f.addressesErr
}

type fakeMetrics struct {
	samples map[string][]float64
	errs    map[string]error

	mu      sync.Mutex
	metric  string
	window  time.Duration
	callIDs []string
}

func (f *fakeMetrics) GetUtilization(_ context.Context, id, metric string, window time.Duration) ([]float64, error) {
	f.mu.Lock()
	f.callIDs = append(f.callIDs, id)
	f.metric, f.window = metric, window
	f.mu.Unlock()
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return f.samples[id], nil
}

func defaultOptions(includeInstances bool) Options {
	return Options{
		Now: scanNow,
		Thresholds: models.ThresholdConfig{
			CPUIdleThresholdPercent: 5,
			VolumeAgeDays:           30,
			SnapshotAgeDays:         90,
		},
		IncludeInstances: includeInstances,
	}
}

func fullInventory() *fakeInventory {
	return &fakeInventory{
		instances: []models.InstanceRecord{
			{InstanceID: "i-idle", InstanceType: "t3.micro", State: "running"},
			{InstanceID: "i-busy", InstanceType: "t3.large", State: "running"},
			{InstanceID: "i-nodata", InstanceType: "t2.small", State: "running"},
		},
		volumes: []models.VolumeRecord{
			{VolumeID: "vol-old", SizeGB: 100, State: "available", CreateTime: scanNow.AddDate(0, 0, -45)},
			{VolumeID: "vol-new", SizeGB: 8, State: "available", CreateTime: scanNow.AddDate(0, 0, -2)},
		},
		snapshots: []models.SnapshotRecord{
			{SnapshotID: "snap-old", SizeGB: 20, StartTime: scanNow.AddDate(0, 0, -200)},
			{SnapshotID: "snap-keep", SizeGB: 20, StartTime: scanNow.AddDate(0, 0, -200), Tags: map[string]string{"Keep": "yes"}},
		},
		addresses: []models.AddressRecord{
			{AllocationID: "eipalloc-1", PublicIP: "198.51.100.1"},
			{AllocationID: "eipalloc-2", PublicIP: "198.51.100.2", AssociationID: "eipassoc-2"},
		},
	}
}

func TestScan_AllChecks(t *testing.T) {
	metrics := &fakeMetrics{samples: map[string][]float64{
		"i-idle": {1, 2, 3},
		"i-busy": {40, 60},
	}}
	res := New(fullInventory(), metrics, zerolog.Nop()).Scan(context.Background(), defaultOptions(true))

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	c := res.Candidates
	if len(c.IdleInstances) != 1 || c.IdleInstances[0].InstanceID != "i-idle" {
		t.Errorf("IdleInstances = %+v; want [i-idle]", c.IdleInstances)
	}
	if len(c.UnattachedVolumes) != 1 || c.UnattachedVolumes[0].AgeDays != 45 {
		t.Errorf("UnattachedVolumes = %+v; want vol-old aged 45", c.UnattachedVolumes)
	}
	if len(c.OldSnapshots) != 1 || c.OldSnapshots[0].SnapshotID != "snap-old" {
		t.Errorf("OldSnapshots = %+v; want [snap-old]", c.OldSnapshots)
	}
	if len(c.IdleElasticIPs) != 1 || c.IdleElasticIPs[0].PublicIP != "198.51.100.1" {
		t.Errorf("IdleElasticIPs = %+v", c.IdleElasticIPs)
	}
	if metrics.metric != "CPUUtilization" || metrics.window != 7*24*time.Hour {
		t.Errorf("metric query = %q over %v; want CPUUtilization over 7d", metrics.metric, metrics.window)
	}
}

func TestScan_InstancesSkippedWhenCleanupDisabled(t *testing.T) {
	inv := fullInventory()
	metrics := &fakeMetrics{samples: map[string][]float64{"i-idle": {0}}}
	res := New(inv, metrics, zerolog.Nop()).Scan(context.Background(), defaultOptions(false))

	if len(res.Candidates.IdleInstances) != 0 {
		t.Errorf("IdleInstances = %+v; want none", res.Candidates.IdleInstances)
	}
	if res.Candidates.IdleInstances == nil {
		t.Error("IdleInstances must be an empty slice, not nil")
	}
	if inv.instanceCalls != 0 || len(metrics.callIDs) != 0 {
		t.Errorf("instance discovery ran: %d list calls, %d metric calls", inv.instanceCalls, len(metrics.callIDs))
	}
	// The other three checks still run.
	if len(res.Candidates.UnattachedVolumes) != 1 || len(res.Candidates.OldSnapshots) != 1 || len(res.Candidates.IdleElasticIPs) != 1 {
		t.Errorf("unexpected candidates: %+v", res.Candidates)
	}
}

func TestScan_FailingCheckDoesNotStopOthers(t *testing.T) {
	inv := fullInventory()
	inv.snapshotsErr = errors.New("AccessDenied")
	res := New(inv, &fakeMetrics{}, zerolog.Nop()).Scan(context.Background(), defaultOptions(false))

	if len(res.Errors) != 1 {
		t.Fatalf("want 1 error, got %v", res.Errors)
	}
	err := res.Errors[models.KindOldSnapshot]
	if models.KindOf(err) != models.KindUpstreamUnavailable {
		t.Errorf("kind = %q; want UpstreamUnavailable", models.KindOf(err))
	}
	if res.Candidates.OldSnapshots == nil || len(res.Candidates.OldSnapshots) != 0 {
		t.Errorf("OldSnapshots = %#v; want empty slice", res.Candidates.OldSnapshots)
	}
	if len(res.Candidates.UnattachedVolumes) != 1 || len(res.Candidates.IdleElasticIPs) != 1 {
		t.Error("sibling checks must still report their candidates")
	}
	msgs := res.ErrorMessages()
	if msgs["old_snapshots"] == "" {
		t.Errorf("ErrorMessages = %v; want old_snapshots entry", msgs)
	}
}

func TestScan_MetricErrorNeverFlags(t *testing.T) {
	inv := &fakeInventory{instances: []models.InstanceRecord{
		{InstanceID: "i-1", State: "running"},
		{InstanceID: "i-2", State: "running"},
	}}
	metrics := &fakeMetrics{
		samples: map[string][]float64{"i-2": {0.5}},
		errs:    map[string]error{"i-1": errors.New("throttled")},
	}
	res := New(inv, metrics, zerolog.Nop()).Scan(context.Background(), defaultOptions(true))

	if len(res.Errors) != 0 {
		t.Errorf("metric errors must not fail the check: %v", res.Errors)
	}
	if len(res.Candidates.IdleInstances) != 1 || res.Candidates.IdleInstances[0].InstanceID != "i-2" {
		t.Errorf("IdleInstances = %+v; want [i-2]", res.Candidates.IdleInstances)
	}
}

func TestScan_IdleInstancesKeepDiscoveryOrder(t *testing.T) {
	inv := &fakeInventory{}
	samples := map[string][]float64{}
	ids := []string{"i-9", "i-3", "i-7", "i-1", "i-5", "i-2", "i-8"}
	for _, id := range ids {
		inv.instances = append(inv.instances, models.InstanceRecord{InstanceID: id, State: "running"})
		samples[id] = []float64{1}
	}
	res := New(inv, &fakeMetrics{samples: samples}, zerolog.Nop()).Scan(context.Background(), defaultOptions(true))

	if len(res.Candidates.IdleInstances) != len(ids) {
		t.Fatalf("want %d idle, got %d", len(ids), len(res.Candidates.IdleInstances))
	}
	for i, id := range ids {
		if got := res.Candidates.IdleInstances[i].InstanceID; got != id {
			t.Errorf("IdleInstances[%d] = %q; want %q", i, got, id)
		}
	}
}

func TestScan_NoErrorsGivesNilMessages(t *testing.T) {
	res := New(&fakeInventory{}, nil, zerolog.Nop()).Scan(context.Background(), defaultOptions(false))
	if res.ErrorMessages() != nil {
		t.Errorf("ErrorMessages = %v; want nil", res.ErrorMessages())
	}
}
