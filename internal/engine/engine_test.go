package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/billing"
	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/report"
	"github.com/pankaj-dahiya-devops/costwatch/internal/scanner"
	"github.com/pankaj-dahiya-devops/costwatch/internal/threshold"
)

var runNow = time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeSource struct {
	snap  billing.Snapshot
	err   error
	panic bool
}

func (f fakeSource) Snapshot(context.Context, time.Time) (*billing.Snapshot, error) {
	if f.panic {
		panic("nil map write")
	}
	if f.err != nil {
		return nil, f.err
	}
	s := f.snap
	return &s, nil
}

type fakeSaver struct {
	err   error
	kinds []report.Kind
	docs  []any
}

func (f *fakeSaver) Save(_ context.Context, kind report.Kind, _ time.Time, v any) error {
	f.kinds = append(f.kinds, kind)
	f.docs = append(f.docs, v)
	if f.err != nil {
		return models.NewError(models.KindPersistenceFailed, "save", f.err)
	}
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (f *fakeSender) Send(_ context.Context, notes ...models.Notification) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notes...)
	return len(notes)
}

func (f *fakeSender) subjects() []string {
	var out []string
	for _, n := range f.sent {
		out = append(out, n.Subject)
	}
	return out
}

func newMonitor(src CostSource, saver *fakeSaver, sender *fakeSender) *CostMonitor {
	m := NewCostMonitor(CostMonitorConfig{
		AccountID:  "123456789012",
		Bucket:     "reports",
		Thresholds: models.ThresholdConfig{DailyLimit: 100, WeeklyLimit: 500},
	}, src, saver, sender, zerolog.Nop())
	m.now = func() time.Time { return runNow }
	return m
}

// ── cost monitor ─────────────────────────────────────────────────────────────

func TestCostMonitor_DailyAlert(t *testing.T) {
	saver, sender := &fakeSaver{}, &fakeSender{}
	src := fakeSource{snap: billing.Snapshot{
		DailyCost: 150, WeeklyCost: 400,
		ByService: map[string]float64{"Amazon EC2": 300, "Amazon S3": 20},
	}}
	res, err := newMonitor(src, saver, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Decision.Alerts) != 1 || res.Decision.Alerts[0].Period != threshold.PeriodDaily || res.Decision.Summary {
		t.Errorf("decision = %+v", res.Decision)
	}
	if len(sender.sent) != 1 || sender.sent[0].Subject != "Daily Cost Alert" {
		t.Fatalf("sent = %v", sender.subjects())
	}
	body := sender.sent[0].Body
	if !strings.Contains(body, "150.00") || !strings.Contains(body, "100.00") {
		t.Errorf("alert body must quote cost and limit:\n%s", body)
	}
	if !strings.Contains(body, "s3://reports/daily-reports/2026/10/17/") {
		t.Errorf("alert body must carry the report location:\n%s", body)
	}
	if !res.Saved || len(saver.kinds) != 1 || saver.kinds[0] != report.KindCost {
		t.Errorf("report not saved: %+v", saver.kinds)
	}
	if res.Report.AccountID != "123456789012" || res.Report.TopServices[0].Service != "Amazon EC2" {
		t.Errorf("report = %+v", res.Report)
	}
}

func TestCostMonitor_RoutingIsAlertsXorSummary(t *testing.T) {
	cases := []struct {
		name     string
		daily    float64
		weekly   float64
		subjects []string
	}{
		{"both within", 50, 300, []string{"Daily AWS Cost Summary"}},
		{"equal is not over", 100, 500, []string{"Daily AWS Cost Summary"}},
		{"weekly only", 90, 501, []string{"Weekly Cost Alert"}},
		{"both over", 101, 900, []string{"Daily Cost Alert", "Weekly Cost Alert"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &fakeSender{}
			src := fakeSource{snap: billing.Snapshot{DailyCost: tc.daily, WeeklyCost: tc.weekly}}
			if _, err := newMonitor(src, &fakeSaver{}, sender).Run(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := sender.subjects()
			if strings.Join(got, ",") != strings.Join(tc.subjects, ",") {
				t.Errorf("subjects = %v; want %v", got, tc.subjects)
			}
		})
	}
}

func TestCostMonitor_BillingFailureHitsBoundary(t *testing.T) {
	sender, saver := &fakeSender{}, &fakeSaver{}
	upstream := models.NewError(models.KindUpstreamUnavailable, "billing.GetCost", errors.New("ce down"))
	res, err := newMonitor(fakeSource{err: upstream}, saver, sender).Run(context.Background())

	if err == nil || res != nil {
		t.Fatalf("Run = %v, %v; want nil result and error", res, err)
	}
	if models.KindOf(err) != models.KindUpstreamUnavailable {
		t.Errorf("kind = %q", models.KindOf(err))
	}
	if len(saver.kinds) != 0 {
		t.Error("no report may be saved after a billing failure")
	}
	if len(sender.sent) != 1 || sender.sent[0].Subject != "Cost Monitoring Error" || sender.sent[0].Severity != models.SeverityError {
		t.Errorf("sent = %+v", sender.sent)
	}
}

func TestCostMonitor_PersistenceFailureStillNotifies(t *testing.T) {
	sender := &fakeSender{}
	res, err := newMonitor(fakeSource{snap: billing.Snapshot{DailyCost: 1}}, &fakeSaver{err: errors.New("denied")}, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("persistence failure must not fail the run: %v", err)
	}
	if res.Saved {
		t.Error("Saved must be false")
	}
	if len(sender.sent) != 1 || sender.sent[0].Subject != "Daily AWS Cost Summary" {
		t.Errorf("sent = %v", sender.subjects())
	}
}

func TestCostMonitor_PanicIsRecovered(t *testing.T) {
	sender := &fakeSender{}
	_, err := newMonitor(fakeSource{panic: true}, &fakeSaver{}, sender).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "nil map write") {
		t.Fatalf("err = %v; want recovered panic", err)
	}
	if models.KindOf(err) != models.KindUnclassified {
		t.Errorf("kind = %q", models.KindOf(err))
	}
	if len(sender.sent) != 1 || sender.sent[0].Severity != models.SeverityError {
		t.Errorf("sent = %+v", sender.sent)
	}
}

// ── resource cleanup ─────────────────────────────────────────────────────────

type fakeDiscoverer struct {
	result scanner.Result
	opts   scanner.Options
}

func (f *fakeDiscoverer) Scan(_ context.Context, opts scanner.Options) scanner.Result {
	f.opts = opts
	return f.result
}

type fakeRemediator struct {
	records []string
	calls   int
	panics  bool
}

func (f *fakeRemediator) Execute(_ context.Context, _ models.Candidates, gates config.CleanupConfig) []string {
	f.calls++
	if f.panics {
		panic("boom")
	}
	if !gates.Live() {
		return []string{}
	}
	return f.records
}

func discovered() scanner.Result {
	return scanner.Result{
		Candidates: models.Candidates{
			UnattachedVolumes: []models.UnattachedVolume{{VolumeID: "vol-1", SizeGB: 100}},
			IdleElasticIPs:    []models.IdleElasticIP{{AllocationID: "a", PublicIP: "192.0.2.1"}, {AllocationID: "b"}, {AllocationID: "c"}},
		},
		Errors: map[models.CandidateKind]error{models.KindOldSnapshot: errors.New("denied")},
	}
}

func newCleanup(gates config.CleanupConfig, d Discoverer, r Remediator, saver *fakeSaver, sender *fakeSender) *ResourceCleanup {
	c := NewResourceCleanup(ResourceCleanupConfig{
		Bucket:     "reports",
		Thresholds: models.ThresholdConfig{CPUIdleThresholdPercent: 5, VolumeAgeDays: 30, SnapshotAgeDays: 90},
		Gates:      gates,
	}, d, r, saver, sender, zerolog.Nop())
	c.now = func() time.Time { return runNow }
	return c
}

func TestResourceCleanup_DryRun(t *testing.T) {
	d := &fakeDiscoverer{result: discovered()}
	r := &fakeRemediator{records: []string{"Deleted volume: vol-1"}}
	saver, sender := &fakeSaver{}, &fakeSender{}
	res, err := newCleanup(config.CleanupConfig{DryRun: true, Enabled: false}, d, r, saver, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.opts.IncludeInstances {
		t.Error("instance discovery must be off when cleanup is disabled")
	}
	if !d.opts.Now.Equal(runNow) || d.opts.Thresholds.VolumeAgeDays != 30 {
		t.Errorf("scan options = %+v", d.opts)
	}
	if len(res.Report.ActionsTaken) != 0 {
		t.Errorf("ActionsTaken = %v; want none", res.Report.ActionsTaken)
	}
	// 100 GB × 0.10 + 3 × 3.60
	if res.Report.EstimatedSavings != 20.8 {
		t.Errorf("EstimatedSavings = %v; want 20.8", res.Report.EstimatedSavings)
	}
	if res.Savings.IdleElasticIPs != 10.8 {
		t.Errorf("IP savings = %v; want 10.8", res.Savings.IdleElasticIPs)
	}
	if res.Report.DiscoveryErrors["old_snapshots"] != "denied" {
		t.Errorf("DiscoveryErrors = %v", res.Report.DiscoveryErrors)
	}
	if len(sender.sent) != 1 || sender.sent[0].Subject != "AWS Resource Cleanup Report (DRY RUN)" {
		t.Errorf("sent = %v", sender.subjects())
	}
	if !strings.Contains(sender.sent[0].Body, "s3://reports/cleanup-reports/2026/10/17/") {
		t.Errorf("body:\n%s", sender.sent[0].Body)
	}
	if len(saver.kinds) != 1 || saver.kinds[0] != report.KindCleanup {
		t.Errorf("saved kinds = %v", saver.kinds)
	}
}

func TestResourceCleanup_Live(t *testing.T) {
	d := &fakeDiscoverer{result: discovered()}
	r := &fakeRemediator{records: []string{"Deleted volume: vol-1", "Released Elastic IP: 192.0.2.1"}}
	sender := &fakeSender{}
	res, err := newCleanup(config.CleanupConfig{DryRun: false, Enabled: true}, d, r, &fakeSaver{}, sender).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.opts.IncludeInstances {
		t.Error("instance discovery must run when cleanup is enabled")
	}
	if len(res.Report.ActionsTaken) != 2 {
		t.Errorf("ActionsTaken = %v", res.Report.ActionsTaken)
	}
	if sender.sent[0].Subject != "AWS Resource Cleanup Report (LIVE)" {
		t.Errorf("subject = %q", sender.sent[0].Subject)
	}
}

func TestResourceCleanup_PersistenceFailureIsNotFatal(t *testing.T) {
	sender := &fakeSender{}
	res, err := newCleanup(config.CleanupConfig{DryRun: true}, &fakeDiscoverer{}, &fakeRemediator{}, &fakeSaver{err: errors.New("denied")}, sender).Run(context.Background())
	if err != nil || res.Saved {
		t.Fatalf("Run = %+v, %v", res, err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("summary must still be sent: %v", sender.subjects())
	}
}

func TestResourceCleanup_PanicHitsBoundary(t *testing.T) {
	sender := &fakeSender{}
	_, err := newCleanup(config.CleanupConfig{DryRun: false, Enabled: true}, &fakeDiscoverer{result: discovered()}, &fakeRemediator{panics: true}, &fakeSaver{}, sender).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(sender.sent) != 1 || sender.sent[0].Subject != "Resource Cleanup Error" {
		t.Errorf("sent = %v", sender.subjects())
	}
}
