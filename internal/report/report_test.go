package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/costwatch/internal/billing"
	"github.com/pankaj-dahiya-devops/costwatch/internal/config"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

var reportNow = time.Date(2026, 3, 7, 23, 15, 0, 0, time.UTC)

func sampleCostReport() models.CostReport {
	return NewCostReport(CostInput{
		Now:       reportNow,
		AccountID: "123456789012",
		Billing: billing.Snapshot{
			DailyCost:  150,
			WeeklyCost: 700.5,
			ByService: map[string]float64{
				"Amazon EC2": 400, "Amazon S3": 50, "Amazon RDS": 120,
				"AWS Lambda": 3, "Amazon VPC": 20, "Amazon SNS": 0.1,
			},
		},
		Thresholds: models.ThresholdConfig{DailyLimit: 100, WeeklyLimit: 500},
	})
}

func TestNewCostReport(t *testing.T) {
	r := sampleCostReport()

	if _, err := uuid.Parse(r.ReportID); err != nil {
		t.Errorf("ReportID %q is not a UUID: %v", r.ReportID, err)
	}
	if r.DailyThreshold != 100 || r.WeeklyThreshold != 500 {
		t.Errorf("thresholds = %v/%v", r.DailyThreshold, r.WeeklyThreshold)
	}
	if len(r.TopServices) != TopServiceCount {
		t.Fatalf("TopServices has %d entries; want %d", len(r.TopServices), TopServiceCount)
	}
	if r.TopServices[0].Service != "Amazon EC2" || r.TopServices[4].Service != "AWS Lambda" {
		t.Errorf("TopServices = %+v", r.TopServices)
	}
	if len(r.AllServiceCosts) != 6 {
		t.Errorf("AllServiceCosts has %d entries; want 6", len(r.AllServiceCosts))
	}
	if NewCostReport(CostInput{}).ReportID == r.ReportID {
		t.Error("report ids must be unique per run")
	}
}

func TestNewCostReport_EmptyBilling(t *testing.T) {
	r := NewCostReport(CostInput{Now: reportNow})
	if r.AllServiceCosts == nil || r.TopServices == nil {
		t.Errorf("empty billing must give empty, non-nil collections: %+v", r)
	}
}

func TestCostReport_ReserialisationIsStable(t *testing.T) {
	orig := sampleCostReport()
	first, err := Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	var decoded models.CostReport
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(orig, decoded); diff != "" {
		t.Errorf("decoded report differs (-orig +decoded):\n%s", diff)
	}
	second, err := Marshal(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("re-serialisation changed the document:\n%s\n---\n%s", first, second)
	}
}

func TestCleanupReport_ReserialisationIsStable(t *testing.T) {
	orig := NewCleanupReport(CleanupInput{
		Now:   reportNow,
		Gates: config.CleanupConfig{DryRun: false, Enabled: true},
		Candidates: models.Candidates{
			UnattachedVolumes: []models.UnattachedVolume{{
				VolumeID: "vol-1", SizeGB: 100, VolumeType: "gp3",
				CreateTime: reportNow.AddDate(0, 0, -45), AgeDays: 45, Tags: map[string]string{},
			}},
		},
		ActionsTaken:     []string{"Deleted volume: vol-1"},
		EstimatedSavings: 10,
		DiscoveryErrors:  map[string]string{"old_snapshots": "denied"},
	})
	first, err := Marshal(orig)
	if err != nil {
		t.Fatal(err)
	}
	var decoded models.CleanupReport
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(orig, decoded); diff != "" {
		t.Errorf("decoded report differs (-orig +decoded):\n%s", diff)
	}
	second, _ := Marshal(decoded)
	if !bytes.Equal(first, second) {
		t.Error("re-serialisation changed the document")
	}
	// Candidate lists are flattened into the top-level object.
	if !strings.Contains(string(first), `"unattached_volumes": [`) || !strings.Contains(string(first), `"idle_instances": []`) {
		t.Errorf("unexpected layout:\n%s", first)
	}
}

func TestNewCleanupReport_DropsActionsWhenGated(t *testing.T) {
	r := NewCleanupReport(CleanupInput{
		Now:          reportNow,
		Gates:        config.CleanupConfig{DryRun: true, Enabled: true},
		ActionsTaken: []string{"Deleted volume: vol-1"},
	})
	if len(r.ActionsTaken) != 0 || r.ActionsTaken == nil {
		t.Errorf("ActionsTaken = %#v; want empty slice", r.ActionsTaken)
	}
	if !r.DryRun || !r.CleanupEnabled {
		t.Errorf("gates not copied: %+v", r)
	}
}

func TestKeyAndLocation(t *testing.T) {
	local := time.Date(2026, 3, 8, 1, 0, 0, 0, time.FixedZone("CET", 3600))
	if got := Key(KindCost, local); got != "daily-reports/2026/03/08/cost-report.json" {
		t.Errorf("Key(cost) = %q", got)
	}
	if got := Key(KindCleanup, reportNow); got != "cleanup-reports/2026/03/07/cleanup-report.json" {
		t.Errorf("Key(cleanup) = %q", got)
	}
	if got := Location("reports-bucket", KindCost, reportNow); got != "s3://reports-bucket/daily-reports/2026/03/07/" {
		t.Errorf("Location = %q", got)
	}
}

// ── Writer ───────────────────────────────────────────────────────────────────

type memStore struct {
	objects map[string][]byte
	err     error
}

func (m *memStore) Put(_ context.Context, key string, body []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return nil
}

func TestWriterSave(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, zerolog.Nop())
	if err := w.Save(context.Background(), KindCost, reportNow, sampleCostReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, ok := store.objects["daily-reports/2026/03/07/cost-report.json"]
	if !ok {
		t.Fatalf("object not written; have %v", store.objects)
	}
	if !strings.HasPrefix(string(body), "{\n  \"report_id\"") {
		t.Errorf("body is not indented JSON:\n%s", body)
	}
}

func TestWriterSave_SameDayOverwrites(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, zerolog.Nop())
	_ = w.Save(context.Background(), KindCost, reportNow, map[string]int{"run": 1})
	_ = w.Save(context.Background(), KindCost, reportNow.Add(-time.Hour), map[string]int{"run": 2})
	if len(store.objects) != 1 {
		t.Fatalf("want one object, got %d", len(store.objects))
	}
	if !strings.Contains(string(store.objects[Key(KindCost, reportNow)]), `"run": 2`) {
		t.Error("second run did not overwrite the first")
	}
}

func TestWriterSave_FailureIsPersistenceFailed(t *testing.T) {
	boom := errors.New("AccessDenied")
	err := NewWriter(&memStore{err: boom}, zerolog.Nop()).Save(context.Background(), KindCleanup, reportNow, struct{}{})
	if models.KindOf(err) != models.KindPersistenceFailed {
		t.Errorf("kind = %q; want PersistenceFailed", models.KindOf(err))
	}
	if !errors.Is(err, boom) {
		t.Error("store error must stay in the chain")
	}
}
