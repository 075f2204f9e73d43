package threshold

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		daily       float64
		weekly      float64
		wantPeriods []Period
	}{
		{"both under", 50, 300, nil},
		{"daily equal is not an alert", 100, 300, nil},
		{"weekly equal is not an alert", 50, 500, nil},
		{"both equal", 100, 500, nil},
		{"daily over only", 150, 300, []Period{PeriodDaily}},
		{"weekly over only", 50, 500.01, []Period{PeriodWeekly}},
		{"both over", 100.01, 900, []Period{PeriodDaily, PeriodWeekly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.daily, tt.weekly, 100, 500)

			if len(d.Alerts) != len(tt.wantPeriods) {
				t.Fatalf("alerts = %d; want %d (%+v)", len(d.Alerts), len(tt.wantPeriods), d.Alerts)
			}
			for i, p := range tt.wantPeriods {
				if d.Alerts[i].Period != p {
					t.Errorf("alert[%d].Period = %q; want %q", i, d.Alerts[i].Period, p)
				}
			}
			// Alerts and summary are mutually exclusive.
			if d.Summary == (len(d.Alerts) > 0) {
				t.Errorf("Summary = %v with %d alerts", d.Summary, len(d.Alerts))
			}
		})
	}
}

func TestEvaluate_XORProducesExactlyOneAlert(t *testing.T) {
	pairs := [][2]float64{{101, 10}, {10, 501}, {1e6, 0}, {0, 1e6}}
	for _, p := range pairs {
		d := Evaluate(p[0], p[1], 100, 500)
		if len(d.Alerts) != 1 || d.Summary {
			t.Errorf("daily=%v weekly=%v: alerts=%d summary=%v; want 1/false", p[0], p[1], len(d.Alerts), d.Summary)
		}
	}
}

func TestEvaluate_AlertCarriesFigures(t *testing.T) {
	d := Evaluate(150, 200, 100, 500)
	if len(d.Alerts) != 1 {
		t.Fatalf("want 1 alert, got %d", len(d.Alerts))
	}
	a := d.Alerts[0]
	if a.Cost != 150 || a.Threshold != 100 {
		t.Errorf("alert = %+v; want cost 150 threshold 100", a)
	}
}
