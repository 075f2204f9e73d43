// Package threshold decides whether a cost snapshot raises alerts or a summary.
package threshold

// Period identifies which aggregated cost an alert refers to.
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// Alert records one exceeded limit.
type Alert struct {
	Period    Period
	Cost      float64
	Threshold float64
}

// Decision is the routing outcome for one run. Summary is true exactly when
// Alerts is empty.
type Decision struct {
	Alerts  []Alert
	Summary bool
}

// Evaluate compares the daily and weekly costs with their limits. The two
// checks are independent and both may fire. A cost equal to its limit does
// not alert.
func Evaluate(dailyCost, weeklyCost, dailyLimit, weeklyLimit float64) Decision {
	var d Decision
	if dailyCost > dailyLimit {
		d.Alerts = append(d.Alerts, Alert{Period: PeriodDaily, Cost: dailyCost, Threshold: dailyLimit})
	}
	if weeklyCost > weeklyLimit {
		d.Alerts = append(d.Alerts, Alert{Period: PeriodWeekly, Cost: weeklyCost, Threshold: weeklyLimit})
	}
	d.Summary = len(d.Alerts) == 0
	return d
}
