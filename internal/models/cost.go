package models

import "time"

// Granularity is the time-bucket size at which the billing source reports costs.
type Granularity string

const (
	GranularityDaily   Granularity = "DAILY"
	GranularityMonthly Granularity = "MONTHLY"
)

// BillingQuery describes one cost-and-usage request against the billing source.
// Start is inclusive and End is exclusive, both as "2006-01-02" dates.
type BillingQuery struct {
	Start           string
	End             string
	Granularity     Granularity
	GroupByCategory bool
}

// CostBucket is a single time bucket returned by the billing source.
// Groups is populated only when the query grouped by category; a category may
// appear in more than one bucket.
type CostBucket struct {
	Start  string             `json:"start"`
	End    string             `json:"end"`
	Total  float64            `json:"total"`
	Groups map[string]float64 `json:"groups,omitempty"`
}

// ServiceCost holds the aggregated cost for a single service category.
type ServiceCost struct {
	Service string  `json:"service"`
	CostUSD float64 `json:"cost_usd"`
}

// CostReport is the snapshot produced by one cost monitor run.
//
// AllServiceCosts comes from a MONTHLY-granularity query while DailyCost and
// WeeklyCost come from DAILY-granularity queries, so the sum of AllServiceCosts
// is not expected to equal WeeklyCost.
type CostReport struct {
	ReportID        string             `json:"report_id"`
	Timestamp       time.Time          `json:"timestamp"`
	AccountID       string             `json:"account_id"`
	DailyCost       float64            `json:"daily_cost"`
	WeeklyCost      float64            `json:"weekly_cost"`
	DailyThreshold  float64            `json:"daily_threshold"`
	WeeklyThreshold float64            `json:"weekly_threshold"`
	TopServices     []ServiceCost      `json:"top_services"`
	AllServiceCosts map[string]float64 `json:"all_service_costs"`
}

// ThresholdConfig holds every externally supplied limit used by the two
// pipelines. It is read once at start-up and never modified afterwards.
type ThresholdConfig struct {
	DailyLimit              float64 `yaml:"daily_limit"                json:"daily_limit"`
	WeeklyLimit             float64 `yaml:"weekly_limit"               json:"weekly_limit"`
	CPUIdleThresholdPercent float64 `yaml:"cpu_idle_threshold_percent" json:"cpu_idle_threshold_percent"`
	VolumeAgeDays           int     `yaml:"volume_age_days"            json:"volume_age_days"`
	SnapshotAgeDays         int     `yaml:"snapshot_age_days"          json:"snapshot_age_days"`
}
