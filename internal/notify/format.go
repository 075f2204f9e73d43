package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/threshold"
)

const (
	alertServiceCount   = 5
	summaryServiceCount = 3
	maxListedActions    = 10
)

// Subjects used on the notification channel. The chat adapter keys its
// colour fallback on the words "Alert" and "Error".
const (
	SubjectDailyAlert   = "Daily Cost Alert"
	SubjectWeeklyAlert  = "Weekly Cost Alert"
	SubjectSummary      = "Daily AWS Cost Summary"
	SubjectCostError    = "Cost Monitoring Error"
	SubjectCleanupError = "Resource Cleanup Error"
	subjectCleanup      = "AWS Resource Cleanup Report"
)

// Money renders an amount in dollars with exactly two decimals.
func Money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// CostAlert formats the notification for one exceeded limit.
func CostAlert(a threshold.Alert, r models.CostReport, location string) models.Notification {
	subject, label := SubjectDailyAlert, "Daily"
	if a.Period == threshold.PeriodWeekly {
		subject, label = SubjectWeeklyAlert, "Weekly"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", subject)
	fmt.Fprintf(&b, "%s cost %s exceeded threshold %s\n\n", label, Money(a.Cost), Money(a.Threshold))
	b.WriteString("Cost Summary:\n")
	fmt.Fprintf(&b, "  - Daily Cost: %s\n", Money(r.DailyCost))
	fmt.Fprintf(&b, "  - Weekly Cost: %s\n", Money(r.WeeklyCost))
	fmt.Fprintf(&b, "  - Account: %s\n\n", r.AccountID)
	fmt.Fprintf(&b, "Top %d Services:\n", alertServiceCount)
	writeServices(&b, r.TopServices, alertServiceCount)
	fmt.Fprintf(&b, "\nView detailed report: %s\n", location)

	return models.Notification{Severity: models.SeverityAlert, Subject: subject, Body: b.String()}
}

// CostSummary formats the routine notification sent when no limit was
// exceeded.
func CostSummary(r models.CostReport, location string) models.Notification {
	var b strings.Builder
	b.WriteString("Daily AWS Cost Summary\n\n")
	b.WriteString("All costs within thresholds\n\n")
	b.WriteString("Cost Overview:\n")
	fmt.Fprintf(&b, "  - Yesterday: %s\n", Money(r.DailyCost))
	fmt.Fprintf(&b, "  - Last 7 Days: %s\n\n", Money(r.WeeklyCost))
	b.WriteString("Top Services:\n")
	writeServices(&b, r.TopServices, summaryServiceCount)
	fmt.Fprintf(&b, "\nView detailed report: %s\n", location)

	return models.Notification{Severity: models.SeveritySummary, Subject: SubjectSummary, Body: b.String()}
}

// CleanupSummary formats the notification for a finished cleanup run.
func CleanupSummary(r models.CleanupReport, location string) models.Notification {
	mode := "LIVE"
	if r.DryRun {
		mode = "DRY RUN"
	}
	subject := fmt.Sprintf("%s (%s)", subjectCleanup, mode)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", subject)
	fmt.Fprintf(&b, "Estimated Monthly Savings: %s\n\n", Money(r.EstimatedSavings))
	b.WriteString("Resources Found:\n")
	fmt.Fprintf(&b, "  - Idle EC2 Instances: %d\n", len(r.IdleInstances))
	fmt.Fprintf(&b, "  - Unattached EBS Volumes: %d\n", len(r.UnattachedVolumes))
	fmt.Fprintf(&b, "  - Old Snapshots: %d\n", len(r.OldSnapshots))
	fmt.Fprintf(&b, "  - Idle Elastic IPs: %d\n\n", len(r.IdleElasticIPs))

	switch {
	case len(r.ActionsTaken) > 0:
		fmt.Fprintf(&b, "Actions Taken (%d):\n", len(r.ActionsTaken))
		for i, a := range r.ActionsTaken {
			if i == maxListedActions {
				fmt.Fprintf(&b, "  ... and %d more\n", len(r.ActionsTaken)-maxListedActions)
				break
			}
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	case r.DryRun:
		b.WriteString("Running in DRY RUN mode - no actions taken\n")
	case !r.CleanupEnabled:
		b.WriteString("Cleanup disabled - no actions taken\n")
	default:
		b.WriteString("No cleanup actions needed\n")
	}

	if len(r.DiscoveryErrors) > 0 {
		fmt.Fprintf(&b, "\nChecks that failed: %d (see report)\n", len(r.DiscoveryErrors))
	}
	fmt.Fprintf(&b, "\nView full report: %s\n", location)

	return models.Notification{Severity: models.SeveritySummary, Subject: subject, Body: b.String()}
}

// Failure formats an error notification under subject.
func Failure(subject, pipeline string, err error) models.Notification {
	return models.Notification{
		Severity: models.SeverityError,
		Subject:  subject,
		Body:     fmt.Sprintf("Error in %s:\n\n%v", pipeline, err),
	}
}

func writeServices(b *strings.Builder, services []models.ServiceCost, n int) {
	if len(services) == 0 {
		b.WriteString("  (no service costs reported)\n")
		return
	}
	for i, s := range services {
		if i == n {
			break
		}
		fmt.Fprintf(b, "  - %s: %s\n", s.Service, Money(s.CostUSD))
	}
}
