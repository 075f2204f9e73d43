// Package output renders cost and cleanup reports as fixed-width text tables
// for terminal use.
package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pankaj-dahiya-devops/costwatch/internal/billing"
	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
	"github.com/pankaj-dahiya-devops/costwatch/internal/savings"
)

// ANSI color codes for status output (used when Colored=true).
const (
	ansiReset   = "\033[0m"
	ansiBoldRed = "\033[1;31m"
	ansiGreen   = "\033[0;32m"
)

const (
	statusOver = "OVER"
	statusOK   = "OK"
)

// TableOptions controls optional columns and colouring.
type TableOptions struct {
	// Colored wraps threshold status labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// IncludeSavings adds a SAVINGS/MO column to the candidate table.
	IncludeSavings bool
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// statusCell returns the status padded to width characters. Padding stays
// outside the ANSI codes so later columns line up.
func statusCell(exceeded bool, width int, colored bool) string {
	text, code := statusOK, ansiGreen
	if exceeded {
		text, code = statusOver, ansiBoldRed
	}
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	return code + text + ansiReset + strings.Repeat(" ", max(width-len(text), 0))
}

// truncateField shortens s to at most max runes for ID/label columns.
func truncateField(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func moneyFloat(v float64) string {
	return money(decimal.NewFromFloat(v))
}

// ---------------------------------------------------------------------------
// Cost report
// ---------------------------------------------------------------------------

// RenderCost writes the threshold comparison and the per-service costs of r
// to w. Services are listed by cost descending.
//
// Column order:
//
//	PERIOD  COST  THRESHOLD  STATUS
//	SERVICE  COST (MTD)
func RenderCost(w io.Writer, r models.CostReport, opts TableOptions) {
	const (
		wPeriod  = 8
		wAmount  = 14
		wStatus  = 6
		wService = 45
	)

	fmt.Fprintf(w, "Account: %s\n", r.AccountID)
	fmt.Fprintf(w, "Report:  %s\n\n", r.ReportID)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %s", wPeriod, "PERIOD", wAmount, "COST", wAmount, "THRESHOLD", "STATUS")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	for _, p := range []struct {
		name            string
		cost, threshold float64
	}{
		{"daily", r.DailyCost, r.DailyThreshold},
		{"weekly", r.WeeklyCost, r.WeeklyThreshold},
	} {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n",
			wPeriod, p.name,
			wAmount, moneyFloat(p.cost),
			wAmount, moneyFloat(p.threshold),
			strings.TrimRight(statusCell(p.cost > p.threshold, wStatus, opts.Colored), " "),
		)
	}

	fmt.Fprintln(w)
	services := billing.TopServices(r.AllServiceCosts, len(r.AllServiceCosts))
	if len(services) == 0 {
		fmt.Fprintln(w, "No service costs.")
		return
	}
	header = fmt.Sprintf("%-*s  %s", wService, "SERVICE", "COST (MTD)")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	for _, s := range services {
		fmt.Fprintf(w, "%-*s  %s\n", wService, truncateField(s.Service, wService), moneyFloat(s.CostUSD))
	}
}

// ---------------------------------------------------------------------------
// Cleanup report
// ---------------------------------------------------------------------------

type candidateRow struct {
	kind    models.CandidateKind
	id      string
	detail  string
	savings decimal.Decimal
}

// candidateRows flattens c in action order: volumes, snapshots, addresses,
// then instances.
func candidateRows(c models.Candidates) []candidateRow {
	rows := make([]candidateRow, 0, c.Total())
	for _, v := range c.UnattachedVolumes {
		rows = append(rows, candidateRow{
			kind:    models.KindUnattachedVolume,
			id:      v.VolumeID,
			detail:  fmt.Sprintf("%d GiB %s, %d days old", v.SizeGB, v.VolumeType, v.AgeDays),
			savings: savings.VolumeMonthlyCost(v.SizeGB),
		})
	}
	for _, s := range c.OldSnapshots {
		detail := fmt.Sprintf("%d GiB, %d days old", s.SizeGB, s.AgeDays)
		if s.Description != "" {
			detail += ", " + s.Description
		}
		rows = append(rows, candidateRow{
			kind:    models.KindOldSnapshot,
			id:      s.SnapshotID,
			detail:  detail,
			savings: savings.SnapshotMonthlyCost(s.SizeGB),
		})
	}
	for _, ip := range c.IdleElasticIPs {
		rows = append(rows, candidateRow{
			kind:    models.KindIdleElasticIP,
			id:      ip.AllocationID,
			detail:  ip.PublicIP,
			savings: savings.ElasticIPMonthlyCost(),
		})
	}
	for _, inst := range c.IdleInstances {
		rows = append(rows, candidateRow{
			kind:    models.KindIdleInstance,
			id:      inst.InstanceID,
			detail:  fmt.Sprintf("%s, avg CPU %.1f%%", inst.InstanceType, inst.AvgCPU),
			savings: savings.InstanceMonthlyCost(inst.InstanceType),
		})
	}
	return rows
}

// RenderCleanup writes the candidates of r, the actions taken and the
// estimated savings to w.
//
// Column order:
//
//	KIND  RESOURCE ID  DETAIL  [SAVINGS/MO]
func RenderCleanup(w io.Writer, r models.CleanupReport, opts TableOptions) {
	const (
		wKind   = 18
		wID     = 26
		wDetail = 45
	)

	mode := "LIVE"
	switch {
	case !r.CleanupEnabled:
		mode = "disabled"
	case r.DryRun:
		mode = "DRY RUN"
	}
	fmt.Fprintf(w, "Report: %s\n", r.ReportID)
	fmt.Fprintf(w, "Mode:   %s\n\n", mode)

	rows := candidateRows(r.Candidates)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No cleanup candidates.")
	} else {
		var hb strings.Builder
		hb.WriteString(fmt.Sprintf("%-*s", wKind, "KIND"))
		hb.WriteString(fmt.Sprintf("  %-*s", wID, "RESOURCE ID"))
		hb.WriteString(fmt.Sprintf("  %-*s", wDetail, "DETAIL"))
		if opts.IncludeSavings {
			hb.WriteString("  SAVINGS/MO")
		}
		header := strings.TrimRight(hb.String(), " ")

		fmt.Fprintln(w, header)
		fmt.Fprintln(w, strings.Repeat("-", len(header)))

		for _, row := range rows {
			var rb strings.Builder
			rb.WriteString(fmt.Sprintf("%-*s", wKind, truncateField(string(row.kind), wKind)))
			rb.WriteString(fmt.Sprintf("  %-*s", wID, truncateField(row.id, wID)))
			rb.WriteString(fmt.Sprintf("  %-*s", wDetail, ShortenMessage(row.detail, wDetail)))
			if opts.IncludeSavings {
				rb.WriteString("  " + money(row.savings))
			}
			fmt.Fprintln(w, strings.TrimRight(rb.String(), " "))
		}
	}

	fmt.Fprintf(w, "\nEstimated savings: %s/month\n", moneyFloat(r.EstimatedSavings))
	if len(r.ActionsTaken) > 0 {
		fmt.Fprintf(w, "Actions taken: %d\n", len(r.ActionsTaken))
		for _, a := range r.ActionsTaken {
			fmt.Fprintf(w, "  %s\n", a)
		}
	}
	for _, kind := range slices.Sorted(maps.Keys(r.DiscoveryErrors)) {
		fmt.Fprintf(w, "Check failed: %s (%s)\n", kind, r.DiscoveryErrors[kind])
	}
}
