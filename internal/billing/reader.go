// Package billing turns raw cost-and-usage buckets into the totals the cost
// monitor evaluates. It knows nothing about the provider behind Source.
package billing

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// dateLayout is the date format the billing source accepts.
const dateLayout = "2006-01-02"

// Source is a cost-and-usage provider. Implementations page through the
// provider's results and return every bucket for the query.
type Source interface {
	Query(ctx context.Context, q models.BillingQuery) ([]models.CostBucket, error)
}

// Reader aggregates buckets from a Source. It does not retry; transport retry
// belongs to the Source implementation.
type Reader struct {
	source Source
}

// NewReader returns a Reader backed by source.
func NewReader(source Source) *Reader {
	return &Reader{source: source}
}

// GetCost returns the summed bucket totals for [start, end) at granularity.
// Accumulation is float64 and is never rounded here.
func (r *Reader) GetCost(ctx context.Context, start, end string, granularity models.Granularity) (float64, error) {
	buckets, err := r.source.Query(ctx, models.BillingQuery{
		Start:       start,
		End:         end,
		Granularity: granularity,
	})
	if err != nil {
		return 0, models.NewError(models.KindUpstreamUnavailable, "billing.GetCost", err)
	}

	var total float64
	for _, b := range buckets {
		total += b.Total
	}
	return total, nil
}

// GetCostByCategory returns per-service costs for [start, end) at MONTHLY
// granularity. A service reported in several buckets is summed.
func (r *Reader) GetCostByCategory(ctx context.Context, start, end string) (map[string]float64, error) {
	buckets, err := r.source.Query(ctx, models.BillingQuery{
		Start:           start,
		End:             end,
		Granularity:     models.GranularityMonthly,
		GroupByCategory: true,
	})
	if err != nil {
		return nil, models.NewError(models.KindUpstreamUnavailable, "billing.GetCostByCategory", err)
	}

	totals := make(map[string]float64)
	for _, b := range buckets {
		for service, cost := range b.Groups {
			totals[service] += cost
		}
	}
	return totals, nil
}

// ---------------------------------------------------------------------------
// Windows and snapshot
// ---------------------------------------------------------------------------

// Window is a half-open [Start, End) date range in the billing source format.
type Window struct {
	Start string
	End   string
}

// Windows returns the daily and weekly windows ending on now's UTC date.
// The daily window covers yesterday and the weekly window the previous
// seven days.
func Windows(now time.Time) (daily, weekly Window) {
	end := now.UTC().Truncate(24 * time.Hour)
	endStr := end.Format(dateLayout)
	daily = Window{Start: end.AddDate(0, 0, -1).Format(dateLayout), End: endStr}
	weekly = Window{Start: end.AddDate(0, 0, -7).Format(dateLayout), End: endStr}
	return daily, weekly
}

// Snapshot is the set of billing figures one cost monitor run needs.
type Snapshot struct {
	DailyCost  float64
	WeeklyCost float64
	// ByService covers the weekly window at MONTHLY granularity, so its sum
	// need not match WeeklyCost.
	ByService map[string]float64
}

// Snapshot runs the daily, weekly and per-service queries concurrently.
// Queries are not cancelled when a sibling fails; the first error is
// returned once all three have finished.
func (r *Reader) Snapshot(ctx context.Context, now time.Time) (*Snapshot, error) {
	daily, weekly := Windows(now)

	var (
		g    errgroup.Group
		snap Snapshot
	)
	g.Go(func() error {
		cost, err := r.GetCost(ctx, daily.Start, daily.End, models.GranularityDaily)
		snap.DailyCost = cost
		return err
	})
	g.Go(func() error {
		cost, err := r.GetCost(ctx, weekly.Start, weekly.End, models.GranularityDaily)
		snap.WeeklyCost = cost
		return err
	})
	g.Go(func() error {
		byService, err := r.GetCostByCategory(ctx, weekly.Start, weekly.End)
		snap.ByService = byService
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// TopServices returns at most n services ordered by cost descending. Ties are
// broken by service name ascending so the order is deterministic.
func TopServices(costs map[string]float64, n int) []models.ServiceCost {
	out := make([]models.ServiceCost, 0, len(costs))
	for service, cost := range costs {
		out = append(out, models.ServiceCost{Service: service, CostUSD: cost})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CostUSD != out[j].CostUSD {
			return out[i].CostUSD > out[j].CostUSD
		}
		return out[i].Service < out[j].Service
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
