// Package billing is the Cost Explorer implementation of the billing source.
package billing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

const (
	costMetric   = "UnblendedCost"
	serviceGroup = "SERVICE"
)

// ceClient covers the Cost Explorer operations used by this package.
// Cost Explorer is a global service; the client must target us-east-1.
type ceClient interface {
	GetCostAndUsage(
		ctx context.Context,
		params *ce.GetCostAndUsageInput,
		optFns ...func(*ce.Options),
	) (*ce.GetCostAndUsageOutput, error)
}

// Source queries Cost Explorer GetCostAndUsage.
type Source struct {
	client ceClient
}

// NewSource returns a Source backed by client.
func NewSource(client ceClient) *Source {
	return &Source{client: client}
}

// Query pages through GetCostAndUsage for q until NextPageToken is exhausted
// and returns one bucket per result period, in the order returned.
func (s *Source) Query(ctx context.Context, q models.BillingQuery) ([]models.CostBucket, error) {
	input := &ce.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(q.Start),
			End:   aws.String(q.End),
		},
		Granularity: granularity(q.Granularity),
		Metrics:     []string{costMetric},
	}
	if q.GroupByCategory {
		input.GroupBy = []cetypes.GroupDefinition{{
			Key:  aws.String(serviceGroup),
			Type: cetypes.GroupDefinitionTypeDimension,
		}}
	}

	var buckets []models.CostBucket
	for {
		out, err := s.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("GetCostAndUsage %s..%s: %w", q.Start, q.End, err)
		}
		for _, result := range out.ResultsByTime {
			buckets = append(buckets, toBucket(result, q.GroupByCategory))
		}
		if out.NextPageToken == nil {
			break
		}
		input.NextPageToken = out.NextPageToken
	}
	return buckets, nil
}

// toBucket converts one result period. Grouped results carry no period
// total, so the bucket total is the sum of its groups.
func toBucket(r cetypes.ResultByTime, grouped bool) models.CostBucket {
	b := models.CostBucket{}
	if r.TimePeriod != nil {
		b.Start = aws.ToString(r.TimePeriod.Start)
		b.End = aws.ToString(r.TimePeriod.End)
	}
	if !grouped {
		if m, ok := r.Total[costMetric]; ok {
			b.Total = parseCostFloat(m.Amount)
		}
		return b
	}

	b.Groups = make(map[string]float64, len(r.Groups))
	for _, g := range r.Groups {
		if len(g.Keys) == 0 {
			continue
		}
		m, ok := g.Metrics[costMetric]
		if !ok {
			continue
		}
		cost := parseCostFloat(m.Amount)
		b.Groups[g.Keys[0]] += cost
		b.Total += cost
	}
	return b
}

func granularity(g models.Granularity) cetypes.Granularity {
	if g == models.GranularityMonthly {
		return cetypes.GranularityMonthly
	}
	return cetypes.GranularityDaily
}

// parseCostFloat parses a Cost Explorer amount string such as "1234.5678".
// Returns 0 on parse failure.
func parseCostFloat(s *string) float64 {
	if s == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(*s, 64)
	return v
}
