package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	ec2Namespace = "AWS/EC2"

	// samplePeriod is one day, giving seven points for a 7-day window.
	samplePeriod = 86400
)

// Metrics reads EC2 utilisation from CloudWatch.
type Metrics struct {
	client metricsClient
	now    func() time.Time
}

// NewMetrics returns a Metrics backed by client.
func NewMetrics(client metricsClient) *Metrics {
	return &Metrics{client: client, now: time.Now}
}

// GetUtilization returns the daily Average datapoints of metric for the
// instance over the trailing window. An empty result means no data.
func (m *Metrics) GetUtilization(ctx context.Context, instanceID, metric string, window time.Duration) ([]float64, error) {
	end := m.now().UTC()
	start := end.Add(-window)

	out, err := m.client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(ec2Namespace),
		MetricName: aws.String(metric),
		Dimensions: []cwtypes.Dimension{{
			Name:  aws.String("InstanceId"),
			Value: aws.String(instanceID),
		}},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(samplePeriod),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	})
	if err != nil {
		return nil, fmt.Errorf("GetMetricStatistics %s %s: %w", metric, instanceID, err)
	}

	samples := make([]float64, 0, len(out.Datapoints))
	for _, dp := range out.Datapoints {
		if dp.Average != nil {
			samples = append(samples, *dp.Average)
		}
	}
	return samples, nil
}
