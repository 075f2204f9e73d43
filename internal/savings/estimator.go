// Package savings estimates the monthly cost recovered by removing cleanup
// candidates, using a static cost model.
package savings

import (
	"github.com/shopspring/decimal"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

var (
	// volumePerGBMonth approximates gp3 storage pricing.
	volumePerGBMonth = decimal.RequireFromString("0.10")

	// snapshotPerGBMonth approximates standard-tier snapshot storage pricing.
	snapshotPerGBMonth = decimal.RequireFromString("0.05")

	// elasticIPMonth is $0.005/hour for an unassociated address.
	elasticIPMonth = decimal.RequireFromString("3.60")

	// defaultInstanceMonth applies to instance types missing from instanceMonthly.
	defaultInstanceMonth = decimal.RequireFromString("50")

	instanceMonthly = map[string]decimal.Decimal{
		"t2.micro":  decimal.RequireFromString("8.50"),
		"t2.small":  decimal.RequireFromString("17"),
		"t2.medium": decimal.RequireFromString("34"),
		"t3.micro":  decimal.RequireFromString("7.50"),
		"t3.small":  decimal.RequireFromString("15"),
		"t3.medium": decimal.RequireFromString("30"),
		"t3.large":  decimal.RequireFromString("60"),
		"t3.xlarge": decimal.RequireFromString("120"),
	}
)

// Breakdown holds the estimated monthly savings per candidate kind and in
// total. Values are rounded to cents.
type Breakdown struct {
	IdleInstances     float64 `json:"idle_instances"`
	UnattachedVolumes float64 `json:"unattached_volumes"`
	OldSnapshots      float64 `json:"old_snapshots"`
	IdleElasticIPs    float64 `json:"idle_elastic_ips"`
	Total             float64 `json:"total"`
}

// Estimate returns the total estimated monthly savings for c.
func Estimate(c models.Candidates) float64 {
	return EstimateBreakdown(c).Total
}

// EstimateBreakdown sums each kind exactly and rounds once per figure, so the
// result does not depend on candidate order.
func EstimateBreakdown(c models.Candidates) Breakdown {
	var instances, volumes, snapshots, ips decimal.Decimal

	for _, inst := range c.IdleInstances {
		instances = instances.Add(InstanceMonthlyCost(inst.InstanceType))
	}
	for _, v := range c.UnattachedVolumes {
		volumes = volumes.Add(VolumeMonthlyCost(v.SizeGB))
	}
	for _, s := range c.OldSnapshots {
		snapshots = snapshots.Add(SnapshotMonthlyCost(s.SizeGB))
	}
	ips = ElasticIPMonthlyCost().Mul(decimal.NewFromInt(int64(len(c.IdleElasticIPs))))

	total := decimal.Sum(instances, volumes, snapshots, ips)

	return Breakdown{
		IdleInstances:     instances.Round(2).InexactFloat64(),
		UnattachedVolumes: volumes.Round(2).InexactFloat64(),
		OldSnapshots:      snapshots.Round(2).InexactFloat64(),
		IdleElasticIPs:    ips.Round(2).InexactFloat64(),
		Total:             total.Round(2).InexactFloat64(),
	}
}

// InstanceMonthlyCost looks up the monthly cost of instanceType.
func InstanceMonthlyCost(instanceType string) decimal.Decimal {
	if c, ok := instanceMonthly[instanceType]; ok {
		return c
	}
	return defaultInstanceMonth
}

// VolumeMonthlyCost is the storage cost of a volume of sizeGB.
func VolumeMonthlyCost(sizeGB int32) decimal.Decimal {
	return decimal.NewFromInt32(sizeGB).Mul(volumePerGBMonth)
}

// SnapshotMonthlyCost is the storage cost of a snapshot of sizeGB.
func SnapshotMonthlyCost(sizeGB int32) decimal.Decimal {
	return decimal.NewFromInt32(sizeGB).Mul(snapshotPerGBMonth)
}

// ElasticIPMonthlyCost is the charge for one unassociated address.
func ElasticIPMonthlyCost() decimal.Decimal {
	return elasticIPMonth
}
