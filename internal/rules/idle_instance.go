package rules

import "github.com/pankaj-dahiya-devops/costwatch/internal/models"

// unknownUtilization is the CPU figure assumed when no samples exist, so an
// instance is never flagged on missing data.
const unknownUtilization = 100.0

// AverageUtilization returns the mean of samples, or 100 when there are none.
func AverageUtilization(samples []float64) float64 {
	if len(samples) == 0 {
		return unknownUtilization
	}
	var total float64
	for _, s := range samples {
		total += s
	}
	return total / float64(len(samples))
}

// IdleInstance flags a running instance whose average CPU over the sampled
// window is strictly below the idle threshold.
func IdleInstance(ctx RuleContext, inst models.InstanceRecord, cpuSamples []float64) (models.IdleInstance, bool) {
	if inst.State != "running" {
		return models.IdleInstance{}, false
	}
	avg := AverageUtilization(cpuSamples)
	if avg >= ctx.Thresholds.CPUIdleThresholdPercent {
		return models.IdleInstance{}, false
	}
	return models.IdleInstance{
		InstanceID:   inst.InstanceID,
		InstanceType: inst.InstanceType,
		AvgCPU:       avg,
		LaunchTime:   inst.LaunchTime,
		Tags:         copyTags(inst.Tags),
	}, true
}
