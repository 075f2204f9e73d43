package rules

import "github.com/pankaj-dahiya-devops/costwatch/internal/models"

const volumeStateAvailable = "available"

// UnattachedVolume flags a volume in the "available" state created strictly
// before now minus VolumeAgeDays.
func UnattachedVolume(ctx RuleContext, v models.VolumeRecord) (models.UnattachedVolume, bool) {
	if v.State != volumeStateAvailable {
		return models.UnattachedVolume{}, false
	}
	if !v.CreateTime.Before(ctx.cutoff(ctx.Thresholds.VolumeAgeDays)) {
		return models.UnattachedVolume{}, false
	}
	return models.UnattachedVolume{
		VolumeID:   v.VolumeID,
		SizeGB:     v.SizeGB,
		VolumeType: v.VolumeType,
		CreateTime: v.CreateTime,
		AgeDays:    AgeDays(ctx.Now, v.CreateTime),
		Tags:       copyTags(v.Tags),
	}, true
}

// UnattachedVolumes applies UnattachedVolume to every record, keeping order.
func UnattachedVolumes(ctx RuleContext, vols []models.VolumeRecord) []models.UnattachedVolume {
	out := []models.UnattachedVolume{}
	for _, v := range vols {
		if c, ok := UnattachedVolume(ctx, v); ok {
			out = append(out, c)
		}
	}
	return out
}
