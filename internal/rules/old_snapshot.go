package rules

import (
	"strings"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

const (
	keepTagKey = "keep"

	// noVolumeID stands in for snapshots whose source volume is unknown.
	noVolumeID = "N/A"
)

// HasKeepTag reports whether tags contain a key equal to "keep" in any case.
// The tag value is ignored.
func HasKeepTag(tags map[string]string) bool {
	for k := range tags {
		if strings.EqualFold(k, keepTagKey) {
			return true
		}
	}
	return false
}

// OldSnapshot flags a snapshot started strictly before now minus
// SnapshotAgeDays. A "keep" tag exempts the snapshot regardless of age.
func OldSnapshot(ctx RuleContext, s models.SnapshotRecord) (models.OldSnapshot, bool) {
	if HasKeepTag(s.Tags) {
		return models.OldSnapshot{}, false
	}
	if !s.StartTime.Before(ctx.cutoff(ctx.Thresholds.SnapshotAgeDays)) {
		return models.OldSnapshot{}, false
	}
	volumeID := s.VolumeID
	if volumeID == "" {
		volumeID = noVolumeID
	}
	return models.OldSnapshot{
		SnapshotID:  s.SnapshotID,
		VolumeID:    volumeID,
		SizeGB:      s.SizeGB,
		StartTime:   s.StartTime,
		AgeDays:     AgeDays(ctx.Now, s.StartTime),
		Description: s.Description,
	}, true
}

// OldSnapshots applies OldSnapshot to every record, keeping order.
func OldSnapshots(ctx RuleContext, snaps []models.SnapshotRecord) []models.OldSnapshot {
	out := []models.OldSnapshot{}
	for _, s := range snaps {
		if c, ok := OldSnapshot(ctx, s); ok {
			out = append(out, c)
		}
	}
	return out
}
