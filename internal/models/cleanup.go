package models

import "time"

// CandidateKind identifies one of the four cleanup candidate categories.
type CandidateKind string

const (
	KindIdleInstance     CandidateKind = "idle_instances"
	KindUnattachedVolume CandidateKind = "unattached_volumes"
	KindOldSnapshot      CandidateKind = "old_snapshots"
	KindIdleElasticIP    CandidateKind = "idle_elastic_ips"
)

// IdleInstance is a running instance whose average CPU stayed below the idle
// threshold over the lookback window.
type IdleInstance struct {
	InstanceID   string            `json:"instance_id"`
	InstanceType string            `json:"instance_type"`
	AvgCPU       float64           `json:"avg_cpu"`
	LaunchTime   time.Time         `json:"launch_time"`
	Tags         map[string]string `json:"tags"`
}

// UnattachedVolume is an available (detached) volume older than the age limit.
type UnattachedVolume struct {
	VolumeID   string            `json:"volume_id"`
	SizeGB     int32             `json:"size"`
	VolumeType string            `json:"volume_type"`
	CreateTime time.Time         `json:"create_time"`
	AgeDays    int               `json:"age_days"`
	Tags       map[string]string `json:"tags"`
}

// OldSnapshot is a snapshot older than the age limit that carries no "keep" tag.
type OldSnapshot struct {
	SnapshotID  string    `json:"snapshot_id"`
	VolumeID    string    `json:"volume_id"`
	SizeGB      int32     `json:"size"`
	StartTime   time.Time `json:"start_time"`
	AgeDays     int       `json:"age_days"`
	Description string    `json:"description"`
}

// IdleElasticIP is an allocated public address with no association.
type IdleElasticIP struct {
	AllocationID string `json:"allocation_id"`
	PublicIP     string `json:"public_ip"`
	Domain       string `json:"domain"`
}

// Candidates groups the discovery results of one scan, one ordered slice per
// kind. Slices keep discovery order.
type Candidates struct {
	IdleInstances     []IdleInstance     `json:"idle_instances"`
	UnattachedVolumes []UnattachedVolume `json:"unattached_volumes"`
	OldSnapshots      []OldSnapshot      `json:"old_snapshots"`
	IdleElasticIPs    []IdleElasticIP    `json:"idle_elastic_ips"`
}

// Total returns the number of candidates across all kinds.
func (c Candidates) Total() int {
	return len(c.IdleInstances) + len(c.UnattachedVolumes) + len(c.OldSnapshots) + len(c.IdleElasticIPs)
}

// CleanupReport is the snapshot produced by one resource cleanup run.
// ActionsTaken is non-empty only when DryRun is false and CleanupEnabled is true.
type CleanupReport struct {
	ReportID       string    `json:"report_id"`
	Timestamp      time.Time `json:"timestamp"`
	DryRun         bool      `json:"dry_run"`
	CleanupEnabled bool      `json:"cleanup_enabled"`
	Candidates
	ActionsTaken     []string          `json:"actions_taken"`
	EstimatedSavings float64           `json:"estimated_savings"`
	DiscoveryErrors  map[string]string `json:"discovery_errors,omitempty"`
}
