package models

import "time"

// ---------------------------------------------------------------------------
// Raw inventory records (returned by the inventory source, consumed by rules)
// ---------------------------------------------------------------------------

// InstanceRecord represents a single running compute instance.
type InstanceRecord struct {
	InstanceID   string            `json:"instance_id"`
	InstanceType string            `json:"instance_type"`
	State        string            `json:"state"`
	LaunchTime   time.Time         `json:"launch_time"`
	Tags         map[string]string `json:"tags,omitempty"`
}

// VolumeRecord represents a single block storage volume.
type VolumeRecord struct {
	VolumeID   string            `json:"volume_id"`
	VolumeType string            `json:"volume_type"`
	SizeGB     int32             `json:"size_gb"`
	State      string            `json:"state"`
	CreateTime time.Time         `json:"create_time"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// SnapshotRecord represents a single volume snapshot owned by the account.
type SnapshotRecord struct {
	SnapshotID  string            `json:"snapshot_id"`
	VolumeID    string            `json:"volume_id"`
	SizeGB      int32             `json:"size_gb"`
	StartTime   time.Time         `json:"start_time"`
	Description string            `json:"description"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// AddressRecord represents a single allocated public address. AssociationID is
// empty when the address is not associated with any instance or interface.
type AddressRecord struct {
	AllocationID  string `json:"allocation_id"`
	PublicIP      string `json:"public_ip"`
	Domain        string `json:"domain"`
	AssociationID string `json:"association_id,omitempty"`
}
