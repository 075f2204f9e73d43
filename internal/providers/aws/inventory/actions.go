package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/pankaj-dahiya-devops/costwatch/internal/providers/aws/common"
)

// Actions issues the mutating cleanup calls. A target that no longer exists
// is reported as models.ErrResourceGone.
type Actions struct {
	client actionClient
}

// NewActions returns an Actions backed by client.
func NewActions(client actionClient) *Actions {
	return &Actions{client: client}
}

// StopInstance stops (never terminates) the instance.
func (a *Actions) StopInstance(ctx context.Context, instanceID string) error {
	_, err := a.client.StopInstances(ctx, &ec2svc.StopInstancesInput{InstanceIds: []string{instanceID}})
	return common.ClassifyActionError("StopInstances "+instanceID, err)
}

func (a *Actions) DeleteVolume(ctx context.Context, volumeID string) error {
	_, err := a.client.DeleteVolume(ctx, &ec2svc.DeleteVolumeInput{VolumeId: aws.String(volumeID)})
	return common.ClassifyActionError("DeleteVolume "+volumeID, err)
}

func (a *Actions) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	_, err := a.client.DeleteSnapshot(ctx, &ec2svc.DeleteSnapshotInput{SnapshotId: aws.String(snapshotID)})
	return common.ClassifyActionError("DeleteSnapshot "+snapshotID, err)
}

// ReleaseAddress releases a VPC address by allocation id.
func (a *Actions) ReleaseAddress(ctx context.Context, allocationID string) error {
	_, err := a.client.ReleaseAddress(ctx, &ec2svc.ReleaseAddressInput{AllocationId: aws.String(allocationID)})
	return common.ClassifyActionError("ReleaseAddress "+allocationID, err)
}
