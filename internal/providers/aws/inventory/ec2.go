package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/costwatch/internal/models"
)

// EC2 lists raw inventory records from one region.
type EC2 struct {
	client describeClient
}

// NewEC2 returns an inventory lister backed by client.
func NewEC2(client describeClient) *EC2 {
	return &EC2{client: client}
}

// ListRunningInstances pages through all instances in the running state.
func (e *EC2) ListRunningInstances(ctx context.Context) ([]models.InstanceRecord, error) {
	paginator := ec2svc.NewDescribeInstancesPaginator(e.client, &ec2svc.DescribeInstancesInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{"running"},
		}},
	})

	instances := []models.InstanceRecord{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeInstances page: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, toInstanceRecord(inst))
			}
		}
	}
	return instances, nil
}

// ListAvailableVolumes pages through all volumes in the available (detached)
// state.
func (e *EC2) ListAvailableVolumes(ctx context.Context) ([]models.VolumeRecord, error) {
	paginator := ec2svc.NewDescribeVolumesPaginator(e.client, &ec2svc.DescribeVolumesInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("status"),
			Values: []string{"available"},
		}},
	})

	volumes := []models.VolumeRecord{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeVolumes page: %w", err)
		}
		for _, v := range page.Volumes {
			volumes = append(volumes, toVolumeRecord(v))
		}
	}
	return volumes, nil
}

// ListOwnedSnapshots pages through every snapshot owned by the account.
func (e *EC2) ListOwnedSnapshots(ctx context.Context) ([]models.SnapshotRecord, error) {
	paginator := ec2svc.NewDescribeSnapshotsPaginator(e.client, &ec2svc.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})

	snapshots := []models.SnapshotRecord{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("DescribeSnapshots page: %w", err)
		}
		for _, s := range page.Snapshots {
			snapshots = append(snapshots, toSnapshotRecord(s))
		}
	}
	return snapshots, nil
}

// ListAddresses returns every allocated address. DescribeAddresses is not
// paginated.
func (e *EC2) ListAddresses(ctx context.Context) ([]models.AddressRecord, error) {
	out, err := e.client.DescribeAddresses(ctx, &ec2svc.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("DescribeAddresses: %w", err)
	}
	addrs := make([]models.AddressRecord, 0, len(out.Addresses))
	for _, a := range out.Addresses {
		addrs = append(addrs, models.AddressRecord{
			AllocationID:  aws.ToString(a.AllocationId),
			PublicIP:      aws.ToString(a.PublicIp),
			Domain:        string(a.Domain),
			AssociationID: aws.ToString(a.AssociationId),
		})
	}
	return addrs, nil
}

// ---------------------------------------------------------------------------
// SDK → model conversion
// ---------------------------------------------------------------------------

func toInstanceRecord(inst ec2types.Instance) models.InstanceRecord {
	var state string
	if inst.State != nil {
		state = string(inst.State.Name)
	}
	return models.InstanceRecord{
		InstanceID:   aws.ToString(inst.InstanceId),
		InstanceType: string(inst.InstanceType),
		State:        state,
		LaunchTime:   timeOrZero(inst.LaunchTime),
		Tags:         tagsFromEC2(inst.Tags),
	}
}

func toVolumeRecord(v ec2types.Volume) models.VolumeRecord {
	return models.VolumeRecord{
		VolumeID:   aws.ToString(v.VolumeId),
		VolumeType: string(v.VolumeType),
		SizeGB:     aws.ToInt32(v.Size),
		State:      string(v.State),
		CreateTime: timeOrZero(v.CreateTime),
		Tags:       tagsFromEC2(v.Tags),
	}
}

func toSnapshotRecord(s ec2types.Snapshot) models.SnapshotRecord {
	return models.SnapshotRecord{
		SnapshotID:  aws.ToString(s.SnapshotId),
		VolumeID:    aws.ToString(s.VolumeId),
		SizeGB:      aws.ToInt32(s.VolumeSize),
		StartTime:   timeOrZero(s.StartTime),
		Description: aws.ToString(s.Description),
		Tags:        tagsFromEC2(s.Tags),
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

// tagsFromEC2 converts EC2 SDK tags to a plain string map. Tags with a nil
// key are dropped; a nil value becomes "".
func tagsFromEC2(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		if t.Key != nil {
			m[*t.Key] = aws.ToString(t.Value)
		}
	}
	return m
}
