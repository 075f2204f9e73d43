// Package inventory lists EC2 resources, issues the cleanup actions against
// them and reads their CloudWatch utilisation.
package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the SDK operations used by this package. The real
// *ec2.Client and *cloudwatch.Client satisfy them; tests pass stub structs.
// ---------------------------------------------------------------------------

// describeClient covers inventory listing. It also satisfies the SDK
// paginator client interfaces for instances, volumes and snapshots.
type describeClient interface {
	DescribeInstances(ctx context.Context, params *ec2svc.DescribeInstancesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2svc.DescribeVolumesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeVolumesOutput, error)
	DescribeSnapshots(ctx context.Context, params *ec2svc.DescribeSnapshotsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSnapshotsOutput, error)
	DescribeAddresses(ctx context.Context, params *ec2svc.DescribeAddressesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeAddressesOutput, error)
}

// actionClient covers the mutating cleanup calls.
type actionClient interface {
	StopInstances(ctx context.Context, params *ec2svc.StopInstancesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.StopInstancesOutput, error)
	DeleteVolume(ctx context.Context, params *ec2svc.DeleteVolumeInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DeleteVolumeOutput, error)
	DeleteSnapshot(ctx context.Context, params *ec2svc.DeleteSnapshotInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DeleteSnapshotOutput, error)
	ReleaseAddress(ctx context.Context, params *ec2svc.ReleaseAddressInput, optFns ...func(*ec2svc.Options)) (*ec2svc.ReleaseAddressOutput, error)
}

// metricsClient covers CloudWatch statistics. It must use the regional
// config of the instances it queries.
type metricsClient interface {
	GetMetricStatistics(
		ctx context.Context,
		params *cloudwatch.GetMetricStatisticsInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricStatisticsOutput, error)
}
