package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

const (
	// costExplorerRegion is the only region serving the Cost Explorer API.
	costExplorerRegion = "us-east-1"

	// fallbackRegion is used when neither configuration nor the shared
	// profile names a region.
	fallbackRegion = "us-east-1"
)

// LoadOptions selects the credentials, region and retry budget of a Session.
type LoadOptions struct {
	// Profile is a shared-config profile name. Empty uses the default chain.
	Profile string

	// Region overrides the profile/environment region when set.
	Region string

	// MaxAttempts bounds the SDK retryer, including the first attempt.
	// Zero keeps the SDK default.
	MaxAttempts int

	// AccountID skips the STS lookup when already known.
	AccountID string
}

// Session is a resolved AWS configuration with its account id and service
// clients. It is built once per invocation and handed to the provider
// adapters.
type Session struct {
	AccountID string
	Region    string
	Config    aws.Config
	Clients   *ClientSet
}

// SessionLoader builds Sessions. It is the sole entry point for AWS
// credential and region handling.
type SessionLoader interface {
	Load(ctx context.Context, opts LoadOptions) (*Session, error)
}
