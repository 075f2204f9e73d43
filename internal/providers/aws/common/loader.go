package common

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// maxRetryBackoff caps the exponential backoff between SDK retries.
const maxRetryBackoff = 20 * time.Second

// DefaultSessionLoader is the production SessionLoader. It reads credentials
// through the standard SDK chain (environment, shared files, execution role).
//
// Inject a custom ClientFactory via NewDefaultSessionLoaderWithFactory to
// replace real SDK clients with mocks in unit tests.
type DefaultSessionLoader struct {
	factory ClientFactory
}

// NewDefaultSessionLoader returns a loader backed by the real AWS SDK.
func NewDefaultSessionLoader() *DefaultSessionLoader {
	return &DefaultSessionLoader{factory: NewClientSet}
}

// NewDefaultSessionLoaderWithFactory returns a loader that uses f to create
// its ClientSet. Pass a mock factory in tests.
func NewDefaultSessionLoaderWithFactory(f ClientFactory) *DefaultSessionLoader {
	return &DefaultSessionLoader{factory: f}
}

// Load resolves the SDK configuration, builds the clients and, when
// opts.AccountID is empty, resolves the account id through STS.
func (l *DefaultSessionLoader) Load(ctx context.Context, opts LoadOptions) (*Session, error) {
	cfg, err := LoadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return l.FromConfig(ctx, cfg, opts.AccountID)
}

// FromConfig builds a Session from an already loaded configuration.
func (l *DefaultSessionLoader) FromConfig(ctx context.Context, cfg aws.Config, accountID string) (*Session, error) {
	if cfg.Region == "" {
		cfg.Region = fallbackRegion
	}
	clients := l.factory(cfg)

	if accountID == "" {
		id, err := ResolveAccountID(ctx, clients.STS)
		if err != nil {
			return nil, err
		}
		accountID = id
	}
	return &Session{AccountID: accountID, Region: cfg.Region, Config: cfg, Clients: clients}, nil
}

// LoadAWSConfig wraps config.LoadDefaultConfig with the profile, region and a
// standard retryer using exponential backoff with jitter.
func LoadAWSConfig(ctx context.Context, opts LoadOptions) (aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				if opts.MaxAttempts > 0 {
					o.MaxAttempts = opts.MaxAttempts
				}
				o.MaxBackoff = maxRetryBackoff
			})
		}),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config (profile %q): %w", profileDisplayName(opts.Profile), err)
	}
	return cfg, nil
}

// ResolveAccountID calls STS GetCallerIdentity to retrieve the numeric
// account id for the loaded credentials.
func ResolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}

// profileDisplayName shows the default profile as "default".
func profileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}
