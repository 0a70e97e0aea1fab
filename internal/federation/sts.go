package federation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-authgate/authbridge/internal/core"
	"github.com/go-authgate/authbridge/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

var _ core.IdentityResolver = (*STSResolver)(nil)

// STSClient defines the interface for STS operations, enabling mock injection for testing.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// ClientFactory builds an STS client on first use.
type ClientFactory func(ctx context.Context) (STSClient, error)

// SharedProfileClientFactory loads credentials from a named shared profile.
// The region is optional; STS is a global endpoint.
func SharedProfileClientFactory(profile, region string) ClientFactory {
	return func(ctx context.Context) (STSClient, error) {
		opts := []func(*config.LoadOptions) error{}
		if profile != "" {
			opts = append(opts, config.WithSharedConfigProfile(profile))
		}
		if region != "" {
			opts = append(opts, config.WithRegion(region))
		}

		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
		}
		if cfg.Region == "" {
			cfg.Region = "us-east-1"
		}

		return sts.NewFromConfig(cfg), nil
	}
}

// STSResolver resolves the gateway's own AWS credentials to a caller
// identity. Identities may be cached for a TTL; failures never are.
type STSResolver struct {
	newClient ClientFactory
	profile   string
	timeout   time.Duration
	cache     core.Cache[core.FederatedIdentity]
	cacheTTL  time.Duration

	mu     sync.Mutex
	client STSClient
}

// NewSTSResolver creates a resolver. The client is built lazily so a
// missing profile surfaces as a per-request federation failure.
func NewSTSResolver(
	newClient ClientFactory,
	profile string,
	timeout time.Duration,
	cache core.Cache[core.FederatedIdentity],
	cacheTTL time.Duration,
) *STSResolver {
	return &STSResolver{
		newClient: newClient,
		profile:   profile,
		timeout:   timeout,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// ResolveIdentity returns the caller identity, from cache when enabled.
func (r *STSResolver) ResolveIdentity(ctx context.Context) (*core.FederatedIdentity, error) {
	if r.cache == nil || r.cacheTTL <= 0 {
		return r.fetch(ctx)
	}

	identity, err := r.cache.GetWithFetch(ctx, r.cacheKey(), r.cacheTTL,
		func(ctx context.Context, _ string) (core.FederatedIdentity, error) {
			id, err := r.fetch(ctx)
			if err != nil {
				return core.FederatedIdentity{}, err
			}
			return *id, nil
		},
	)
	if err != nil {
		if errors.Is(err, ErrFederationFailed) {
			return nil, err
		}
		// Cache backend trouble must not block logins.
		logger.Warnw("federation cache unavailable, calling STS directly", "error", err)
		return r.fetch(ctx)
	}
	return &identity, nil
}

// Cached reports whether an identity is currently cached.
func (r *STSResolver) Cached(ctx context.Context) bool {
	if r.cache == nil || r.cacheTTL <= 0 {
		return false
	}
	_, err := r.cache.Get(ctx, r.cacheKey())
	return err == nil
}

func (r *STSResolver) cacheKey() string {
	return "federation:identity:" + r.profile
}

func (r *STSResolver) stsClient(ctx context.Context) (STSClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	client, err := r.newClient(ctx)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

func (r *STSResolver) fetch(ctx context.Context) (*core.FederatedIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	client, err := r.stsClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFederationFailed, err)
	}

	output, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		logger.Debugf("STS GetCallerIdentity failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrFederationFailed, err)
	}
	if output == nil || output.Arn == nil {
		return nil, fmt.Errorf("%w: %v", ErrFederationFailed, ErrEmptyIdentity)
	}

	identity := &core.FederatedIdentity{
		UserID:  aws.ToString(output.UserId),
		Account: aws.ToString(output.Account),
		Arn:     aws.ToString(output.Arn),
	}
	if requestID, ok := awsmiddleware.GetRequestIDMetadata(output.ResultMetadata); ok {
		identity.ResponseMetadata.RequestID = requestID
	}
	return identity, nil
}

// Name returns provider name for logging
func (r *STSResolver) Name() string {
	return "aws_sts"
}
