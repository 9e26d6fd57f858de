package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"go.uber.org/zap"
)

// iamAPI is the subset of the IAM client the deployer uses.
type iamAPI interface {
	CreatePolicy(ctx context.Context, params *iam.CreatePolicyInput, optFns ...func(*iam.Options)) (*iam.CreatePolicyOutput, error)
	ListPolicies(ctx context.Context, params *iam.ListPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListPoliciesOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
}

// autoscalingAPI is the subset of the Auto Scaling client the deployer uses.
type autoscalingAPI interface {
	CreateOrUpdateTags(ctx context.Context, params *autoscaling.CreateOrUpdateTagsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.CreateOrUpdateTagsOutput, error)
}

// eksAPI is the subset of the EKS client the deployer uses.
type eksAPI interface {
	ListNodegroups(ctx context.Context, params *eks.ListNodegroupsInput, optFns ...func(*eks.Options)) (*eks.ListNodegroupsOutput, error)
	DescribeNodegroup(ctx context.Context, params *eks.DescribeNodegroupInput, optFns ...func(*eks.Options)) (*eks.DescribeNodegroupOutput, error)
}

// Client bundles the AWS service clients behind the operations the
// deployer performs.
type Client struct {
	iam    iamAPI
	asg    autoscalingAPI
	eks    eksAPI
	logger *zap.Logger
}

// Options configures client construction. All fields are optional; the
// default credential chain and region resolution apply when unset.
type Options struct {
	Region    string
	AccessKey string
	SecretKey string
}

// NewClient builds a Client from the default AWS configuration, with
// optional static credentials and region override.
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		iam:    iam.NewFromConfig(cfg),
		asg:    autoscaling.NewFromConfig(cfg),
		eks:    eks.NewFromConfig(cfg),
		logger: logger,
	}, nil
}

// NewFromAPIs creates a Client from pre-built service clients, for tests.
func NewFromAPIs(iamClient iamAPI, asgClient autoscalingAPI, eksClient eksAPI, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		iam:    iamClient,
		asg:    asgClient,
		eks:    eksClient,
		logger: logger,
	}
}
