package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	ekstypes "github.com/aws/aws-sdk-go-v2/service/eks/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkotas/ekscaler/internal/addons"
)

type fakeIAM struct {
	createPolicy     func(*iam.CreatePolicyInput) (*iam.CreatePolicyOutput, error)
	listPolicies     func(*iam.ListPoliciesInput) (*iam.ListPoliciesOutput, error)
	attachRolePolicy func(*iam.AttachRolePolicyInput) (*iam.AttachRolePolicyOutput, error)
}

func (f *fakeIAM) CreatePolicy(_ context.Context, params *iam.CreatePolicyInput, _ ...func(*iam.Options)) (*iam.CreatePolicyOutput, error) {
	return f.createPolicy(params)
}

func (f *fakeIAM) ListPolicies(_ context.Context, params *iam.ListPoliciesInput, _ ...func(*iam.Options)) (*iam.ListPoliciesOutput, error) {
	return f.listPolicies(params)
}

func (f *fakeIAM) AttachRolePolicy(_ context.Context, params *iam.AttachRolePolicyInput, _ ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	return f.attachRolePolicy(params)
}

type fakeASG struct {
	createOrUpdateTags func(*autoscaling.CreateOrUpdateTagsInput) (*autoscaling.CreateOrUpdateTagsOutput, error)
}

func (f *fakeASG) CreateOrUpdateTags(_ context.Context, params *autoscaling.CreateOrUpdateTagsInput, _ ...func(*autoscaling.Options)) (*autoscaling.CreateOrUpdateTagsOutput, error) {
	return f.createOrUpdateTags(params)
}

type fakeEKS struct {
	listNodegroups    func(*eks.ListNodegroupsInput) (*eks.ListNodegroupsOutput, error)
	describeNodegroup func(*eks.DescribeNodegroupInput) (*eks.DescribeNodegroupOutput, error)
}

func (f *fakeEKS) ListNodegroups(_ context.Context, params *eks.ListNodegroupsInput, _ ...func(*eks.Options)) (*eks.ListNodegroupsOutput, error) {
	return f.listNodegroups(params)
}

func (f *fakeEKS) DescribeNodegroup(_ context.Context, params *eks.DescribeNodegroupInput, _ ...func(*eks.Options)) (*eks.DescribeNodegroupOutput, error) {
	return f.describeNodegroup(params)
}

func testPolicy() addons.PolicyDocument {
	return addons.PolicyDocument{
		Version: "2012-10-17",
		Statement: []addons.PolicyStatement{
			{Effect: "Allow", Action: []string{"autoscaling:DescribeTags"}, Resource: "*"},
		},
	}
}

func TestEnsurePolicyCreates(t *testing.T) {
	var captured *iam.CreatePolicyInput
	client := NewFromAPIs(&fakeIAM{
		createPolicy: func(in *iam.CreatePolicyInput) (*iam.CreatePolicyOutput, error) {
			captured = in
			return &iam.CreatePolicyOutput{
				Policy: &iamtypes.Policy{Arn: aws.String("arn:aws:iam::123456789012:policy/cluster-autoscaler")},
			}, nil
		},
	}, nil, nil, nil)

	arn, err := client.EnsurePolicy(context.Background(), "cluster-autoscaler", testPolicy())
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:policy/cluster-autoscaler", arn)

	require.NotNil(t, captured)
	assert.Equal(t, "cluster-autoscaler", aws.ToString(captured.PolicyName))
	assert.Contains(t, aws.ToString(captured.PolicyDocument), "autoscaling:DescribeTags")
	assert.Contains(t, aws.ToString(captured.PolicyDocument), "2012-10-17")
}

func TestEnsurePolicyAlreadyExists(t *testing.T) {
	client := NewFromAPIs(&fakeIAM{
		createPolicy: func(*iam.CreatePolicyInput) (*iam.CreatePolicyOutput, error) {
			return nil, &iamtypes.EntityAlreadyExistsException{}
		},
		listPolicies: func(in *iam.ListPoliciesInput) (*iam.ListPoliciesOutput, error) {
			assert.Equal(t, iamtypes.PolicyScopeTypeLocal, in.Scope)
			if in.Marker == nil {
				// First page does not contain the policy.
				return &iam.ListPoliciesOutput{
					Policies: []iamtypes.Policy{
						{PolicyName: aws.String("other"), Arn: aws.String("arn:other")},
					},
					IsTruncated: true,
					Marker:      aws.String("page2"),
				}, nil
			}
			return &iam.ListPoliciesOutput{
				Policies: []iamtypes.Policy{
					{
						PolicyName: aws.String("cluster-autoscaler"),
						Arn:        aws.String("arn:aws:iam::123456789012:policy/cluster-autoscaler"),
					},
				},
			}, nil
		},
	}, nil, nil, nil)

	arn, err := client.EnsurePolicy(context.Background(), "cluster-autoscaler", testPolicy())
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:policy/cluster-autoscaler", arn)
}

func TestEnsurePolicyExistsButUnresolvable(t *testing.T) {
	client := NewFromAPIs(&fakeIAM{
		createPolicy: func(*iam.CreatePolicyInput) (*iam.CreatePolicyOutput, error) {
			return nil, &iamtypes.EntityAlreadyExistsException{}
		},
		listPolicies: func(*iam.ListPoliciesInput) (*iam.ListPoliciesOutput, error) {
			return &iam.ListPoliciesOutput{}, nil
		},
	}, nil, nil, nil)

	_, err := client.EnsurePolicy(context.Background(), "cluster-autoscaler", testPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestEnsurePolicySurfacesCreateError(t *testing.T) {
	client := NewFromAPIs(&fakeIAM{
		createPolicy: func(*iam.CreatePolicyInput) (*iam.CreatePolicyOutput, error) {
			return nil, errors.New("access denied")
		},
	}, nil, nil, nil)

	_, err := client.EnsurePolicy(context.Background(), "cluster-autoscaler", testPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create policy")
}

func TestAttachRolePolicy(t *testing.T) {
	var captured *iam.AttachRolePolicyInput
	client := NewFromAPIs(&fakeIAM{
		attachRolePolicy: func(in *iam.AttachRolePolicyInput) (*iam.AttachRolePolicyOutput, error) {
			captured = in
			return &iam.AttachRolePolicyOutput{}, nil
		},
	}, nil, nil, nil)

	err := client.AttachRolePolicy(context.Background(), "ng-node-role", "arn:policy")
	require.NoError(t, err)
	assert.Equal(t, "ng-node-role", aws.ToString(captured.RoleName))
	assert.Equal(t, "arn:policy", aws.ToString(captured.PolicyArn))
}

func TestAttachRolePolicyMissingRole(t *testing.T) {
	client := NewFromAPIs(&fakeIAM{
		attachRolePolicy: func(*iam.AttachRolePolicyInput) (*iam.AttachRolePolicyOutput, error) {
			return nil, &iamtypes.NoSuchEntityException{}
		},
	}, nil, nil, nil)

	err := client.AttachRolePolicy(context.Background(), "missing-role", "arn:policy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestApplyTags(t *testing.T) {
	var captured *autoscaling.CreateOrUpdateTagsInput
	client := NewFromAPIs(nil, &fakeASG{
		createOrUpdateTags: func(in *autoscaling.CreateOrUpdateTagsInput) (*autoscaling.CreateOrUpdateTagsOutput, error) {
			captured = in
			return &autoscaling.CreateOrUpdateTagsOutput{}, nil
		},
	}, nil, nil)

	commands := []addons.TagCommand{
		{Group: "asg-a", Key: "k8s.io/cluster-autoscaler/prod", Value: "owned", PropagateAtLaunch: true},
		{Group: "asg-a", Key: "k8s.io/cluster-autoscaler/enabled", Value: "true", PropagateAtLaunch: true},
	}

	require.NoError(t, client.ApplyTags(context.Background(), commands))
	require.NotNil(t, captured)
	require.Len(t, captured.Tags, 2)

	first := captured.Tags[0]
	assert.Equal(t, "asg-a", aws.ToString(first.ResourceId))
	assert.Equal(t, "auto-scaling-group", aws.ToString(first.ResourceType))
	assert.Equal(t, "k8s.io/cluster-autoscaler/prod", aws.ToString(first.Key))
	assert.Equal(t, "owned", aws.ToString(first.Value))
	assert.True(t, aws.ToBool(first.PropagateAtLaunch))
}

func TestApplyTagsEmpty(t *testing.T) {
	called := false
	client := NewFromAPIs(nil, &fakeASG{
		createOrUpdateTags: func(*autoscaling.CreateOrUpdateTagsInput) (*autoscaling.CreateOrUpdateTagsOutput, error) {
			called = true
			return &autoscaling.CreateOrUpdateTagsOutput{}, nil
		},
	}, nil, nil)

	require.NoError(t, client.ApplyTags(context.Background(), nil))
	assert.False(t, called, "no API call for an empty command list")
}

func TestDiscoverNodeGroups(t *testing.T) {
	describeOutputs := map[string]*eks.DescribeNodegroupOutput{
		"ngA": {
			Nodegroup: &ekstypes.Nodegroup{
				NodegroupName: aws.String("ngA"),
				NodeRole:      aws.String("arn:aws:iam::123456789012:role/ngA-node-role"),
				Resources: &ekstypes.NodegroupResources{
					AutoScalingGroups: []ekstypes.AutoScalingGroup{
						{Name: aws.String("eks-ngA-asg")},
					},
				},
			},
		},
		// ngB has no autoscaling group yet and should be skipped.
		"ngB": {
			Nodegroup: &ekstypes.Nodegroup{
				NodegroupName: aws.String("ngB"),
				NodeRole:      aws.String("arn:aws:iam::123456789012:role/ngB-node-role"),
			},
		},
	}

	client := NewFromAPIs(nil, nil, &fakeEKS{
		listNodegroups: func(in *eks.ListNodegroupsInput) (*eks.ListNodegroupsOutput, error) {
			assert.Equal(t, "prod", aws.ToString(in.ClusterName))
			if in.NextToken == nil {
				return &eks.ListNodegroupsOutput{
					Nodegroups: []string{"ngA"},
					NextToken:  aws.String("next"),
				}, nil
			}
			return &eks.ListNodegroupsOutput{Nodegroups: []string{"ngB"}}, nil
		},
		describeNodegroup: func(in *eks.DescribeNodegroupInput) (*eks.DescribeNodegroupOutput, error) {
			return describeOutputs[aws.ToString(in.NodegroupName)], nil
		},
	}, nil)

	groups, err := client.DiscoverNodeGroups(context.Background(), "prod")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, addons.NodeGroup{
		Name:             "ngA",
		AutoScalingGroup: "eks-ngA-asg",
		NodeRole:         "ngA-node-role",
	}, groups[0])
}

func TestDiscoverNodeGroupsListError(t *testing.T) {
	client := NewFromAPIs(nil, nil, &fakeEKS{
		listNodegroups: func(*eks.ListNodegroupsInput) (*eks.ListNodegroupsOutput, error) {
			return nil, errors.New("cluster not found")
		},
	}, nil)

	_, err := client.DiscoverNodeGroups(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list node groups")
}

func TestRoleNameFromARN(t *testing.T) {
	tests := []struct {
		arn      string
		expected string
	}{
		{"arn:aws:iam::123456789012:role/my-node-role", "my-node-role"},
		{"arn:aws:iam::123456789012:role/path/to/role", "role"},
		{"bare-role-name", "bare-role-name"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, roleNameFromARN(tt.arn))
	}
}
