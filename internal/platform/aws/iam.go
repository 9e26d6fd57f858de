package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"go.uber.org/zap"

	"github.com/mkotas/ekscaler/internal/addons"
)

// EnsurePolicy creates the IAM policy and returns its ARN. If a policy
// with the same name already exists, its ARN is returned instead; the
// existing document is left untouched so re-runs stay idempotent.
func (c *Client) EnsurePolicy(ctx context.Context, name string, doc addons.PolicyDocument) (string, error) {
	docJSON, err := doc.JSON()
	if err != nil {
		return "", err
	}

	out, err := c.iam.CreatePolicy(ctx, &iam.CreatePolicyInput{
		PolicyName:     aws.String(name),
		PolicyDocument: aws.String(string(docJSON)),
		Description:    aws.String("Minimum permissions for the Kubernetes Cluster Autoscaler"),
	})
	if err != nil {
		if !isEntityAlreadyExists(err) {
			return "", fmt.Errorf("failed to create policy %s: %w", name, err)
		}
		c.logger.Debug("policy already exists, resolving ARN", zap.String("policy", name))
		return c.findPolicyARN(ctx, name)
	}

	arn := aws.ToString(out.Policy.Arn)
	c.logger.Info("created IAM policy", zap.String("policy", name), zap.String("arn", arn))
	return arn, nil
}

// findPolicyARN resolves the ARN of a customer-managed policy by name.
func (c *Client) findPolicyARN(ctx context.Context, name string) (string, error) {
	input := &iam.ListPoliciesInput{Scope: types.PolicyScopeTypeLocal}

	for {
		out, err := c.iam.ListPolicies(ctx, input)
		if err != nil {
			return "", fmt.Errorf("failed to list policies: %w", err)
		}

		for _, policy := range out.Policies {
			if aws.ToString(policy.PolicyName) == name {
				return aws.ToString(policy.Arn), nil
			}
		}

		if !out.IsTruncated {
			break
		}
		input.Marker = out.Marker
	}

	return "", fmt.Errorf("policy %s not found", name)
}

// AttachRolePolicy attaches the policy to a node group's execution role.
// Attaching an already-attached policy is a no-op on the IAM side.
func (c *Client) AttachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	_, err := c.iam.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(policyARN),
	})
	if err != nil {
		if isNoSuchEntity(err) {
			return fmt.Errorf("role %s does not exist: %w", roleName, err)
		}
		return fmt.Errorf("failed to attach policy to role %s: %w", roleName, err)
	}

	c.logger.Info("attached policy to role",
		zap.String("role", roleName), zap.String("arn", policyARN))
	return nil
}
