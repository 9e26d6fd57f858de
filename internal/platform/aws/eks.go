package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"go.uber.org/zap"

	"github.com/mkotas/ekscaler/internal/addons"
)

// DiscoverNodeGroups resolves a cluster's managed node groups into the
// handles the composer needs: the backing autoscaling group and the node
// execution role. Groups without a resolved autoscaling group (still
// creating, or failed) are skipped.
func (c *Client) DiscoverNodeGroups(ctx context.Context, clusterName string) ([]addons.NodeGroup, error) {
	names, err := c.listNodegroupNames(ctx, clusterName)
	if err != nil {
		return nil, err
	}

	var groups []addons.NodeGroup
	for _, name := range names {
		out, err := c.eks.DescribeNodegroup(ctx, &eks.DescribeNodegroupInput{
			ClusterName:   aws.String(clusterName),
			NodegroupName: aws.String(name),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe node group %s: %w", name, err)
		}

		ng := out.Nodegroup
		if ng == nil || ng.Resources == nil || len(ng.Resources.AutoScalingGroups) == 0 {
			c.logger.Warn("node group has no autoscaling group yet, skipping",
				zap.String("nodegroup", name))
			continue
		}

		groups = append(groups, addons.NodeGroup{
			Name:             name,
			AutoScalingGroup: aws.ToString(ng.Resources.AutoScalingGroups[0].Name),
			NodeRole:         roleNameFromARN(aws.ToString(ng.NodeRole)),
		})
	}

	c.logger.Info("discovered node groups",
		zap.String("cluster", clusterName), zap.Int("count", len(groups)))
	return groups, nil
}

func (c *Client) listNodegroupNames(ctx context.Context, clusterName string) ([]string, error) {
	input := &eks.ListNodegroupsInput{ClusterName: aws.String(clusterName)}

	var names []string
	for {
		out, err := c.eks.ListNodegroups(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list node groups for cluster %s: %w", clusterName, err)
		}
		names = append(names, out.Nodegroups...)

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	return names, nil
}

// roleNameFromARN extracts the role name from an IAM role ARN, e.g.
// arn:aws:iam::123456789012:role/my-node-role -> my-node-role.
// A bare role name passes through unchanged.
func roleNameFromARN(arn string) string {
	if idx := strings.LastIndex(arn, "/"); idx >= 0 {
		return arn[idx+1:]
	}
	return arn
}
