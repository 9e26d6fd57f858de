package addons

import (
	"encoding/json"
	"fmt"
)

// autoscalerActions is the closed set of cloud API actions the autoscaler
// needs: describe node groups and their instances, resize them, and read
// launch template versions. Resource scope is intentionally "*"; the
// autoscaling APIs do not support resource-level ARNs for most of these.
var autoscalerActions = []string{
	"autoscaling:DescribeAutoScalingGroups",
	"autoscaling:DescribeAutoScalingInstances",
	"autoscaling:DescribeLaunchConfigurations",
	"autoscaling:DescribeTags",
	"autoscaling:SetDesiredCapacity",
	"autoscaling:TerminateInstanceInAutoScalingGroup",
	"ec2:DescribeLaunchTemplateVersions",
}

// PolicyDocument is an IAM policy document in the 2012-10-17 format.
type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

// PolicyStatement is a single statement within a policy document.
type PolicyStatement struct {
	Effect   string   `json:"Effect"`
	Action   []string `json:"Action"`
	Resource string   `json:"Resource"`
}

// newAutoscalerPolicy builds the one policy document every composition
// emits. Independent of node-group count.
func newAutoscalerPolicy() PolicyDocument {
	actions := make([]string, len(autoscalerActions))
	copy(actions, autoscalerActions)

	return PolicyDocument{
		Version: "2012-10-17",
		Statement: []PolicyStatement{
			{
				Effect:   "Allow",
				Action:   actions,
				Resource: "*",
			},
		},
	}
}

// JSON renders the policy document for the IAM API.
func (p PolicyDocument) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return data, nil
}
