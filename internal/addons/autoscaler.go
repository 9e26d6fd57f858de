// Package addons composes the AWS Cluster Autoscaler add-on for an EKS
// cluster: the IAM policy it runs under, the discovery tags on each node
// group's autoscaling group, and the Kubernetes manifests that run it.
//
// Composition is a pure transformation. The returned Plan is inert; the
// platform and k8sclient packages execute it against live infrastructure.
package addons

import (
	"fmt"
)

// Compose builds the full add-on plan for a cluster.
//
// The plan always contains exactly one policy document and, by default,
// seven manifest documents. Per node group it contains two discovery tag
// commands (ownership and enabled, both propagated to launched instances)
// and one policy attachment for the group's node role. An empty node-group
// list is valid and yields a plan with no tags and no attachments.
//
// Compose never mutates its inputs; version defaulting happens on a copy.
func Compose(cluster ClusterRef, nodeGroups []NodeGroup, opts Options) (*Plan, error) {
	if cluster.Name == "" {
		return nil, fmt.Errorf("%w: cluster name must not be empty", ErrInvalidInput)
	}

	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}
	registry := opts.Registry
	if registry == "" {
		registry = DefaultRegistry
	}

	plan := &Plan{
		Policy: newAutoscalerPolicy(),
	}

	for _, ng := range nodeGroups {
		plan.Tags = append(plan.Tags,
			TagCommand{
				Group:             ng.AutoScalingGroup,
				Key:               OwnedTagKey(cluster.Name),
				Value:             ownedTagValue,
				PropagateAtLaunch: true,
			},
			TagCommand{
				Group:             ng.AutoScalingGroup,
				Key:               enabledTagKey,
				Value:             "true",
				PropagateAtLaunch: true,
			},
		)
		plan.Attachments = append(plan.Attachments, RoleAttachment{
			Group: ng.Name,
			Role:  ng.NodeRole,
		})
	}

	image := fmt.Sprintf("%s/%s:%s", registry, AddonName, version)
	plan.Manifests = buildManifests(cluster.Name, image, opts.FixDuplicateRoleBinding)

	return plan, nil
}
