// Package provisioning runs the addon deploy pipeline.
//
// A deploy is a fixed sequence of phases: discover the cluster's node
// groups, compose the plan, ensure the IAM policy, tag the autoscaling
// groups, apply the manifests, and optionally archive the plan. Phases
// share a Context and report through an Observer. Every external
// operation is an idempotent upsert, so re-running a deploy is safe.
package provisioning

import (
	"context"

	"github.com/mkotas/ekscaler/internal/addons"
)

// Phase defines the interface for a deploy phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Run executes the phase.
	Run(ctx *Context) error
}

// CloudProvisioner covers the AWS-side operations of a deploy.
// Implemented by platform/aws.Client.
type CloudProvisioner interface {
	DiscoverNodeGroups(ctx context.Context, clusterName string) ([]addons.NodeGroup, error)
	EnsurePolicy(ctx context.Context, name string, doc addons.PolicyDocument) (string, error)
	AttachRolePolicy(ctx context.Context, roleName, policyARN string) error
	ApplyTags(ctx context.Context, commands []addons.TagCommand) error
}

// ManifestApplier applies rendered manifests to the cluster.
// Implemented by addons/k8sclient.Client.
type ManifestApplier interface {
	ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) (int, error)
}

// PlanArchiver uploads rendered plans for audit.
// Implemented by platform/s3.Client.
type PlanArchiver interface {
	ArchivePlan(ctx context.Context, bucket, prefix, cluster string, plan *addons.Plan) ([]string, error)
}
