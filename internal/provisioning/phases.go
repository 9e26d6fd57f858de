package provisioning

import (
	"fmt"

	"github.com/mkotas/ekscaler/internal/addons"
)

// FieldManager identifies this tool in Server-Side Apply ownership.
const FieldManager = "ekscaler"

// discoverPhase resolves node groups, preferring explicit config over
// EKS discovery.
type discoverPhase struct{}

func (discoverPhase) Name() string { return "discover" }

func (discoverPhase) Run(ctx *Context) error {
	if groups := ctx.Config.AddonNodeGroups(); groups != nil {
		ctx.State.NodeGroups = groups
		ctx.Observer.Printf("using %d node groups from config", len(groups))
		return nil
	}

	groups, err := ctx.Cloud.DiscoverNodeGroups(ctx, ctx.Config.Cluster)
	if err != nil {
		return fmt.Errorf("node group discovery failed: %w", err)
	}
	ctx.State.NodeGroups = groups
	return nil
}

// composePhase builds the deploy plan from the discovered node groups.
type composePhase struct{}

func (composePhase) Name() string { return "compose" }

func (composePhase) Run(ctx *Context) error {
	plan, err := addons.Compose(
		addons.ClusterRef{Name: ctx.Config.Cluster},
		ctx.State.NodeGroups,
		ctx.Config.AddonOptions(),
	)
	if err != nil {
		return err
	}
	ctx.State.Plan = plan
	ctx.Observer.Printf("composed plan: %d tag commands, %d role attachments, %d manifests",
		len(plan.Tags), len(plan.Attachments), len(plan.Manifests))
	return nil
}

// policyPhase ensures the IAM policy exists and is attached to every
// node group execution role.
type policyPhase struct{}

func (policyPhase) Name() string { return "policy" }

func (policyPhase) Run(ctx *Context) error {
	arn, err := ctx.Cloud.EnsurePolicy(ctx, addons.AddonName, ctx.State.Plan.Policy)
	if err != nil {
		return err
	}
	ctx.State.PolicyARN = arn
	LogResourceCreated(ctx.Observer, "policy", "IAM policy", addons.AddonName, arn)

	for _, attachment := range ctx.State.Plan.Attachments {
		if err := ctx.Cloud.AttachRolePolicy(ctx, attachment.Role, arn); err != nil {
			return err
		}
		LogResourceCreated(ctx.Observer, "policy", "role attachment", attachment.Role, arn)
	}
	return nil
}

// tagsPhase applies the autoscaler discovery tags.
type tagsPhase struct{}

func (tagsPhase) Name() string { return "tags" }

func (tagsPhase) Run(ctx *Context) error {
	if len(ctx.State.Plan.Tags) == 0 {
		LogResourceSkipped(ctx.Observer, "tags", "discovery tags", ctx.Config.Cluster, "no node groups")
		return nil
	}
	return ctx.Cloud.ApplyTags(ctx, ctx.State.Plan.Tags)
}

// manifestsPhase applies the rendered manifests to the cluster.
type manifestsPhase struct{}

func (manifestsPhase) Name() string { return "manifests" }

func (manifestsPhase) Run(ctx *Context) error {
	rendered, err := addons.RenderManifests(ctx.State.Plan.Manifests)
	if err != nil {
		return err
	}

	applied, err := ctx.Applier.ApplyManifests(ctx, rendered, FieldManager)
	if err != nil {
		return err
	}
	ctx.State.AppliedManifests = applied
	ctx.Observer.Printf("applied %d manifests to %s", applied, addons.Namespace)
	return nil
}

// archivePhase uploads the rendered plan to S3 when configured.
type archivePhase struct{}

func (archivePhase) Name() string { return "archive" }

func (archivePhase) Run(ctx *Context) error {
	if ctx.Config.Archive == nil || ctx.Archiver == nil {
		LogResourceSkipped(ctx.Observer, "archive", "plan archive", ctx.Config.Cluster, "not configured")
		return nil
	}

	keys, err := ctx.Archiver.ArchivePlan(ctx,
		ctx.Config.Archive.Bucket, ctx.Config.Archive.Prefix, ctx.Config.Cluster, ctx.State.Plan)
	if err != nil {
		return fmt.Errorf("plan archive failed: %w", err)
	}
	ctx.State.ArchivedKeys = keys
	for _, key := range keys {
		LogResourceCreated(ctx.Observer, "archive", "plan object", key, ctx.Config.Archive.Bucket)
	}
	return nil
}

// DeployPhases returns the full deploy sequence.
func DeployPhases() []Phase {
	return []Phase{
		discoverPhase{},
		composePhase{},
		policyPhase{},
		tagsPhase{},
		manifestsPhase{},
		archivePhase{},
	}
}

// Deploy runs the full pipeline against the given context.
func Deploy(ctx *Context) error {
	return RunPhases(ctx, DeployPhases())
}
