package addons

import "errors"

// ErrInvalidInput reports a request the composer cannot act on, such as an
// empty cluster name. It is the only error the composer detects locally;
// everything else surfaces from the collaborators that execute the plan.
var ErrInvalidInput = errors.New("invalid input")

const (
	// AddonName is the canonical name used for every emitted resource:
	// the IAM policy, the discovery tags, and all Kubernetes objects.
	AddonName = "cluster-autoscaler"

	// Namespace is where the namespaced objects land.
	Namespace = "kube-system"

	// DefaultVersion is the image tag used when the caller supplies none.
	DefaultVersion = "v1.14.6"

	// DefaultRegistry hosts the upstream cluster-autoscaler images.
	DefaultRegistry = "k8s.gcr.io"

	// tagPrefix is the key prefix the autoscaler's auto-discovery scans for.
	tagPrefix = "k8s.io/cluster-autoscaler/"

	// enabledTagKey opts an autoscaling group into auto-discovery.
	enabledTagKey = tagPrefix + "enabled"

	// ownedTagValue marks a group as owned by a specific cluster.
	ownedTagValue = "owned"
)

// ClusterRef identifies the target cluster. The name is used verbatim in
// the ownership tag key and the auto-discovery flag.
type ClusterRef struct {
	Name string
}

// NodeGroup is one scalable group of worker machines. AutoScalingGroup is
// the tag target; NodeRole is the IAM role name the policy attaches to.
type NodeGroup struct {
	Name             string
	AutoScalingGroup string
	NodeRole         string
}

// TagCommand is a single key/value upsert on an autoscaling group.
// PropagateAtLaunch carries the tag onto instances the group launches.
type TagCommand struct {
	Group             string
	Key               string
	Value             string
	PropagateAtLaunch bool
}

// RoleAttachment names an IAM role the autoscaler policy must be attached to.
type RoleAttachment struct {
	Group string
	Role  string
}

// Options tunes the composition. The zero value is valid.
type Options struct {
	// Version is the autoscaler image tag. Empty means DefaultVersion.
	Version string

	// Registry is the image registry. Empty means DefaultRegistry.
	Registry string

	// FixDuplicateRoleBinding drops the historical second copy of the
	// RoleBinding document. The upstream manifest set shipped it twice;
	// by default we reproduce that so the emitted set matches what
	// existing clusters already carry.
	FixDuplicateRoleBinding bool
}

// Plan is the full output of one composition: one policy, the per-group
// tag and attachment commands, and the ordered manifest documents.
// A Plan is inert data; executing it is the caller's business.
type Plan struct {
	Policy      PolicyDocument
	Tags        []TagCommand
	Attachments []RoleAttachment
	Manifests   []ManifestDocument
}

// OwnedTagKey returns the per-cluster ownership tag key.
func OwnedTagKey(clusterName string) string {
	return tagPrefix + clusterName
}
