package addons

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name       string
		cluster    ClusterRef
		nodeGroups []NodeGroup
		opts       Options
		validate   func(t *testing.T, plan *Plan)
	}{
		{
			name:    "two node groups, default version",
			cluster: ClusterRef{Name: "prod"},
			nodeGroups: []NodeGroup{
				{Name: "ngA", AutoScalingGroup: "eks-ngA-asg", NodeRole: "ngA-node-role"},
				{Name: "ngB", AutoScalingGroup: "eks-ngB-asg", NodeRole: "ngB-node-role"},
			},
			validate: func(t *testing.T, plan *Plan) {
				require.Len(t, plan.Policy.Statement, 1)
				assert.Len(t, plan.Policy.Statement[0].Action, 7)

				require.Len(t, plan.Tags, 4, "two tag commands per node group")
				require.Len(t, plan.Attachments, 2, "one attachment per node group")
				require.Len(t, plan.Manifests, 7)

				// Tags follow node-group input order, owned before enabled.
				assert.Equal(t, "eks-ngA-asg", plan.Tags[0].Group)
				assert.Equal(t, "k8s.io/cluster-autoscaler/prod", plan.Tags[0].Key)
				assert.Equal(t, "owned", plan.Tags[0].Value)
				assert.Equal(t, "k8s.io/cluster-autoscaler/enabled", plan.Tags[1].Key)
				assert.Equal(t, "true", plan.Tags[1].Value)
				assert.Equal(t, "eks-ngB-asg", plan.Tags[2].Group)

				for _, tag := range plan.Tags {
					assert.True(t, tag.PropagateAtLaunch, "tags must propagate to launched instances")
				}

				assert.Equal(t, RoleAttachment{Group: "ngA", Role: "ngA-node-role"}, plan.Attachments[0])
				assert.Equal(t, RoleAttachment{Group: "ngB", Role: "ngB-node-role"}, plan.Attachments[1])

				deployment := deploymentFromPlan(t, plan)
				image := deployment.Spec.Template.Spec.Containers[0].Image
				assert.True(t, strings.HasSuffix(image, ":v1.14.6"), "version defaults to v1.14.6, got %s", image)
				assert.Contains(t, discoveryFlagFrom(t, deployment), "k8s.io/cluster-autoscaler/prod")
			},
		},
		{
			name:       "no node groups, explicit version",
			cluster:    ClusterRef{Name: "dev"},
			nodeGroups: nil,
			opts:       Options{Version: "v1.15.0"},
			validate: func(t *testing.T, plan *Plan) {
				assert.Empty(t, plan.Tags)
				assert.Empty(t, plan.Attachments)
				require.Len(t, plan.Policy.Statement, 1)
				assert.Len(t, plan.Policy.Statement[0].Action, 7, "policy is independent of node-group count")
				require.Len(t, plan.Manifests, 7)

				deployment := deploymentFromPlan(t, plan)
				image := deployment.Spec.Template.Spec.Containers[0].Image
				assert.Equal(t, "k8s.gcr.io/cluster-autoscaler:v1.15.0", image)
			},
		},
		{
			name:    "custom registry",
			cluster: ClusterRef{Name: "edge"},
			opts:    Options{Registry: "registry.internal.example.com", Version: "v1.20.0"},
			validate: func(t *testing.T, plan *Plan) {
				deployment := deploymentFromPlan(t, plan)
				image := deployment.Spec.Template.Spec.Containers[0].Image
				assert.Equal(t, "registry.internal.example.com/cluster-autoscaler:v1.20.0", image)
			},
		},
		{
			name:    "fixed duplicate role binding",
			cluster: ClusterRef{Name: "prod"},
			opts:    Options{FixDuplicateRoleBinding: true},
			validate: func(t *testing.T, plan *Plan) {
				require.Len(t, plan.Manifests, 6)
				bindings := 0
				for _, doc := range plan.Manifests {
					if strings.HasPrefix(doc.Name, "role-binding") {
						bindings++
					}
				}
				assert.Equal(t, 1, bindings)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Compose(tt.cluster, tt.nodeGroups, tt.opts)
			require.NoError(t, err)
			tt.validate(t, plan)
		})
	}
}

func TestComposeEmptyClusterName(t *testing.T) {
	plan, err := Compose(ClusterRef{}, nil, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Nil(t, plan, "no partial plan on invalid input")
}

func TestComposePolicyIndependentOfGroupCount(t *testing.T) {
	var previous []string
	for _, n := range []int{0, 1, 5} {
		groups := make([]NodeGroup, n)
		for i := range groups {
			groups[i] = NodeGroup{
				Name:             fmt.Sprintf("ng%d", i),
				AutoScalingGroup: fmt.Sprintf("asg-%d", i),
				NodeRole:         fmt.Sprintf("role-%d", i),
			}
		}

		plan, err := Compose(ClusterRef{Name: "prod"}, groups, Options{})
		require.NoError(t, err)

		require.Len(t, plan.Tags, 2*n)
		require.Len(t, plan.Attachments, n)
		require.Len(t, plan.Policy.Statement, 1)

		actions := plan.Policy.Statement[0].Action
		if previous != nil {
			assert.Equal(t, previous, actions, "action list must not vary with group count")
		}
		previous = actions
	}
}

func TestComposeDoesNotMutateInputs(t *testing.T) {
	groups := []NodeGroup{
		{Name: "ngA", AutoScalingGroup: "asg-a", NodeRole: "role-a"},
	}
	opts := Options{}

	_, err := Compose(ClusterRef{Name: "prod"}, groups, opts)
	require.NoError(t, err)

	assert.Equal(t, NodeGroup{Name: "ngA", AutoScalingGroup: "asg-a", NodeRole: "role-a"}, groups[0])
	assert.Empty(t, opts.Version, "version defaulting must not write back into the options")
}

// deploymentFromPlan returns the Deployment document, which is always last.
func deploymentFromPlan(t *testing.T, plan *Plan) *appsv1.Deployment {
	t.Helper()

	last := plan.Manifests[len(plan.Manifests)-1]
	deployment, ok := last.Object.(*appsv1.Deployment)
	require.True(t, ok, "last manifest document should be the Deployment, got %T", last.Object)
	require.Len(t, deployment.Spec.Template.Spec.Containers, 1)
	return deployment
}

func discoveryFlagFrom(t *testing.T, deployment *appsv1.Deployment) string {
	t.Helper()

	for _, arg := range deployment.Spec.Template.Spec.Containers[0].Command {
		if strings.HasPrefix(arg, "--node-group-auto-discovery=") {
			return arg
		}
	}
	t.Fatal("deployment command has no --node-group-auto-discovery flag")
	return ""
}
