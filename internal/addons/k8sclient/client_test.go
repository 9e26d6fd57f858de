package k8sclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/mkotas/ekscaler/internal/addons"
)

func TestDeploymentExists(t *testing.T) {
	clientset := fake.NewSimpleClientset(&appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      addons.AddonName,
			Namespace: addons.Namespace,
		},
	})
	c := NewFromClients(clientset, nil, nil)

	exists, err := c.DeploymentExists(context.Background(), addons.Namespace, addons.AddonName)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.DeploymentExists(context.Background(), addons.Namespace, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}
