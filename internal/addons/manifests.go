package addons

import (
	"bytes"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	"github.com/mkotas/ekscaler/internal/util/ptr"
)

// ManifestDocument is one declarative Kubernetes object in the addon's
// manifest set. Objects are typed API structs, not YAML blobs, so each
// document is independently testable and diffable.
type ManifestDocument struct {
	// Name is a short identifier for logs and archive keys, e.g. "role-binding".
	Name   string
	Object runtime.Object
}

// Render serializes the document to YAML.
func (d ManifestDocument) Render() ([]byte, error) {
	data, err := yaml.Marshal(d.Object)
	if err != nil {
		return nil, fmt.Errorf("failed to render manifest %s: %w", d.Name, err)
	}
	return data, nil
}

// RenderManifests serializes the documents into a single multi-document
// YAML stream, preserving list order.
func RenderManifests(docs []ManifestDocument) ([]byte, error) {
	var combined bytes.Buffer

	for _, doc := range docs {
		data, err := doc.Render()
		if err != nil {
			return nil, err
		}
		if combined.Len() > 0 {
			combined.WriteString("---\n")
		}
		combined.Write(data)
	}

	return combined.Bytes(), nil
}

// addonLabels returns the labels stamped on every emitted object.
func addonLabels() map[string]string {
	return map[string]string{
		"k8s-addon": "cluster-autoscaler.addons.k8s.io",
		"k8s-app":   AddonName,
	}
}

// buildManifests assembles the ordered manifest document list. RBAC objects
// come before the Deployment so sequential appliers never start the
// autoscaler without its permissions in place.
func buildManifests(clusterName, image string, fixDuplicateRoleBinding bool) []ManifestDocument {
	docs := []ManifestDocument{
		{Name: "service-account", Object: buildServiceAccount()},
		{Name: "cluster-role", Object: buildClusterRole()},
		{Name: "role", Object: buildRole()},
		{Name: "cluster-role-binding", Object: buildClusterRoleBinding()},
		{Name: "role-binding", Object: buildRoleBinding()},
	}

	// The upstream manifest set shipped the RoleBinding twice. Server-side
	// apply makes the second copy a no-op, so we reproduce it unless the
	// caller opts out.
	if !fixDuplicateRoleBinding {
		docs = append(docs, ManifestDocument{Name: "role-binding-duplicate", Object: buildRoleBinding()})
	}

	docs = append(docs, ManifestDocument{Name: "deployment", Object: buildDeployment(clusterName, image)})

	return docs
}

func buildServiceAccount() *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ServiceAccount",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      AddonName,
			Namespace: Namespace,
			Labels:    addonLabels(),
		},
	}
}

// buildClusterRole grants the autoscaler its cluster-wide permission set:
// node and pod inventory, eviction, scheduling-relevant objects, and its
// own leader-election lease.
func buildClusterRole() *rbacv1.ClusterRole {
	return &rbacv1.ClusterRole{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "rbac.authorization.k8s.io/v1",
			Kind:       "ClusterRole",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   AddonName,
			Labels: addonLabels(),
		},
		Rules: []rbacv1.PolicyRule{
			{
				APIGroups: []string{""},
				Resources: []string{"events", "endpoints"},
				Verbs:     []string{"create", "patch"},
			},
			{
				APIGroups: []string{""},
				Resources: []string{"pods/eviction"},
				Verbs:     []string{"create"},
			},
			{
				APIGroups: []string{""},
				Resources: []string{"pods/status"},
				Verbs:     []string{"update"},
			},
			{
				APIGroups:     []string{""},
				Resources:     []string{"endpoints"},
				ResourceNames: []string{AddonName},
				Verbs:         []string{"get", "update"},
			},
			{
				APIGroups: []string{""},
				Resources: []string{"nodes"},
				Verbs:     []string{"watch", "list", "get", "update"},
			},
			{
				APIGroups: []string{""},
				Resources: []string{
					"pods",
					"services",
					"replicationcontrollers",
					"persistentvolumeclaims",
					"persistentvolumes",
				},
				Verbs: []string{"watch", "list", "get"},
			},
			{
				APIGroups: []string{"extensions"},
				Resources: []string{"replicasets", "daemonsets"},
				Verbs:     []string{"watch", "list", "get"},
			},
			{
				APIGroups: []string{"policy"},
				Resources: []string{"poddisruptionbudgets"},
				Verbs:     []string{"watch", "list"},
			},
			{
				APIGroups: []string{"apps"},
				Resources: []string{"statefulsets", "replicasets", "daemonsets"},
				Verbs:     []string{"watch", "list", "get"},
			},
			{
				APIGroups: []string{"storage.k8s.io"},
				Resources: []string{"storageclasses", "csinodes"},
				Verbs:     []string{"watch", "list", "get"},
			},
			{
				APIGroups: []string{"batch", "extensions"},
				Resources: []string{"jobs"},
				Verbs:     []string{"get", "list", "watch", "patch"},
			},
			{
				APIGroups: []string{"coordination.k8s.io"},
				Resources: []string{"leases"},
				Verbs:     []string{"create"},
			},
			{
				APIGroups:     []string{"coordination.k8s.io"},
				Resources:     []string{"leases"},
				ResourceNames: []string{AddonName},
				Verbs:         []string{"get", "update"},
			},
		},
	}
}

// buildRole grants the namespaced configmap access the autoscaler uses for
// its status and priority-expander configmaps.
func buildRole() *rbacv1.Role {
	return &rbacv1.Role{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "rbac.authorization.k8s.io/v1",
			Kind:       "Role",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      AddonName,
			Namespace: Namespace,
			Labels:    addonLabels(),
		},
		Rules: []rbacv1.PolicyRule{
			{
				APIGroups: []string{""},
				Resources: []string{"configmaps"},
				Verbs:     []string{"create", "list", "watch"},
			},
			{
				APIGroups: []string{""},
				Resources: []string{"configmaps"},
				ResourceNames: []string{
					"cluster-autoscaler-status",
					"cluster-autoscaler-priority-expander",
				},
				Verbs: []string{"delete", "get", "update", "watch"},
			},
		},
	}
}

func buildClusterRoleBinding() *rbacv1.ClusterRoleBinding {
	return &rbacv1.ClusterRoleBinding{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "rbac.authorization.k8s.io/v1",
			Kind:       "ClusterRoleBinding",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   AddonName,
			Labels: addonLabels(),
		},
		RoleRef: rbacv1.RoleRef{
			APIGroup: "rbac.authorization.k8s.io",
			Kind:     "ClusterRole",
			Name:     AddonName,
		},
		Subjects: []rbacv1.Subject{
			{
				Kind:      "ServiceAccount",
				Name:      AddonName,
				Namespace: Namespace,
			},
		},
	}
}

func buildRoleBinding() *rbacv1.RoleBinding {
	return &rbacv1.RoleBinding{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "rbac.authorization.k8s.io/v1",
			Kind:       "RoleBinding",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      AddonName,
			Namespace: Namespace,
			Labels:    addonLabels(),
		},
		RoleRef: rbacv1.RoleRef{
			APIGroup: "rbac.authorization.k8s.io",
			Kind:     "Role",
			Name:     AddonName,
		},
		Subjects: []rbacv1.Subject{
			{
				Kind:      "ServiceAccount",
				Name:      AddonName,
				Namespace: Namespace,
			},
		},
	}
}

// buildDeployment creates the autoscaler Deployment. The cluster name only
// appears in the auto-discovery flag; the image carries the resolved tag.
func buildDeployment(clusterName, image string) *appsv1.Deployment {
	discoveryFlag := fmt.Sprintf(
		"--node-group-auto-discovery=asg:tag=%s,%s",
		enabledTagKey, OwnedTagKey(clusterName),
	)

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "apps/v1",
			Kind:       "Deployment",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      AddonName,
			Namespace: Namespace,
			Labels:    map[string]string{"app": AddonName},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.Int32(1),
			Selector: &metav1.LabelSelector{
				MatchLabels: map[string]string{"app": AddonName},
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: map[string]string{"app": AddonName},
					Annotations: map[string]string{
						"cluster-autoscaler.kubernetes.io/safe-to-evict": "false",
						"prometheus.io/scrape":                           "true",
						"prometheus.io/port":                             "8085",
					},
				},
				Spec: corev1.PodSpec{
					ServiceAccountName: AddonName,
					Containers: []corev1.Container{
						{
							Name:  AddonName,
							Image: image,
							Resources: corev1.ResourceRequirements{
								Limits: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("100m"),
									corev1.ResourceMemory: resource.MustParse("300Mi"),
								},
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("100m"),
									corev1.ResourceMemory: resource.MustParse("300Mi"),
								},
							},
							Command: []string{
								"./cluster-autoscaler",
								"--v=4",
								"--stderrthreshold=info",
								"--cloud-provider=aws",
								"--skip-nodes-with-local-storage=false",
								"--expander=least-waste",
								discoveryFlag,
								"--balance-similar-node-groups",
								"--skip-nodes-with-system-pods=false",
							},
							VolumeMounts: []corev1.VolumeMount{
								{
									Name:      "ssl-certs",
									MountPath: "/etc/ssl/certs/ca-certificates.crt",
									ReadOnly:  true,
								},
							},
							ImagePullPolicy: corev1.PullAlways,
						},
					},
					Volumes: []corev1.Volume{
						{
							Name: "ssl-certs",
							VolumeSource: corev1.VolumeSource{
								HostPath: &corev1.HostPathVolumeSource{
									Path: "/etc/ssl/certs/ca-bundle.crt",
								},
							},
						},
					},
				},
			},
		},
	}
}
