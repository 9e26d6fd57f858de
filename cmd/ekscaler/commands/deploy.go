package commands

import (
	"github.com/spf13/cobra"

	"github.com/mkotas/ekscaler/cmd/ekscaler/handlers"
)

// Deploy returns the command for running the full deploy pipeline.
//
// Optional flags:
//
//	--config, -c:  Path to configuration YAML (default: ekscaler.yaml)
//	--kubeconfig:  Path to kubeconfig (default: $KUBECONFIG, then ~/.kube/config)
//	--render-only: Stop after composing; print the plan without applying
func Deploy() *cobra.Command {
	var configPath string
	var kubeconfigPath string
	var renderOnly bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision the Cluster Autoscaler add-on",
		Long: `Provision the Cluster Autoscaler add-on for the configured cluster.

Discovers the cluster's node groups (unless listed in the config),
creates the IAM policy and attaches it to each node group role, tags
the autoscaling groups for autoscaler discovery, and applies the
kube-system manifests. Every step is an idempotent upsert, so re-running
deploy is safe.

AWS credentials come from the default chain (environment, shared
config, instance role).

Examples:
  # Deploy using ekscaler.yaml in the current directory
  ekscaler deploy

  # Deploy a specific config against a specific cluster
  ekscaler deploy -c production.yaml --kubeconfig ~/.kube/prod

  # Inspect the plan without applying anything
  ekscaler deploy --render-only`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), configPath, kubeconfigPath, renderOnly)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ekscaler.yaml)")
	cmd.Flags().StringVar(&kubeconfigPath, "kubeconfig", "", "Path to kubeconfig (default: $KUBECONFIG, then ~/.kube/config)")
	cmd.Flags().BoolVar(&renderOnly, "render-only", false, "Print the composed plan without applying it")

	return cmd
}
