package commands

import (
	"github.com/spf13/cobra"

	"github.com/mkotas/ekscaler/cmd/ekscaler/handlers"
)

// Render returns the command for composing a plan offline.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML (default: ekscaler.yaml)
//	--output, -o: Directory to write policy.json and manifests.yaml
func Render() *cobra.Command {
	var configPath string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Compose the plan without touching AWS or the cluster",
		Long: `Compose the autoscaler plan and write its artifacts locally.

Renders the IAM policy document to policy.json and the Kubernetes
manifests to manifests.yaml without any AWS or cluster access. Node
groups must be listed in the config, since EKS discovery is skipped.

Examples:
  # Render using ekscaler.yaml in the current directory
  ekscaler render

  # Render a specific config into a directory
  ekscaler render -c production.yaml -o out/`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Render(configPath, outputDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: ekscaler.yaml)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory for rendered artifacts")

	return cmd
}
