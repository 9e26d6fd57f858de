package commands

import (
	"github.com/spf13/cobra"

	"github.com/mkotas/ekscaler/cmd/ekscaler/handlers"
	"github.com/mkotas/ekscaler/internal/config"
)

// Init returns the command for creating a configuration file.
//
// Optional flags:
//
//	--output, -o: Where to write the config (default: ekscaler.yaml)
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Create an ekscaler configuration file.

An interactive wizard asks for the EKS cluster, AWS region, autoscaler
version, and optional plan archive bucket, then writes the config YAML.

Examples:
  # Create ekscaler.yaml in the current directory
  ekscaler init

  # Write to a different path
  ekscaler init -o clusters/prod.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultFileName, "Path for the generated config file")

	return cmd
}
