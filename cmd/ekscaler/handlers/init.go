// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/mkotas/ekscaler/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the configuration wizard.
	runWizard = config.RunWizard

	// saveConfig writes the config to a file.
	saveConfig = func(cfg *config.Config, path string) error {
		return cfg.Save(path)
	}
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.ToConfig()

	if err := saveConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("ekscaler - Cluster Autoscaler for EKS")
	fmt.Println("=====================================")
	fmt.Println()
	fmt.Println("This wizard creates a deploy configuration with sensible defaults.")
	fmt.Println("Node groups are discovered from EKS at deploy time; list them in")
	fmt.Println("the config only if you want to pin a subset.")
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Cluster: %s\n", cfg.Cluster)
	fmt.Printf("  Region:  %s\n", cfg.Region)
	fmt.Printf("  Version: %s\n", cfg.Version)
	if cfg.Archive != nil {
		fmt.Printf("  Archive: s3://%s/%s\n", cfg.Archive.Bucket, cfg.Archive.Prefix)
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Make sure your AWS credentials are available:")
	fmt.Println("     export AWS_PROFILE=<your-profile>")
	fmt.Println()
	fmt.Printf("  2. Review %s if needed\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Deploy the autoscaler:")
	fmt.Printf("     ekscaler deploy -c %s\n", outputPath)
	fmt.Println()
}
