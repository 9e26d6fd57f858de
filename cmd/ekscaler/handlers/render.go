package handlers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkotas/ekscaler/internal/addons"
	"github.com/mkotas/ekscaler/internal/config"
	"github.com/mkotas/ekscaler/internal/ui"
)

const (
	policyFileName    = "policy.json"
	manifestsFileName = "manifests.yaml"
)

// Factory function variables - can be replaced in tests.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// writeFile writes data to a file.
	writeFile = os.WriteFile
)

// Render composes the plan offline and writes its artifacts to disk.
// No AWS or cluster access: node groups come from the config only.
func Render(configPath, outputDir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	plan, err := addons.Compose(
		addons.ClusterRef{Name: cfg.Cluster},
		cfg.AddonNodeGroups(),
		cfg.AddonOptions(),
	)
	if err != nil {
		return fmt.Errorf("failed to compose plan: %w", err)
	}

	policyJSON, err := plan.Policy.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}

	manifestsYAML, err := addons.RenderManifests(plan.Manifests)
	if err != nil {
		return fmt.Errorf("failed to render manifests: %w", err)
	}

	policyPath := filepath.Join(outputDir, policyFileName)
	if err := writeFile(policyPath, policyJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", policyPath, err)
	}

	manifestsPath := filepath.Join(outputDir, manifestsFileName)
	if err := writeFile(manifestsPath, manifestsYAML, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestsPath, err)
	}

	fmt.Print(ui.PlanSummary(cfg.Cluster, plan))
	fmt.Println()
	fmt.Println(ui.OK(fmt.Sprintf("wrote %s", policyPath)))
	fmt.Println(ui.OK(fmt.Sprintf("wrote %s", manifestsPath)))

	return nil
}

// loadConfig loads and validates the configuration. If configPath is
// empty, it looks for ekscaler.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		if !fileExists(config.DefaultFileName) {
			return nil, fmt.Errorf("no config file found: run 'ekscaler init' to create one")
		}
		configPath = config.DefaultFileName
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
