package config

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/mkotas/ekscaler/internal/addons"
)

// WizardResult holds the user's choices from the wizard.
type WizardResult struct {
	Cluster       string
	Region        string
	Version       string
	ArchiveBucket string
	FixDuplicate  bool
}

var regionOptions = []huh.Option[string]{
	huh.NewOption("US East (N. Virginia) us-east-1", "us-east-1"),
	huh.NewOption("US East (Ohio) us-east-2", "us-east-2"),
	huh.NewOption("US West (Oregon) us-west-2", "us-west-2"),
	huh.NewOption("Europe (Ireland) eu-west-1", "eu-west-1"),
	huh.NewOption("Europe (Frankfurt) eu-central-1", "eu-central-1"),
	huh.NewOption("Asia Pacific (Tokyo) ap-northeast-1", "ap-northeast-1"),
	huh.NewOption("Asia Pacific (Singapore) ap-southeast-1", "ap-southeast-1"),
}

// RunWizard runs the interactive configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Region:  "us-east-1",
		Version: addons.DefaultVersion,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("EKS cluster name").
				Description("The cluster whose node groups the autoscaler will manage").
				Placeholder("my-cluster").
				Value(&result.Cluster).
				Validate(validateClusterName),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("AWS region").
				Description("Region of the EKS cluster").
				Options(regionOptions...).
				Value(&result.Region),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Cluster Autoscaler version").
				Description("Image tag deployed to kube-system").
				Placeholder(addons.DefaultVersion).
				Value(&result.Version),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Plan archive bucket (optional)").
				Description("S3 bucket for archiving rendered plans. Leave empty to skip.").
				Value(&result.ArchiveBucket),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Drop the duplicate system:cluster-autoscaler RoleBinding?").
				Description("The stock manifest list binds the role twice; dropping the duplicate is harmless").
				Value(&result.FixDuplicate),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result to a Config.
func (r *WizardResult) ToConfig() *Config {
	cfg := &Config{
		Cluster:                 r.Cluster,
		Region:                  r.Region,
		Version:                 r.Version,
		FixDuplicateRoleBinding: r.FixDuplicate,
	}
	if cfg.Version == "" {
		cfg.Version = addons.DefaultVersion
	}
	if r.ArchiveBucket != "" {
		cfg.Archive = &ArchiveConfig{Bucket: r.ArchiveBucket, Prefix: "ekscaler"}
	}
	return cfg
}
