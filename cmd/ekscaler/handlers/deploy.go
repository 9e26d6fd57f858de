package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mkotas/ekscaler/internal/addons"
	"github.com/mkotas/ekscaler/internal/addons/k8sclient"
	"github.com/mkotas/ekscaler/internal/config"
	awsplatform "github.com/mkotas/ekscaler/internal/platform/aws"
	s3platform "github.com/mkotas/ekscaler/internal/platform/s3"
	"github.com/mkotas/ekscaler/internal/provisioning"
	"github.com/mkotas/ekscaler/internal/ui"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newLogger builds the process logger.
	newLogger = func() (*zap.Logger, error) {
		if ui.IsInteractive() {
			return zap.NewDevelopment()
		}
		return zap.NewProduction()
	}

	// newCloudClient creates the AWS client.
	newCloudClient = func(ctx context.Context, region string, logger *zap.Logger) (provisioning.CloudProvisioner, error) {
		return awsplatform.NewClient(ctx, awsplatform.Options{Region: region}, logger)
	}

	// newK8sClient creates the Kubernetes client from kubeconfig bytes.
	newK8sClient = func(kubeconfig []byte) (k8sclient.Client, error) {
		return k8sclient.NewFromKubeconfig(kubeconfig)
	}

	// newArchiver creates the S3 plan archiver.
	newArchiver = func(ctx context.Context, region string) (provisioning.PlanArchiver, error) {
		return s3platform.NewClient(ctx, region, "", "")
	}

	// readFile reads a file from disk.
	readFile = os.ReadFile

	// getenv reads an environment variable.
	getenv = os.Getenv

	// userHomeDir resolves the current user's home directory.
	userHomeDir = os.UserHomeDir

	// runPipeline executes the deploy pipeline.
	runPipeline = provisioning.Deploy
)

// Deploy provisions the Cluster Autoscaler add-on for the configured
// cluster: IAM policy and role attachments, autoscaling group discovery
// tags, and the kube-system manifests.
//
// With renderOnly, composition runs against the config's node groups
// and the plan is printed without touching AWS or the cluster.
func Deploy(ctx context.Context, configPath, kubeconfigPath string, renderOnly bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if renderOnly {
		return printPlan(cfg)
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cloud, err := newCloudClient(ctx, cfg.Region, logger)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}

	k8s, err := buildK8sClient(kubeconfigPath)
	if err != nil {
		return err
	}

	var archiver provisioning.PlanArchiver
	if cfg.Archive != nil {
		archiver, err = newArchiver(ctx, cfg.Region)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
	}

	observer := provisioning.NewZapObserver(logger).
		WithFields(map[string]string{"cluster": cfg.Cluster})

	deployCtx := provisioning.NewContext(ctx, cfg, cloud, k8s, archiver, observer)
	if err := runPipeline(deployCtx); err != nil {
		fmt.Println(ui.Fail("deploy failed"))
		return err
	}

	verifyDeployment(ctx, k8s)
	printDeploySuccess(cfg, deployCtx.State)
	return nil
}

// verifyDeployment double-checks the autoscaler Deployment is visible
// after apply. A failed probe is reported but does not fail the deploy;
// the apply itself already succeeded.
func verifyDeployment(ctx context.Context, k8s k8sclient.Client) {
	exists, err := k8s.DeploymentExists(ctx, addons.Namespace, addons.AddonName)
	if err != nil || !exists {
		fmt.Println(ui.Dim(fmt.Sprintf("could not confirm deployment %s/%s yet", addons.Namespace, addons.AddonName)))
		return
	}
	fmt.Println(ui.OK(fmt.Sprintf("deployment %s/%s is present", addons.Namespace, addons.AddonName)))
}

// printPlan composes offline and prints the plan summary.
func printPlan(cfg *config.Config) error {
	plan, err := addons.Compose(
		addons.ClusterRef{Name: cfg.Cluster},
		cfg.AddonNodeGroups(),
		cfg.AddonOptions(),
	)
	if err != nil {
		return fmt.Errorf("failed to compose plan: %w", err)
	}

	fmt.Print(ui.PlanSummary(cfg.Cluster, plan))
	if len(plan.Tags) == 0 {
		fmt.Println(ui.Dim("note: node groups are discovered from EKS during a real deploy"))
	}
	return nil
}

// buildK8sClient reads the kubeconfig and creates the Kubernetes client.
func buildK8sClient(kubeconfigPath string) (k8sclient.Client, error) {
	path, err := resolveKubeconfigPath(kubeconfigPath)
	if err != nil {
		return nil, err
	}

	kubeconfig, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", path, err)
	}

	client, err := newK8sClient(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return client, nil
}

// resolveKubeconfigPath picks the kubeconfig: the flag, then
// $KUBECONFIG, then ~/.kube/config.
func resolveKubeconfigPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if env := getenv("KUBECONFIG"); env != "" {
		return env, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".kube", "config"), nil
}

// printDeploySuccess outputs the completion summary.
func printDeploySuccess(cfg *config.Config, state *provisioning.State) {
	fmt.Println()
	fmt.Println(ui.Title("Cluster Autoscaler deployed"))
	fmt.Println(ui.OK(fmt.Sprintf("IAM policy %s", state.PolicyARN)))
	fmt.Println(ui.OK(fmt.Sprintf("%d node groups tagged", len(state.NodeGroups))))
	fmt.Println(ui.OK(fmt.Sprintf("%d manifests applied to %s", state.AppliedManifests, addons.Namespace)))
	for _, key := range state.ArchivedKeys {
		fmt.Println(ui.OK(fmt.Sprintf("plan archived to s3://%s/%s", cfg.Archive.Bucket, key)))
	}
	fmt.Println()
	fmt.Println("Watch it come up with:")
	fmt.Printf("  kubectl -n %s rollout status deployment/%s\n", addons.Namespace, addons.AddonName)
}
