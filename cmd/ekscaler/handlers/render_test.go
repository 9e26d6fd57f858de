package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkotas/ekscaler/internal/config"
)

func saveAndRestoreRenderFactories(t *testing.T) {
	origLoadConfigFile := loadConfigFile
	origWriteFile := writeFile
	origFileExists := fileExists

	t.Cleanup(func() {
		loadConfigFile = origLoadConfigFile
		writeFile = origWriteFile
		fileExists = origFileExists
	})
}

func renderTestConfig() *config.Config {
	return &config.Config{
		Cluster:       "prod",
		Version:       "v1.14.6",
		ImageRegistry: "k8s.gcr.io",
		NodeGroups: []config.NodeGroupConfig{
			{Name: "ng-a", AutoScalingGroup: "asg-a", RoleName: "role-a"},
		},
	}
}

func TestRenderWritesArtifacts(t *testing.T) {
	saveAndRestoreRenderFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return renderTestConfig(), nil
	}

	written := map[string][]byte{}
	writeFile = func(path string, data []byte, _ os.FileMode) error {
		written[path] = data
		return nil
	}

	output := captureOutput(func() {
		require.NoError(t, Render("prod.yaml", "out"))
	})

	policy := string(written[filepath.Join("out", "policy.json")])
	assert.Contains(t, policy, "autoscaling:DescribeAutoScalingGroups")
	assert.Contains(t, policy, "2012-10-17")

	manifests := string(written[filepath.Join("out", "manifests.yaml")])
	assert.Contains(t, manifests, "kind: ServiceAccount")
	assert.Contains(t, manifests, "kind: Deployment")
	assert.Contains(t, manifests, "k8s.io/cluster-autoscaler/prod")

	assert.Contains(t, output, "Cluster Autoscaler plan for prod")
	assert.Contains(t, output, "wrote "+filepath.Join("out", "policy.json"))
}

func TestRenderDefaultConfigMissing(t *testing.T) {
	saveAndRestoreRenderFactories(t)

	fileExists = func(_ string) bool { return false }

	err := Render("", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config file found")
	assert.Contains(t, err.Error(), "ekscaler init")
}

func TestRenderLoadError(t *testing.T) {
	saveAndRestoreRenderFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return nil, os.ErrNotExist
	}

	err := Render("missing.yaml", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRenderWriteError(t *testing.T) {
	saveAndRestoreRenderFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return renderTestConfig(), nil
	}
	writeFile = func(_ string, _ []byte, _ os.FileMode) error {
		return os.ErrPermission
	}

	err := Render("prod.yaml", "/readonly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
}
