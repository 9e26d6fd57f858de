package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for common errors and returns a
// detailed error if validation fails.
func (c *Config) Validate() error {
	if c.Cluster == "" {
		return fmt.Errorf("cluster is required")
	}
	if err := validateClusterName(c.Cluster); err != nil {
		return err
	}

	for i, ng := range c.NodeGroups {
		if ng.Name == "" {
			return fmt.Errorf("nodeGroups[%d]: name is required", i)
		}
		if ng.AutoScalingGroup == "" {
			return fmt.Errorf("node group %q: autoScalingGroup is required", ng.Name)
		}
		if ng.RoleName == "" {
			return fmt.Errorf("node group %q: roleName is required", ng.Name)
		}
	}

	if c.Archive != nil && c.Archive.Bucket == "" {
		return fmt.Errorf("archive: bucket is required when archive is set")
	}

	return nil
}

// validateClusterName validates the cluster name.
func validateClusterName(s string) error {
	if s == "" {
		return fmt.Errorf("cluster name is required")
	}
	if len(s) > 100 {
		return fmt.Errorf("cluster name must be 100 characters or less")
	}
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '-' && c != '_' {
			return fmt.Errorf("cluster name can only contain letters, numbers, hyphens, and underscores")
		}
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return fmt.Errorf("cluster name cannot start or end with a hyphen")
	}
	return nil
}
