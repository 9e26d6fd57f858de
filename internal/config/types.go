package config

import "github.com/mkotas/ekscaler/internal/addons"

// DefaultFileName is the config file looked up when --config is not given.
const DefaultFileName = "ekscaler.yaml"

// Config holds the application configuration.
type Config struct {
	Cluster                 string            `mapstructure:"cluster" yaml:"cluster"`
	Region                  string            `mapstructure:"region" yaml:"region,omitempty"`
	Version                 string            `mapstructure:"version" yaml:"version,omitempty"`
	ImageRegistry           string            `mapstructure:"imageRegistry" yaml:"imageRegistry,omitempty"`
	FixDuplicateRoleBinding bool              `mapstructure:"fixDuplicateRoleBinding" yaml:"fixDuplicateRoleBinding,omitempty"`
	NodeGroups              []NodeGroupConfig `mapstructure:"nodeGroups" yaml:"nodeGroups,omitempty"`
	Archive                 *ArchiveConfig    `mapstructure:"archive" yaml:"archive,omitempty"`
}

// NodeGroupConfig pins a node group explicitly instead of discovering it
// from EKS.
type NodeGroupConfig struct {
	Name             string `mapstructure:"name" yaml:"name"`
	AutoScalingGroup string `mapstructure:"autoScalingGroup" yaml:"autoScalingGroup"`
	RoleName         string `mapstructure:"roleName" yaml:"roleName"`
}

// ArchiveConfig enables uploading rendered plans to S3.
type ArchiveConfig struct {
	Bucket string `mapstructure:"bucket" yaml:"bucket"`
	Prefix string `mapstructure:"prefix" yaml:"prefix,omitempty"`
}

// AddonOptions maps the config onto composer options.
func (c *Config) AddonOptions() addons.Options {
	return addons.Options{
		Version:                 c.Version,
		Registry:                c.ImageRegistry,
		FixDuplicateRoleBinding: c.FixDuplicateRoleBinding,
	}
}

// AddonNodeGroups maps explicitly configured node groups onto composer
// inputs. Returns nil when discovery should be used instead.
func (c *Config) AddonNodeGroups() []addons.NodeGroup {
	if len(c.NodeGroups) == 0 {
		return nil
	}
	groups := make([]addons.NodeGroup, 0, len(c.NodeGroups))
	for _, ng := range c.NodeGroups {
		groups = append(groups, addons.NodeGroup{
			Name:             ng.Name,
			AutoScalingGroup: ng.AutoScalingGroup,
			NodeRole:         ng.RoleName,
		})
	}
	return groups
}
