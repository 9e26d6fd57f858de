// Package main is the entry point for the ekscaler CLI.
//
// ekscaler provisions the Kubernetes Cluster Autoscaler add-on for an
// AWS EKS cluster: the IAM policy its nodes need, the autoscaling group
// discovery tags, and the kube-system manifests, all as idempotent
// upserts driven by a small YAML config.
//
// Commands: init, render, deploy, version, completion.
//
// For detailed usage information, run:
//
//	ekscaler --help
package main

import (
	"fmt"
	"os"

	"github.com/mkotas/ekscaler/cmd/ekscaler/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
