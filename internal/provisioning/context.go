package provisioning

import (
	"context"

	"github.com/mkotas/ekscaler/internal/addons"
	"github.com/mkotas/ekscaler/internal/config"
)

// State holds the shared results of deploy phases. It is progressively
// populated as each phase completes and is read by subsequent phases.
type State struct {
	// Discovery results
	NodeGroups []addons.NodeGroup

	// Composition result
	Plan *addons.Plan

	// Execution results
	PolicyARN        string
	AppliedManifests int
	ArchivedKeys     []string
}

// Context wraps all dependencies and state needed for a deploy phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Cloud    CloudProvisioner
	Applier  ManifestApplier
	Archiver PlanArchiver
	Observer Observer
}

// NewContext creates a new deploy context.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	cloud CloudProvisioner,
	applier ManifestApplier,
	archiver PlanArchiver,
	observer Observer,
) *Context {
	if observer == nil {
		observer = NewZapObserver(nil)
	}
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    &State{},
		Cloud:    cloud,
		Applier:  applier,
		Archiver: archiver,
		Observer: observer,
	}
}
