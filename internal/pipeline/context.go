package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/someshbvrm/labsession/internal/artifact"
	"github.com/someshbvrm/labsession/internal/provision"
)

var (
	ErrNoArtifact = fmt.Errorf("no artifact has been published by the build stage")
	ErrNoHost     = fmt.Errorf("no host has been provisioned")
)

// Context carries the state handed between stages: the published artifact
// handle and the provisioned host. One Context exists per run; there is no
// cross-run state.
type Context struct {
	// RunID uniquely identifies this build-provision-deploy cycle.
	RunID string

	// Artifact is set exactly once, by the build stage.
	Artifact *artifact.Handle

	// Host is set exactly once, by the provision stage.
	Host *provision.Host
}

func NewContext() *Context {
	return &Context{RunID: uuid.NewString()}
}

// RequireArtifact returns the published artifact or fails when the build
// stage has not run.
func (c *Context) RequireArtifact() (*artifact.Handle, error) {
	if c.Artifact == nil {
		return nil, ErrNoArtifact
	}
	return c.Artifact, nil
}

// RequireHost returns the provisioned host or fails when the provision
// stage has not run.
func (c *Context) RequireHost() (*provision.Host, error) {
	if c.Host == nil {
		return nil, ErrNoHost
	}
	return c.Host, nil
}
