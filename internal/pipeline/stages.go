package pipeline

import (
	"context"

	"github.com/someshbvrm/labsession/internal/artifact"
	"github.com/someshbvrm/labsession/internal/build"
	"github.com/someshbvrm/labsession/internal/deploy"
	"github.com/someshbvrm/labsession/internal/provision"
)

// Stage names, also used as span and log attributes.
const (
	StageBuild     = "build"
	StageProvision = "provision"
	StageDeploy    = "deploy"
)

var (
	_ Stage = (*BuildStage)(nil)
	_ Stage = (*ProvisionStage)(nil)
	_ Stage = (*DeployStage)(nil)
)

// BuildStage adapts a Builder to the pipeline and publishes its artifact
// handle into the run context.
type BuildStage struct {
	Builder *build.Builder
	Store   artifact.Store
}

func (s *BuildStage) Name() string { return StageBuild }

func (s *BuildStage) Run(ctx context.Context, pctx *Context) error {
	h, err := s.Builder.Run(ctx, s.Store)
	if err != nil {
		return err
	}
	pctx.Artifact = h
	return nil
}

// ProvisionStage adapts a provision.Driver and records the resulting host.
type ProvisionStage struct {
	Driver provision.Driver
}

func (s *ProvisionStage) Name() string { return StageProvision }

func (s *ProvisionStage) Run(ctx context.Context, pctx *Context) error {
	host, err := s.Driver.Provision(ctx)
	if err != nil {
		return err
	}
	pctx.Host = host
	return nil
}

// DeployStage consumes the artifact and host produced by its predecessors.
type DeployStage struct {
	Deployer *deploy.Deployer
	Store    artifact.Store
}

func (s *DeployStage) Name() string { return StageDeploy }

func (s *DeployStage) Run(ctx context.Context, pctx *Context) error {
	art, err := pctx.RequireArtifact()
	if err != nil {
		return err
	}
	host, err := pctx.RequireHost()
	if err != nil {
		return err
	}
	return s.Deployer.Run(ctx, s.Store, host, art)
}
