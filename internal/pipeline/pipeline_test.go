package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someshbvrm/labsession/internal/artifact"
	"github.com/someshbvrm/labsession/internal/provision"
)

// fakeStage records whether it ran and optionally fails or mutates the run
// context.
type fakeStage struct {
	name string
	fail error
	ran  bool
	fn   func(*Context)
}

func (s *fakeStage) Name() string { return s.name }

func (s *fakeStage) Run(_ context.Context, pctx *Context) error {
	s.ran = true
	if s.fn != nil {
		s.fn(pctx)
	}
	return s.fail
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	var order []string
	stage := func(name string) *fakeStage {
		return &fakeStage{name: name, fn: func(*Context) { order = append(order, name) }}
	}

	b, p, d := stage(StageBuild), stage(StageProvision), stage(StageDeploy)
	result, err := New(b, p, d).Run(context.Background(), NewContext())
	require.NoError(t, err)

	assert.Equal(t, []string{StageBuild, StageProvision, StageDeploy}, order)
	assert.True(t, result.Succeeded())
}

func TestBuildFailureSkipsEverything(t *testing.T) {
	b := &fakeStage{name: StageBuild, fail: fmt.Errorf("compile error")}
	p := &fakeStage{name: StageProvision}
	d := &fakeStage{name: StageDeploy}

	result, err := New(b, p, d).Run(context.Background(), NewContext())
	require.Error(t, err)

	assert.False(t, p.ran)
	assert.False(t, d.ran)
	assert.Equal(t, StatusFailed, result.Status(StageBuild))
	assert.Equal(t, StatusSkipped, result.Status(StageProvision))
	assert.Equal(t, StatusSkipped, result.Status(StageDeploy))
	assert.False(t, result.Succeeded())
}

func TestProvisionFailureLeavesArtifactUnconsumed(t *testing.T) {
	pctx := NewContext()

	b := &fakeStage{name: StageBuild, fn: func(c *Context) {
		c.Artifact = &artifact.Handle{Name: "app-jar", Size: 1}
	}}
	p := &fakeStage{name: StageProvision, fail: fmt.Errorf("quota exceeded")}
	d := &fakeStage{name: StageDeploy}

	result, err := New(b, p, d).Run(context.Background(), pctx)
	require.Error(t, err)

	assert.False(t, d.ran, "deploy must not execute after a provision failure")
	assert.NotNil(t, pctx.Artifact, "the published artifact remains unconsumed")
	assert.Nil(t, pctx.Host)
	assert.Equal(t, StatusSucceeded, result.Status(StageBuild))
	assert.Equal(t, StatusFailed, result.Status(StageProvision))
}

func TestRunErrorNamesFailingStage(t *testing.T) {
	boom := fmt.Errorf("boom")
	p := &fakeStage{name: StageProvision, fail: boom}

	_, err := New(p).Run(context.Background(), NewContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), StageProvision)
}

func TestContextRequireAccessors(t *testing.T) {
	pctx := NewContext()
	assert.NotEmpty(t, pctx.RunID)

	_, err := pctx.RequireArtifact()
	assert.ErrorIs(t, err, ErrNoArtifact)
	_, err = pctx.RequireHost()
	assert.ErrorIs(t, err, ErrNoHost)

	pctx.Artifact = &artifact.Handle{Name: "app-jar"}
	pctx.Host = &provision.Host{PublicIP: "10.0.0.1"}

	art, err := pctx.RequireArtifact()
	require.NoError(t, err)
	assert.Equal(t, "app-jar", art.Name)

	host, err := pctx.RequireHost()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", host.PublicIP)
}

func TestDeployStageGatesOnPredecessors(t *testing.T) {
	d := &DeployStage{}

	err := d.Run(context.Background(), NewContext())
	assert.ErrorIs(t, err, ErrNoArtifact)

	pctx := NewContext()
	pctx.Artifact = &artifact.Handle{Name: "app-jar"}
	err = d.Run(context.Background(), pctx)
	assert.ErrorIs(t, err, ErrNoHost)
}
