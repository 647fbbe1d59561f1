// Package build implements the build stage: clone a source repository, run
// the Maven build and publish exactly one jar to the artifact store.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/someshbvrm/labsession/internal/artifact"
	"github.com/someshbvrm/labsession/internal/log"
)

var (
	ErrClone             = fmt.Errorf("failed to clone source repository")
	ErrBuild             = fmt.Errorf("build command failed")
	ErrNoArtifact        = fmt.Errorf("build produced no artifact")
	ErrAmbiguousArtifact = fmt.Errorf("build produced multiple artifacts and no selector matched exactly one")
)

// DefaultRepoURL is the fixed public sample project built when the caller
// supplies no repository.
const DefaultRepoURL = "https://github.com/spring-projects/spring-petclinic.git"

// Builder clones and builds one source repository.
type Builder struct {
	// RepoURL is the source repository; empty means DefaultRepoURL.
	RepoURL string

	// ArtifactName is the slot the built jar is published under.
	ArtifactName string

	// Selector optionally narrows artifact selection when the build emits
	// more than one jar; a glob matched against the jar's base name.
	Selector string

	// WorkDir is where the repository is cloned. Empty means a fresh
	// temporary directory per run.
	WorkDir string

	// MavenBin overrides the build command, for tests.
	MavenBin string
}

// Run clones, builds and publishes. It returns the handle of the single
// published artifact.
func (b *Builder) Run(ctx context.Context, store artifact.Store) (*artifact.Handle, error) {
	repoURL := b.RepoURL
	if repoURL == "" {
		repoURL = DefaultRepoURL
	}
	name := b.ArtifactName
	if name == "" {
		name = "app-jar"
	}

	workDir := b.WorkDir
	if workDir == "" {
		dir, err := os.MkdirTemp("", "labsession-build")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)
		workDir = dir
	}

	srcDir := filepath.Join(workDir, "src")

	log.Info(ctx, "cloning source repository", "url", repoURL, "dir", srcDir)
	if _, err := git.PlainCloneContext(ctx, srcDir, false, &git.CloneOptions{
		URL:      repoURL,
		Depth:    1,
		Progress: io.Discard,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClone, err)
	}

	if err := b.mvn(ctx, srcDir, "-B", "-DskipTests", "package"); err != nil {
		return nil, err
	}

	jar, err := selectJar(filepath.Join(srcDir, "target"), b.Selector)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "selected build output", "jar", jar)

	return store.Publish(ctx, name, jar)
}
