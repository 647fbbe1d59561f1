package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someshbvrm/labsession/internal/artifact"
)

// initSampleRepo creates a local git repository with a single commit so the
// clone step can run without network access.
func initSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("pom.xml")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir
}

// fakeMaven writes a stand-in build script that emits one jar into target/.
func fakeMaven(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-mvn")
	script := "#!/bin/sh\nmkdir -p target\nprintf 'jar-bytes' > target/app-1.0.0.jar\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestBuilderRunPublishesSingleArtifact(t *testing.T) {
	ctx := context.Background()

	store, err := artifact.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	b := &Builder{
		RepoURL:      initSampleRepo(t),
		ArtifactName: "app-jar",
		MavenBin:     fakeMaven(t),
	}

	h, err := b.Run(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "app-jar", h.Name)
	assert.Equal(t, int64(9), h.Size)
	assert.NotEmpty(t, h.Digest)
}

func TestBuilderRunCloneFailure(t *testing.T) {
	ctx := context.Background()

	store, err := artifact.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	b := &Builder{
		RepoURL:  filepath.Join(t.TempDir(), "not-a-repo"),
		MavenBin: fakeMaven(t),
	}

	_, err = b.Run(ctx, store)
	assert.ErrorIs(t, err, ErrClone)
}

func TestBuilderRunBuildFailure(t *testing.T) {
	ctx := context.Background()

	store, err := artifact.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	failing := filepath.Join(t.TempDir(), "fail-mvn")
	require.NoError(t, os.WriteFile(failing, []byte("#!/bin/sh\nexit 1\n"), 0o755))

	b := &Builder{
		RepoURL:  initSampleRepo(t),
		MavenBin: failing,
	}

	_, err = b.Run(ctx, store)
	assert.ErrorIs(t, err, ErrBuild)
}
