package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJars(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jar"), 0o644))
	}
	return dir
}

func TestSelectJarSingleCandidate(t *testing.T) {
	dir := writeJars(t, "app-1.0.0.jar")

	jar, err := selectJar(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "app-1.0.0.jar", filepath.Base(jar))
}

func TestSelectJarIgnoresHelperJars(t *testing.T) {
	dir := writeJars(t, "app-1.0.0.jar", "app-1.0.0-sources.jar", "app-1.0.0-javadoc.jar")

	jar, err := selectJar(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "app-1.0.0.jar", filepath.Base(jar))
}

func TestSelectJarFailsOnAmbiguity(t *testing.T) {
	dir := writeJars(t, "app-1.0.0.jar", "helper-2.0.0.jar")

	_, err := selectJar(dir, "")
	assert.ErrorIs(t, err, ErrAmbiguousArtifact)
}

func TestSelectJarSelectorDisambiguates(t *testing.T) {
	dir := writeJars(t, "app-1.0.0.jar", "helper-2.0.0.jar")

	jar, err := selectJar(dir, "app-*.jar")
	require.NoError(t, err)
	assert.Equal(t, "app-1.0.0.jar", filepath.Base(jar))
}

func TestSelectJarSelectorMatchingNothing(t *testing.T) {
	dir := writeJars(t, "app-1.0.0.jar", "helper-2.0.0.jar")

	_, err := selectJar(dir, "nothing-*.jar")
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestSelectJarEmptyTarget(t *testing.T) {
	_, err := selectJar(t.TempDir(), "")
	assert.ErrorIs(t, err, ErrNoArtifact)
}

func TestSelectJarBadSelector(t *testing.T) {
	dir := writeJars(t, "app-1.0.0.jar", "helper-2.0.0.jar")

	_, err := selectJar(dir, "[")
	assert.Error(t, err)
}
