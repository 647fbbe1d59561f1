package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labsession.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
repo_url: https://example.com/demo.git
artifact:
  name: demo-jar
  selector: "demo-*.jar"
provision:
  driver: ec2
  instance_type: t3.small
  app_port: 9090
  allow_open_ingress: true
deploy:
  playbook: infra/site.yml
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/demo.git", cfg.RepoURL)
	assert.Equal(t, "demo-jar", cfg.Artifact.Name)
	assert.Equal(t, "demo-*.jar", cfg.Artifact.Selector)
	assert.Equal(t, "ec2", cfg.Provision.Driver)
	assert.Equal(t, "t3.small", cfg.Provision.InstanceType)
	assert.Equal(t, 9090, cfg.Provision.AppPort)
	assert.True(t, cfg.Provision.AllowOpenIngress)
	assert.Equal(t, "infra/site.yml", cfg.Deploy.Playbook)

	// Untouched fields keep their defaults.
	assert.Equal(t, "local", cfg.Artifact.Store)
	assert.Equal(t, "ubuntu", cfg.Provision.SSHUser)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labsession.yaml")
	require.NoError(t, os.WriteFile(path, []byte("artifact:\n  store: ftp\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifact store")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labsession.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provision:\n  driver: vsphere\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provision driver")
}

func TestLoadRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labsession.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provision:\n  app_port: 70000\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app_port")
}

func TestLoadSecretsFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"AWS_ACCESS_KEY_ID=AKIAEXAMPLE\nHOST_PRIVATE_KEY_PATH=/keys/id_ed25519\n"), 0o600))

	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("HOST_PRIVATE_KEY_PATH", "")
	os.Unsetenv("AWS_ACCESS_KEY_ID")
	os.Unsetenv("HOST_PRIVATE_KEY_PATH")

	s, err := LoadSecrets(path)
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", s.AWSAccessKeyID)
	assert.Equal(t, "/keys/id_ed25519", s.HostPrivateKeyPath)
	assert.Equal(t, "us-east-1", s.AWSRegion)
}

func TestLoadSecretsMissingEnvFileIsFine(t *testing.T) {
	_, err := LoadSecrets(filepath.Join(t.TempDir(), "nope.env"))
	assert.NoError(t, err)
}
