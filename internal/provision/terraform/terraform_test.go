package terraform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someshbvrm/labsession/internal/provision"
)

func TestStageSourceCopiesTerraformFiles(t *testing.T) {
	work := t.TempDir()

	require.NoError(t, stageSource(source, work))

	for _, name := range []string{"main.tf", "variables.tf", "outputs.tf"} {
		_, err := os.Stat(filepath.Join(work, name))
		assert.NoError(t, err, name)
	}
}

func TestStageSourcePreservesState(t *testing.T) {
	work := t.TempDir()

	state := filepath.Join(work, "terraform.tfstate")
	require.NoError(t, os.WriteFile(state, []byte(`{"version":4}`), 0o644))

	require.NoError(t, stageSource(source, work))

	data, err := os.ReadFile(state)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"version":4}`), data)
}

func TestWriteVarsFile(t *testing.T) {
	work := t.TempDir()

	vars := Vars{
		Name:           "labsession",
		Region:         "us-east-1",
		InstanceType:   "t3.micro",
		SSHPublicKey:   "ssh-ed25519 AAAA test",
		AppPort:        8080,
		SSHIngressCIDR: "203.0.113.9/32",
		AppIngressCIDR: "0.0.0.0/0",
	}
	require.NoError(t, writeVarsFile(work, vars))

	data, err := os.ReadFile(filepath.Join(work, varsFileName))
	require.NoError(t, err)

	var got Vars
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, vars, got)
}

func TestHostFromOutputs(t *testing.T) {
	values := map[string]json.RawMessage{
		"public_ip":  json.RawMessage(`"54.210.12.7"`),
		"public_dns": json.RawMessage(`"ec2-54-210-12-7.compute-1.amazonaws.com"`),
	}

	host, err := hostFromOutputs(values)
	require.NoError(t, err)
	assert.Equal(t, "54.210.12.7", host.PublicIP)
	assert.Equal(t, "ec2-54-210-12-7.compute-1.amazonaws.com", host.PublicDNS)
}

func TestHostFromOutputsMissingAddress(t *testing.T) {
	_, err := hostFromOutputs(map[string]json.RawMessage{})
	assert.ErrorIs(t, err, provision.ErrNoAddress)

	_, err = hostFromOutputs(map[string]json.RawMessage{
		"public_ip": json.RawMessage(`""`),
	})
	assert.ErrorIs(t, err, provision.ErrNoAddress)
}
