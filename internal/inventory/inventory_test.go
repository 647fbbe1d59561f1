package inventory

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someshbvrm/labsession/internal/provision"
)

func TestFromHost(t *testing.T) {
	h := &provision.Host{
		PublicIP: "54.210.12.7",
		User:     "ubuntu",
		KeyPath:  "/keys/deployer.pem",
	}

	e := FromHost(h)
	assert.Equal(t, "54.210.12.7", e.Address)
	assert.Equal(t, "ubuntu", e.User)
	assert.Equal(t, "/usr/bin/python3", e.Interpreter)
}

func TestRender(t *testing.T) {
	e := Entry{
		Address:     "54.210.12.7",
		User:        "ubuntu",
		KeyPath:     "/keys/deployer.pem",
		Interpreter: "/usr/bin/python3",
	}

	got := e.Render()
	assert.Contains(t, got, "[app]\n")
	assert.Contains(t, got, "54.210.12.7 ansible_user=ubuntu")
	assert.Contains(t, got, "ansible_ssh_private_key_file=/keys/deployer.pem")
	assert.Contains(t, got, "ansible_python_interpreter=/usr/bin/python3")
}

func TestWrite(t *testing.T) {
	e := Entry{
		Address:     "54.210.12.7",
		User:        "ubuntu",
		KeyPath:     "/keys/deployer.pem",
		Interpreter: "/usr/bin/python3",
	}

	path, err := Write(t.TempDir(), e)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, e.Render(), string(data))
}

func TestWriteIncompleteEntry(t *testing.T) {
	_, err := Write(t.TempDir(), Entry{Address: "54.210.12.7"})
	assert.ErrorIs(t, err, ErrIncomplete)
}
