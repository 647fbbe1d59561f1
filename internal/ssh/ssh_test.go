package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestJoinHostPort(t *testing.T) {
	cases := []struct {
		name string
		host string
		port uint16
		want string
	}{
		{"ipv4", "54.210.12.7", 22, "54.210.12.7:22"},
		{"ipv6", "2001:db8::1", 22, "[2001:db8::1]:22"},
		{"localhost resolves", "localhost", 2222, "127.0.0.1:2222"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := joinHostPort(tc.host, tc.port)
			require.NoError(t, err)
			if tc.name == "localhost resolves" {
				// Resolver ordering varies; accept either loopback family.
				assert.Contains(t, []string{"127.0.0.1:2222", "[::1]:2222"}, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJoinHostPortUnresolvable(t *testing.T) {
	_, err := joinHostPort("definitely-not-a-real-host.invalid", 22)
	assert.ErrorIs(t, err, ErrFailedHostParse)
}

func TestLoadKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "test")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	signer, err := LoadKey(path)
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519", signer.PublicKey().Type())
}

func TestLoadKeyGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0o600))

	_, err := LoadKey(path)
	assert.ErrorIs(t, err, ErrFailedKeyParse)
}

func TestLoadKeyMissingFile(t *testing.T) {
	_, err := LoadKey(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
