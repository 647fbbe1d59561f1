// Package ssh is a small facade over 'x/crypto/ssh' covering what the deploy
// stage needs: key loading, connection setup and single-command execution.
package ssh

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/crypto/ssh"
)

const defaultDialTimeout = 10 * time.Second

var (
	ErrFailedDial      = fmt.Errorf("failed to establish SSH connection")
	ErrFailedHostParse = fmt.Errorf("failed to parse hostname")
	ErrFailedKeyParse  = fmt.Errorf("failed to parse SSH private key")
	ErrSessionInit     = fmt.Errorf("failed to begin SSH session")
	ErrCmdExec         = fmt.Errorf("failed to execute SSH command")
)

// LoadKey reads and parses a PEM-encoded private key file.
func LoadKey(path string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedKeyParse, err)
	}
	return signer, nil
}

// Connect establishes an SSH connection to 'host' on TCP 'port' (22 when 0),
// authenticating as 'user' with 'signer'.
//
// Host keys are not verified: per-run hosts are freshly created and their
// keys are unknown by construction.
func Connect(host string, port uint16, user string, signer ssh.Signer) (*ssh.Client, error) {
	if port == 0 {
		port = 22
	}

	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         defaultDialTimeout,
	}

	target, err := joinHostPort(host, port)
	if err != nil {
		return nil, err
	}

	client, err := ssh.Dial("tcp", target, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedDial, err)
	}
	return client, nil
}

// Exec executes a single command, returning captured standard out/err.
func Exec(client *ssh.Client, cmd string) (string, string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrSessionInit, err)
	}
	defer session.Close()

	stdout := new(bytes.Buffer)
	session.Stdout = stdout
	stderr := new(bytes.Buffer)
	session.Stderr = stderr

	if err := session.Run(cmd); err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("%w: %w", ErrCmdExec, err)
	}
	return stdout.String(), stderr.String(), nil
}

// joinHostPort validates 'host' as an IPv4/IPv6 address or resolvable
// hostname and joins it with the port in the address-family-specific format.
func joinHostPort(host string, port uint16) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	addr := net.ParseIP(host)
	if addr == nil {
		addrs, err := net.DefaultResolver.LookupHost(ctx, host)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrFailedHostParse, host)
		}
		return joinHostPort(addrs[0], port)
	}
	if ipv4 := addr.To4(); ipv4 != nil {
		return fmt.Sprintf("%s:%d", ipv4.String(), port), nil
	}
	return fmt.Sprintf("[%s]:%d", addr.String(), port), nil
}
