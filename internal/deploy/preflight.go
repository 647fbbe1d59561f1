package deploy

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/provision"
	"github.com/someshbvrm/labsession/internal/ssh"
)

const portSSH = 22

// preflight waits for the host's SSH port and authenticates one throwaway
// session, so authentication problems surface before the playbook runs.
func (d *Deployer) preflight(ctx context.Context, h *provision.Host) error {
	timeout := d.ConnectTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Info(ctx, "waiting for SSH reachability", "port", portSSH)
	if err := waitTCP(waitCtx, h.Address(), portSSH); err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	signer, err := ssh.LoadKey(h.KeyPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}

	client, err := ssh.Connect(h.Address(), portSSH, h.User, signer)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return fmt.Errorf("%w: %w", ErrAuth, err)
		}
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer client.Close()

	if _, _, err := ssh.Exec(client, "true"); err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	log.Info(ctx, "SSH pre-flight succeeded", "user", h.User)
	return nil
}

// verify confirms the application port accepts TCP connections after the
// playbook has registered and started the service.
func (d *Deployer) verify(ctx context.Context, h *provision.Host) error {
	port := d.AppPort
	if port == 0 {
		port = 8080
	}

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	log.Info(ctx, "verifying application port", "port", port)
	if err := waitTCP(waitCtx, h.Address(), uint16(port)); err != nil {
		return fmt.Errorf("%w: application port %d never became reachable: %w", ErrPlaybook, port, err)
	}

	log.Info(ctx, "application is serving", "address", h.Address(), "port", port)
	return nil
}

func waitTCP(ctx context.Context, host string, port uint16) error {
	target := net.JoinHostPort(host, strconv.Itoa(int(port)))
	dialer := &net.Dialer{Timeout: 3 * time.Second}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn, err := dialer.DialContext(ctx, "tcp", target)
			if err != nil {
				log.Debug(ctx, "TCP port not ready", "target", target)
				continue
			}
			_ = conn.Close()
			return nil
		}
	}
}
