// Package deploy implements the deploy stage: retrieve the published
// artifact, render the per-run inventory and run the configuration-management
// playbook against the provisioned host.
package deploy

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/someshbvrm/labsession/internal/artifact"
	"github.com/someshbvrm/labsession/internal/inventory"
	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/provision"
)

var (
	ErrConnect  = fmt.Errorf("provisioned host is unreachable")
	ErrAuth     = fmt.Errorf("authentication against provisioned host failed")
	ErrPlaybook = fmt.Errorf("playbook run failed")
)

// Deployer makes the artifact present and running on the host.
type Deployer struct {
	// PlaybookPath locates the configuration-management playbook. Its task
	// contents are the playbook author's business, not ours.
	PlaybookPath string

	// AnsibleBin overrides the playbook runner binary, for tests.
	AnsibleBin string

	// AppPort is the application port verified after the playbook run.
	AppPort int

	// ConnectTimeout bounds the pre-flight reachability wait.
	ConnectTimeout time.Duration

	// SkipVerify disables the post-deploy application port check.
	SkipVerify bool
}

// Run executes the deploy stage against a single host.
func (d *Deployer) Run(ctx context.Context, store artifact.Store, h *provision.Host, art *artifact.Handle) error {
	if err := h.Validate(); err != nil {
		return err
	}
	ctx = log.With(ctx, "host", h.Address())

	workDir, err := os.MkdirTemp("", "labsession-deploy")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	jarPath, err := store.Retrieve(ctx, art, workDir)
	if err != nil {
		return fmt.Errorf("retrieving artifact %q: %w", art.Name, err)
	}

	if err := d.preflight(ctx, h); err != nil {
		return err
	}

	invPath, err := inventory.Write(workDir, inventory.FromHost(h))
	if err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}

	if err := d.playbook(ctx, invPath, jarPath); err != nil {
		return err
	}

	if d.SkipVerify {
		return nil
	}
	return d.verify(ctx, h)
}
