package deploy

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/someshbvrm/labsession/internal/log"
)

// playbook invokes the external playbook runner against the single-host
// inventory. Diagnostic output from the runner is surfaced as-is; no retry.
func (d *Deployer) playbook(ctx context.Context, inventoryPath, jarPath string) error {
	bin := d.AnsibleBin
	if bin == "" {
		bin = "ansible-playbook"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%w: %s not found in $PATH: %w", ErrPlaybook, bin, err)
	}

	args := []string{
		"-i", inventoryPath,
		d.PlaybookPath,
		"--extra-vars", fmt.Sprintf("app_jar=%s app_port=%d", jarPath, d.AppPort),
	}

	log.Info(ctx, "running playbook", "cmd", shellquote.Join(append([]string{bin}, args...)...))

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(os.Environ(), "ANSIBLE_HOST_KEY_CHECKING=False")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrPlaybook, err)
	}

	log.Info(ctx, "playbook run complete", "playbook", d.PlaybookPath)
	return nil
}
