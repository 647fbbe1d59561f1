package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/someshbvrm/labsession/internal/log"
)

// mvn runs the Maven binary in 'dir', surfacing combined output in the error
// on failure.
func (b *Builder) mvn(ctx context.Context, dir string, args ...string) error {
	bin := b.MavenBin
	if bin == "" {
		bin = "mvn"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%w: %s not found in $PATH: %w", ErrBuild, bin, err)
	}

	log.Info(ctx, "running build command", "cmd", shellquote.Join(append([]string{bin}, args...)...))

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s %v: %w: %s", ErrBuild, bin, args, err, out)
	}
	log.Debug(ctx, "build command output", "output", string(out))
	return nil
}
