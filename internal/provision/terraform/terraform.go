// Package terraform provisions the deployment target by applying an embedded
// terraform description. Convergence semantics (idempotent re-apply, partial
// failure cleanup) are the platform's; this driver only stages the source,
// runs init/apply and reads back the named outputs.
package terraform

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/terraform-exec/tfexec"

	"github.com/someshbvrm/labsession/internal/log"
	"github.com/someshbvrm/labsession/internal/provision"
)

//go:embed source
var source embed.FS

const varsFileName = "vars.tfvars.json"

var _ provision.Driver = (*Driver)(nil)

// Vars are the caller-supplied inputs of the infrastructure description.
type Vars struct {
	Name           string `json:"name"`
	Region         string `json:"region"`
	InstanceType   string `json:"instance_type"`
	SSHPublicKey   string `json:"ssh_public_key"`
	AppPort        int    `json:"app_port"`
	SSHIngressCIDR string `json:"ssh_ingress_cidr"`
	AppIngressCIDR string `json:"app_ingress_cidr"`
}

type Driver struct {
	vars Vars

	// user and keyPath describe how the deploy stage logs into the host;
	// they pass through to the returned Host untouched.
	user    string
	keyPath string

	// work is the terraform workdir. It persists across invocations so an
	// explicit teardown can destroy what a previous run applied.
	work string

	tf *tfexec.Terraform
}

type Option func(*Driver) error

// WithWorkspace sets the persistent terraform working directory.
func WithWorkspace(workspace string) Option {
	return func(d *Driver) error {
		d.work = workspace
		return nil
	}
}

// WithLogin sets the SSH login account and private key path recorded on the
// provisioned host.
func WithLogin(user, keyPath string) Option {
	return func(d *Driver) error {
		d.user = user
		d.keyPath = keyPath
		return nil
	}
}

func New(vars Vars, opts ...Option) (*Driver, error) {
	d := &Driver{vars: vars}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.work == "" {
		path, err := os.MkdirTemp("", "labsession-tf")
		if err != nil {
			return nil, err
		}
		d.work = path
	} else {
		if err := os.MkdirAll(d.work, 0o755); err != nil {
			return nil, err
		}
	}

	tf, err := tfexec.NewTerraform(d.work, "terraform")
	if err != nil {
		return nil, fmt.Errorf("failed to find a terraform executable on $PATH: %w", err)
	}
	d.tf = tf
	d.tf.SetStdout(io.Discard)

	return d, nil
}

// Provision implements provision.Driver.
func (d *Driver) Provision(ctx context.Context) (*provision.Host, error) {
	if err := stageSource(source, d.work); err != nil {
		return nil, fmt.Errorf("staging terraform source: %w", err)
	}

	// Empty ingress blocks mean open ingress was not acknowledged; pin both
	// ports to the caller's public address.
	if d.vars.SSHIngressCIDR == "" || d.vars.AppIngressCIDR == "" {
		cidr, err := provision.CallerCIDR(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving caller address: %w", err)
		}
		if d.vars.SSHIngressCIDR == "" {
			d.vars.SSHIngressCIDR = cidr
		}
		if d.vars.AppIngressCIDR == "" {
			d.vars.AppIngressCIDR = cidr
		}
	}

	if err := writeVarsFile(d.work, d.vars); err != nil {
		return nil, fmt.Errorf("writing terraform vars: %w", err)
	}

	log.Info(ctx, "initializing terraform", "workdir", d.work)
	if err := d.tf.Init(ctx, tfexec.Upgrade(true), tfexec.Reconfigure(true)); err != nil {
		return nil, fmt.Errorf("%w: terraform init: %w", provision.ErrApply, err)
	}

	log.Info(ctx, "applying infrastructure description",
		"region", d.vars.Region, "instance_type", d.vars.InstanceType)
	if err := d.tf.Apply(ctx, tfexec.VarFile(varsFileName)); err != nil {
		return nil, fmt.Errorf("%w: terraform apply: %w", provision.ErrApply, err)
	}

	out, err := d.tf.Output(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading terraform outputs: %w", provision.ErrApply, err)
	}

	host, err := hostFromOutputs(outputValues(out))
	if err != nil {
		return nil, err
	}
	host.User = d.user
	host.KeyPath = d.keyPath

	log.Info(ctx, "instance provisioned", "public_ip", host.PublicIP, "public_dns", host.PublicDNS)
	return host, nil
}

// Teardown implements provision.Driver. It destroys whatever state lives in
// the persistent workdir.
func (d *Driver) Teardown(ctx context.Context) error {
	log.Info(ctx, "destroying terraform-managed resources", "workdir", d.work)
	if err := d.tf.Destroy(ctx, tfexec.VarFile(varsFileName)); err != nil {
		return fmt.Errorf("terraform destroy: %w", err)
	}
	return nil
}

// outputValues flattens tfexec output metadata down to the raw JSON values.
func outputValues(out map[string]tfexec.OutputMeta) map[string]json.RawMessage {
	values := make(map[string]json.RawMessage, len(out))
	for k, v := range out {
		values[k] = v.Value
	}
	return values
}

// hostFromOutputs decodes the named provisioner outputs into a Host and
// validates the address.
func hostFromOutputs(values map[string]json.RawMessage) (*provision.Host, error) {
	host := &provision.Host{}

	ipRaw, ok := values["public_ip"]
	if !ok {
		return nil, fmt.Errorf("%w: missing 'public_ip' output", provision.ErrNoAddress)
	}
	if err := json.Unmarshal(ipRaw, &host.PublicIP); err != nil {
		return nil, fmt.Errorf("decoding 'public_ip' output: %w", err)
	}

	if dnsRaw, ok := values["public_dns"]; ok {
		if err := json.Unmarshal(dnsRaw, &host.PublicDNS); err != nil {
			return nil, fmt.Errorf("decoding 'public_dns' output: %w", err)
		}
	}

	if err := host.Validate(); err != nil {
		return nil, err
	}
	return host, nil
}

func writeVarsFile(work string, vars Vars) error {
	vdata, err := json.Marshal(vars)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(work, varsFileName), vdata, 0o644)
}

// stageSource copies the embedded terraform source into the workdir, leaving
// terraform's own state and lock files untouched so re-runs converge instead
// of starting over.
func stageSource(src fs.FS, work string) error {
	skips := []func(fs.DirEntry) bool{
		func(de fs.DirEntry) bool { return strings.HasPrefix(de.Name(), ".terraform") },
		func(de fs.DirEntry) bool {
			return strings.HasPrefix(de.Name(), "terraform.tfstate") || strings.HasPrefix(de.Name(), ".terraform.lock.hcl")
		},
	}

	return fs.WalkDir(src, "source", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		for _, skip := range skips {
			if skip(d) {
				return nil
			}
		}

		rel := strings.TrimPrefix(path, "source")
		rel = strings.TrimPrefix(rel, "/")
		targ := filepath.Join(work, filepath.FromSlash(rel))

		if d.IsDir() {
			if rel == "" {
				return nil
			}
			return os.MkdirAll(targ, 0o755)
		}

		r, err := src.Open(path)
		if err != nil {
			return err
		}
		defer r.Close()

		w, err := os.OpenFile(targ, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}

		if _, err := io.Copy(w, r); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil && !errors.Is(err, fs.ErrClosed) {
			return err
		}
		return nil
	})
}
