// Package provision defines the contract between the pipeline and the
// infrastructure drivers that create the deployment target. Drivers converge
// cloud resources; the pipeline only ever sees the resulting Host.
package provision

import (
	"context"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrApply covers any infrastructure convergence failure that isn't a
	// credential or quota problem.
	ErrApply = fmt.Errorf("failed to apply infrastructure description")

	// ErrCredential indicates the cloud rejected the supplied credentials.
	ErrCredential = fmt.Errorf("cloud credentials were rejected")

	// ErrQuota indicates the cloud refused the request on account limits.
	ErrQuota = fmt.Errorf("cloud account quota exceeded")

	ErrNoAddress = fmt.Errorf("provisioned instance has no public address")
)

// Host is the externally created compute target. It is created once per run
// and never mutated; teardown happens only through an explicit Driver.Teardown.
type Host struct {
	// PublicIP is the instance's public IPv4 address.
	PublicIP string

	// PublicDNS is the instance's public hostname, when the platform assigns
	// one.
	PublicDNS string

	// User is the login account, fixed by the base machine image.
	User string

	// KeyPath points at the private key material used for login. The key is
	// injected via the secrets boundary, never generated here.
	KeyPath string
}

// Address returns the connectable address, preferring the public IP.
func (h *Host) Address() string {
	if h.PublicIP != "" {
		return h.PublicIP
	}
	return h.PublicDNS
}

// Validate checks the host carries a syntactically valid public address.
func (h *Host) Validate() error {
	addr := h.Address()
	if addr == "" {
		return ErrNoAddress
	}
	if !ValidAddress(addr) {
		return fmt.Errorf("%w: %q is not a valid address", ErrNoAddress, addr)
	}
	return nil
}

// Driver provisions and tears down the single compute target of a run.
type Driver interface {
	// Provision converges the infrastructure description and returns the
	// resulting host. Any apply error is terminal; drivers never partially
	// provision and continue.
	Provision(ctx context.Context) (*Host, error)

	// Teardown destroys everything Provision created. It is only invoked by
	// an explicit out-of-band teardown, never by the pipeline itself.
	Teardown(ctx context.Context) error
}

// ValidAddress reports whether 's' is an IP address or a plausible RFC-1123
// hostname.
func ValidAddress(s string) bool {
	if net.ParseIP(s) != nil {
		return true
	}
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9':
			case r == '-':
			default:
				return false
			}
		}
	}
	return true
}
