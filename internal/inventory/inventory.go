// Package inventory renders the ephemeral single-host inventory consumed by
// the configuration-management playbook. An inventory is regenerated for
// every run and never cached: the host address changes across runs.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/someshbvrm/labsession/internal/provision"
)

// Group is the inventory group the playbook targets.
const Group = "app"

var ErrIncomplete = fmt.Errorf("inventory entry is missing connection parameters")

// Entry maps one provisioned host to its connection parameters.
type Entry struct {
	Address     string
	User        string
	KeyPath     string
	Interpreter string
}

// FromHost builds the entry for a provisioned host.
func FromHost(h *provision.Host) Entry {
	return Entry{
		Address:     h.Address(),
		User:        h.User,
		KeyPath:     h.KeyPath,
		Interpreter: "/usr/bin/python3",
	}
}

// Validate checks all required connection parameters are present.
func (e Entry) Validate() error {
	var missing []string
	if e.Address == "" {
		missing = append(missing, "address")
	}
	if e.User == "" {
		missing = append(missing, "user")
	}
	if e.KeyPath == "" {
		missing = append(missing, "key path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Render produces the INI-format inventory record.
func (e Entry) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]\n", Group)
	fmt.Fprintf(&sb,
		"%s ansible_user=%s ansible_ssh_private_key_file=%s ansible_python_interpreter=%s ansible_ssh_common_args='-o StrictHostKeyChecking=no'\n",
		e.Address, e.User, e.KeyPath, e.Interpreter,
	)
	return sb.String()
}

// Write validates and writes the rendered inventory into 'dir', returning
// the file path. The file is meant to live for one playbook invocation.
func Write(dir string, e Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(dir, "inventory-*.ini")
	if err != nil {
		return "", fmt.Errorf("creating inventory file: %w", err)
	}
	path := f.Name()

	if _, err := f.WriteString(e.Render()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing inventory: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}
