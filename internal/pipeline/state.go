package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveContext persists the run context so later single-stage invocations can
// pick up where an earlier one left off.
func SaveContext(path string, c *Context) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run state: %w", err)
	}
	return nil
}

// LoadContext restores a previously saved run context. A missing state file
// yields a fresh context instead of an error.
func LoadContext(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewContext(), nil
		}
		return nil, fmt.Errorf("reading run state: %w", err)
	}

	c := &Context{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing run state %q: %w", path, err)
	}
	if c.RunID == "" {
		return nil, fmt.Errorf("run state %q has no run id", path)
	}
	return c, nil
}
