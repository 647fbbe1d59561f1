package build

import (
	"fmt"
	"path/filepath"
	"strings"
)

// selectJar picks exactly one deployable jar from the Maven output
// directory. Helper jars (sources, javadoc) are never candidates.
//
// With multiple candidates the selection is ambiguous and fails unless the
// caller-supplied selector glob narrows it to exactly one.
func selectJar(targetDir, selector string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(targetDir, "*.jar"))
	if err != nil {
		return "", err
	}

	candidates := make([]string, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".jar")
		if strings.HasSuffix(base, "-sources") || strings.HasSuffix(base, "-javadoc") {
			continue
		}
		candidates = append(candidates, m)
	}

	if selector != "" {
		selected := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ok, err := filepath.Match(selector, filepath.Base(c))
			if err != nil {
				return "", fmt.Errorf("invalid artifact selector %q: %w", selector, err)
			}
			if ok {
				selected = append(selected, c)
			}
		}
		candidates = selected
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: no jar in %s", ErrNoArtifact, targetDir)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = filepath.Base(c)
		}
		return "", fmt.Errorf("%w: %s", ErrAmbiguousArtifact, strings.Join(names, ", "))
	}
}
