// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package names

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// OverridesFile is the on-disk form of extra name corrections:
//
//	overrides:
//	  "P. Kazienkol": "P. Kazienko"
type OverridesFile struct {
	Overrides map[string]string `yaml:"overrides"`
}

// LoadOverrides reads an overrides file. An empty path yields no overrides.
func LoadOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides file: %w", err)
	}
	var f OverridesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing overrides file %s: %w", path, err)
	}
	for from, to := range f.Overrides {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, fmt.Errorf("overrides file %s: empty entry %q: %q", path, from, to)
		}
	}
	return f.Overrides, nil
}
