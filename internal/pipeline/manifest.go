// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/fetch"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// ManifestFile is the manifest's name inside the data directory.
const ManifestFile = "manifest.yaml"

// Manifest is the on-disk record of one pipeline run: what was asked, what
// came back and where the tables were written.
type Manifest struct {
	RunID      string          `yaml:"run_id"`
	StartedAt  time.Time       `yaml:"started_at"`
	FinishedAt time.Time       `yaml:"finished_at"`
	Source     string          `yaml:"source"`
	Mode       types.GraphMode `yaml:"mode"`
	Config     ManifestConfig  `yaml:"config"`
	Counts     ManifestCounts  `yaml:"counts"`

	Stages        []clean.StageCount   `yaml:"stages"`
	FailedQueries []fetch.QueryFailure `yaml:"failed_queries,omitempty"`
	ParseFailures []string             `yaml:"parse_failures,omitempty"`

	// Outputs maps table names (seeds, publications, ...) to file paths.
	Outputs map[string]string `yaml:"outputs"`
}

// ManifestConfig stores the settings that shaped the result.
type ManifestConfig struct {
	UseAPI     bool          `yaml:"use_api"`
	QueryDelay time.Duration `yaml:"query_delay"`
	PageSize   int           `yaml:"page_size"`
	MaxResults int           `yaml:"max_results"`
	MaxAuthors int           `yaml:"max_authors"`
	Strict     bool          `yaml:"strict_parse"`
}

// ManifestCounts stores the size of every table.
type ManifestCounts struct {
	Seeds      int `yaml:"seeds"`
	Queries    int `yaml:"queries"`
	Succeeded  int `yaml:"succeeded"`
	Fetched    int `yaml:"fetched"`
	Cleaned    int `yaml:"cleaned"`
	Edges      int `yaml:"edges"`
	Neighbours int `yaml:"neighbours"`
}

// WriteManifest saves m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
