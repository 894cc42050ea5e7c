// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.True(t, cfg.Fetch.UseAPI)
	assert.Equal(t, 3*time.Second, cfg.Fetch.QueryDelay)
	assert.Equal(t, 100, cfg.Fetch.PageSize)
	assert.Equal(t, 5, cfg.Fetch.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.NotEmpty(t, cfg.Fetch.UserAgent)
	assert.Equal(t, 15, cfg.Clean.MaxAuthors)
	assert.Equal(t, types.GraphAuthors, cfg.Graph.Mode)
	assert.Equal(t, "data", cfg.Store.DataDir)
	assert.Equal(t, "neo4j", cfg.Neo4j.User)
	assert.Empty(t, cfg.Neo4j.URI)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coauthor-graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fetch:
  use_api: false
  page_size: 50
  query_delay: 500ms
clean:
  max_authors: 10
graph:
  mode: papers
`), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.False(t, cfg.Fetch.UseAPI)
	assert.Equal(t, 50, cfg.Fetch.PageSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Fetch.QueryDelay)
	assert.Equal(t, 10, cfg.Clean.MaxAuthors)
	assert.Equal(t, types.GraphPapers, cfg.Graph.Mode)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("COAUTHOR_GRAPH_FETCH_MAX_RESULTS", "42")
	t.Setenv("COAUTHOR_GRAPH_NEO4J_PASSWORD", "pw")

	v := newViper()
	BindEnv(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Fetch.MaxResults)
	assert.Equal(t, "pw", cfg.Neo4j.Password)
}

func TestValidate(t *testing.T) {
	base, err := Load(newViper())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *types.PipelineConfig)
		want   error
	}{
		{"api page size too large", func(c *types.PipelineConfig) { c.Fetch.PageSize = 5000 }, ErrInvalidPageSize},
		{"web page size not offered", func(c *types.PipelineConfig) { c.Fetch.UseAPI = false; c.Fetch.PageSize = 30 }, ErrInvalidPageSize},
		{"negative delay", func(c *types.PipelineConfig) { c.Fetch.QueryDelay = -time.Second }, ErrInvalidDelay},
		{"negative retries", func(c *types.PipelineConfig) { c.Fetch.MaxRetries = -1 }, ErrInvalidRetries},
		{"max authors", func(c *types.PipelineConfig) { c.Clean.MaxAuthors = 1 }, ErrInvalidMaxAuth},
		{"graph mode", func(c *types.PipelineConfig) { c.Graph.Mode = "weighted" }, ErrInvalidGraphMode},
		{"log level", func(c *types.PipelineConfig) { c.Log.Level = "loud" }, ErrInvalidLogLevel},
		{"data dir", func(c *types.PipelineConfig) { c.Store.DataDir = " " }, ErrMissingDataDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)
	cfg.Graph.Mode = "x"
	cfg.Clean.MaxAuthors = 0

	err = Validate(cfg)
	assert.ErrorIs(t, err, ErrInvalidGraphMode)
	assert.ErrorIs(t, err, ErrInvalidMaxAuth)
}
