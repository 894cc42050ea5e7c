// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config maps viper settings onto types.PipelineConfig.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/fetch"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g.
// COAUTHOR_GRAPH_FETCH_QUERY_DELAY=5s.
const EnvPrefix = "COAUTHOR_GRAPH"

// Validation errors.
var (
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrInvalidDelay     = errors.New("delay must not be negative")
	ErrInvalidRetries   = errors.New("max retries must not be negative")
	ErrInvalidMaxAuth   = errors.New("max authors must be at least 2")
	ErrInvalidGraphMode = errors.New("unknown graph mode")
	ErrInvalidLogLevel  = errors.New("unknown log level")
	ErrMissingDataDir   = errors.New("data directory is required")
)

// SetDefaults registers every key with its default so that environment
// overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "dev")

	v.SetDefault("fetch.use_api", true)
	v.SetDefault("fetch.api_base", fetch.DefaultAPIBase)
	v.SetDefault("fetch.web_base", fetch.DefaultWebBase)
	v.SetDefault("fetch.query_delay", fetch.DefaultQueryDelay)
	v.SetDefault("fetch.page_delay", 3*time.Second)
	v.SetDefault("fetch.page_size", 100)
	v.SetDefault("fetch.max_results", 0)
	v.SetDefault("fetch.max_retries", 5)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.user_agent", "coauthor-graph/0.1 (+https://github.com/pdiddy/coauthor-graph)")

	v.SetDefault("names.overrides_file", "")

	v.SetDefault("clean.max_authors", clean.DefaultMaxAuthors)
	v.SetDefault("clean.strict_parse", false)

	v.SetDefault("graph.mode", string(types.GraphAuthors))

	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.db_path", "")

	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "")
	v.SetDefault("neo4j.timeout", 30*time.Second)
}

// BindEnv wires COAUTHOR_GRAPH_* environment variables into v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a PipelineConfig and validates it.
func Load(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges. Each failure wraps one of the Err* values.
func Validate(cfg types.PipelineConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: %w", cfg.Log.Level, ErrInvalidLogLevel))
	}

	f := cfg.Fetch
	if f.QueryDelay < 0 || f.PageDelay < 0 {
		errs = append(errs, fmt.Errorf("fetch: %w", ErrInvalidDelay))
	}
	if f.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries %d: %w", f.MaxRetries, ErrInvalidRetries))
	}
	if f.UseAPI {
		if f.PageSize < 1 || f.PageSize > 2000 {
			errs = append(errs, fmt.Errorf("fetch.page_size %d: must be 1-2000: %w", f.PageSize, ErrInvalidPageSize))
		}
	} else {
		switch f.PageSize {
		case 25, 50, 100, 200:
		default:
			errs = append(errs, fmt.Errorf("fetch.page_size %d: web search accepts 25, 50, 100 or 200: %w", f.PageSize, ErrInvalidPageSize))
		}
	}

	if cfg.Clean.MaxAuthors < 2 {
		errs = append(errs, fmt.Errorf("clean.max_authors %d: %w", cfg.Clean.MaxAuthors, ErrInvalidMaxAuth))
	}

	switch cfg.Graph.Mode {
	case types.GraphAuthors, types.GraphPapers:
	default:
		errs = append(errs, fmt.Errorf("graph.mode %q: %w", cfg.Graph.Mode, ErrInvalidGraphMode))
	}

	if strings.TrimSpace(cfg.Store.DataDir) == "" {
		errs = append(errs, ErrMissingDataDir)
	}

	return errors.Join(errs...)
}
