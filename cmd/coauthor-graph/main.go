// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the coauthor-graph CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/coauthor-graph/internal/config"
	"github.com/pdiddy/coauthor-graph/internal/logger"
	"github.com/pdiddy/coauthor-graph/internal/secrets"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration for the running command.
	cfg types.PipelineConfig

	// log is built from cfg.Log before any command runs.
	log = logger.Nop()
)

// flagKeys maps command-line flags to configuration keys. A flag is bound
// only when the running command defines it, so commands can share names.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"log-mode":    "log.mode",
	"data-dir":    "store.data_dir",
	"db":          "store.db_path",
	"use-api":     "fetch.use_api",
	"delay":       "fetch.query_delay",
	"page-delay":  "fetch.page_delay",
	"page-size":   "fetch.page_size",
	"max-results": "fetch.max_results",
	"overrides":   "names.overrides_file",
	"max-authors": "clean.max_authors",
	"strict":      "clean.strict_parse",
	"mode":        "graph.mode",
	"neo4j-uri":   "neo4j.uri",
}

// rootCmd is the base command for the coauthor-graph CLI.
var rootCmd = &cobra.Command{
	Use:   "coauthor-graph",
	Short: "Build co-authorship graphs from arXiv",
	Long: `coauthor-graph collects arXiv records for a list of seed authors, cleans
them and derives a co-authorship edge list.

Each stage is a subcommand (seeds, fetch, clean, graph, neighbours) reading
and writing CSV tables; run chains them all and records a manifest. The
neighbours table is itself a seed file, so the next ring of authors can be
crawled by feeding it back in.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := viper.BindPFlag(key, f); err != nil {
					return fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}

		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		l, err := logger.New(loaded.Log.Mode, loaded.Log.Level)
		if err != nil {
			return err
		}
		log = l

		s, err := secrets.Load(secrets.DefaultDir, log)
		if err != nil {
			return err
		}
		if keys := s.Keys(); len(keys) > 0 {
			log.Debug("loaded secrets", "keys", keys)
		}
		loaded.Neo4j.User = s.Get(secrets.Neo4jUser, loaded.Neo4j.User)
		loaded.Neo4j.Password = s.Get(secrets.Neo4jPassword, loaded.Neo4j.Password)

		if used := viper.ConfigFileUsed(); used != "" {
			log.Debug("using config file", "path", used)
		}
		cfg = loaded
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./coauthor-graph.yaml or ~/.config/coauthor-graph/coauthor-graph.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-mode", "dev", "log encoding (dev or prod)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory for output tables")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("coauthor-graph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "coauthor-graph"))
		}
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Reading config:", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
