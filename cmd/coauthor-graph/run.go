// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/fetch"
	"github.com/pdiddy/coauthor-graph/internal/graphdb"
	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/report"
	"github.com/pdiddy/coauthor-graph/internal/store"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <names.csv>",
	Short: "Run every stage and write all tables plus a manifest",
	Long: `Run prepares the seeds, fetches their records, cleans them, builds the
edge list and lists the next-hop neighbours. Every table is written to the
data directory together with manifest.yaml.

With --db the run is also saved to a SQLite database, and with --neo4j-uri
(or neo4j.uri in the config file) the edges are merged into Neo4j.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	addFetchFlags(runCmd)
	runCmd.Flags().Int("max-authors", clean.DefaultMaxAuthors, "drop records with this many authors or more")
	runCmd.Flags().Bool("strict", false, "abort on the first malformed record")
	runCmd.Flags().String("mode", string(types.GraphAuthors), "edge construction: authors or papers")
	runCmd.Flags().String("db", "", "SQLite database accumulating runs")
	runCmd.Flags().String("neo4j-uri", "", "Neo4j URI to merge edges into")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	raw, err := readNames(args[0])
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Source:   fetch.NewArxivSource(cfg.Fetch),
		Log:      log,
		Progress: cmd.ErrOrStderr(),
	}

	if cfg.Store.DBPath != "" {
		s, err := store.Open(cfg.Store.DBPath)
		if err != nil {
			return err
		}
		defer s.Close()
		deps.Store = s
	}

	g, err := graphdb.NewClient(ctx, cfg.Neo4j, log)
	if err != nil {
		return err
	}
	defer g.Close(ctx)
	deps.Graph = g

	res, err := pipeline.Run(ctx, deps, cfg, raw)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if err := report.Stages(stdout, res.Manifest.Stages); err != nil {
		return err
	}
	fmt.Fprintln(stdout)
	if err := report.Failures(stdout, res.Manifest.FailedQueries); err != nil {
		return err
	}
	c := res.Manifest.Counts
	fmt.Fprintf(stdout, "run %s: %d edges, %d neighbours; manifest at %s\n",
		res.Manifest.RunID, c.Edges, c.Neighbours, res.ManifestPath)
	return nil
}
