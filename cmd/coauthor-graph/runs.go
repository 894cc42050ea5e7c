// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/report"
	"github.com/pdiddy/coauthor-graph/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs saved in the SQLite database",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the counts and failed queries of one run",
	Long: `Show prints the summary and failed queries of a run stored in the
SQLite database. Without a run ID it reads manifest.yaml from the data
directory instead, which also carries the cleaning stage counts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunsShow,
}

func init() {
	runsCmd.PersistentFlags().String("db", "", "SQLite database accumulating runs")
	runsShowCmd.Flags().Bool("edges", false, "also list the stored edges")

	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(cmd.Context())
	if err != nil {
		return err
	}
	return runsTable(runs...).Render(cmd.OutOrStdout())
}

func runsTable(runs ...store.Run) *report.Table {
	t := &report.Table{Header: []string{"Run", "Started", "Mode", "Queries", "Failed", "Cleaned", "Edges"}}
	for _, r := range runs {
		t.Append(r.ID, r.StartedAt.Local().Format(time.DateTime), string(r.Mode),
			strconv.Itoa(r.Queries), strconv.Itoa(r.Failed), strconv.Itoa(r.Cleaned), strconv.Itoa(r.Edges))
	}
	return t
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		return showManifest(out, filepath.Join(cfg.Store.DataDir, pipeline.ManifestFile))
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	r, err := s.Run(ctx, args[0])
	if err != nil {
		return err
	}
	failures, err := s.Failures(ctx, r.ID)
	if err != nil {
		return err
	}

	if err := runsTable(r).Render(out); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := report.Failures(out, failures); err != nil {
		return err
	}

	if listEdges, _ := cmd.Flags().GetBool("edges"); !listEdges {
		return nil
	}
	pairs, err := s.EdgePairs(ctx, r.ID)
	if err != nil {
		return err
	}
	t := report.Table{Header: []string{"Source", "Target"}}
	for _, p := range pairs {
		t.Append(p[0], p[1])
	}
	fmt.Fprintln(out)
	return t.Render(out)
}

func showManifest(w io.Writer, path string) error {
	m, err := pipeline.ReadManifest(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "run %s (%s, %s mode) finished %s\n\n",
		m.RunID, m.Source, m.Mode, m.FinishedAt.Local().Format(time.DateTime))
	if err := report.Stages(w, m.Stages); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := report.Failures(w, m.FailedQueries); err != nil {
		return err
	}
	c := m.Counts
	fmt.Fprintf(w, "%d edges, %d neighbours\n", c.Edges, c.Neighbours)
	return nil
}
