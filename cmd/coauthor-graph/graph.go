// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/progress"
	"github.com/pdiddy/coauthor-graph/internal/table"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build an edge list from cleaned records",
	Long: `Graph reads a cleaned table and writes an edge list.

In authors mode (the default) every pair of co-authors of a record becomes
one edge carrying the record's metadata. In papers mode every ordered pair
of records sharing an author becomes an edge between their titles; this
mode is quadratic in the number of records.`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("in", "", "cleaned publications (default <data-dir>/"+pipeline.CleanedFile+")")
	graphCmd.Flags().String("out", "", "output file (default <data-dir>/edges.csv or paper_edges.csv)")
	graphCmd.Flags().String("mode", string(types.GraphAuthors), "edge construction: authors or papers")

	addRunFlags(graphCmd)

	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	pubs, err := loadCleaned(cmd)
	if err != nil {
		return err
	}
	prog := progress.NewCounter(cmd.ErrOrStderr(), "graph", len(pubs))

	var (
		path string
		n    int
	)
	switch cfg.Graph.Mode {
	case types.GraphPapers:
		edges := graph.PaperEdges(pubs, prog)
		path, n = outputPath(cmd, pipeline.PaperEdgesFile), len(edges)
		err = table.WriteFile(path, func(w io.Writer) error { return table.WritePaperEdges(w, edges) })
	default:
		edges := graph.CoAuthorEdges(pubs, prog)
		path, n = outputPath(cmd, pipeline.EdgesFile), len(edges)
		err = table.WriteFile(path, func(w io.Writer) error { return table.WriteEdges(w, edges) })
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d %s edges from %d records written to %s\n", n, cfg.Graph.Mode, len(pubs), path)
	return nil
}
