// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/report"
	"github.com/pdiddy/coauthor-graph/internal/table"
)

var neighboursCmd = &cobra.Command{
	Use:   "neighbours <names.csv>",
	Short: "List co-authors outside the seed set",
	Long: `Neighbours lists every author of the cleaned records who is not one of
the seeds. The output has a single "name" column and can be used as the
seed file of the next crawl.`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbours,
}

func init() {
	neighboursCmd.Flags().String("in", "", "cleaned publications (default <data-dir>/"+pipeline.CleanedFile+")")
	neighboursCmd.Flags().String("out", "", "output file (default <data-dir>/"+pipeline.NeighboursFile+")")
	neighboursCmd.Flags().String("overrides", "", "YAML file with extra name overrides")

	addRunFlags(neighboursCmd)

	rootCmd.AddCommand(neighboursCmd)
}

func runNeighbours(cmd *cobra.Command, args []string) error {
	seeds, err := readSeeds(args[0])
	if err != nil {
		return err
	}
	pubs, err := loadCleaned(cmd)
	if err != nil {
		return err
	}

	next := graph.Neighbours(pubs, names.ValidNames(seeds))
	path := outputPath(cmd, pipeline.NeighboursFile)
	if err := table.WriteFile(path, func(w io.Writer) error { return table.WriteNames(w, next) }); err != nil {
		return err
	}
	return report.Neighbours(cmd.OutOrStdout(), next)
}
