// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/report"
	"github.com/pdiddy/coauthor-graph/internal/table"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <names.csv>",
	Short: "Filter, deduplicate and index fetched records",
	Long: `Clean keeps records with at least one seed author, drops repeated PDF
URLs (first occurrence wins) and records with too many authors, then numbers
the survivors from zero. Records whose author list cannot be parsed are
dropped and reported, or abort the command with --strict.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().String("in", "", "raw publications (default <data-dir>/"+pipeline.PublicationsFile+")")
	cleanCmd.Flags().String("out", "", "output file (default <data-dir>/"+pipeline.CleanedFile+")")
	cleanCmd.Flags().Int("max-authors", clean.DefaultMaxAuthors, "drop records with this many authors or more")
	cleanCmd.Flags().Bool("strict", false, "abort on the first malformed record")
	cleanCmd.Flags().String("overrides", "", "YAML file with extra name overrides")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	seeds, err := readSeeds(args[0])
	if err != nil {
		return err
	}
	rows, err := readRows(inputPath(cmd, "in", pipeline.PublicationsFile))
	if err != nil {
		return err
	}

	out, err := clean.New(cfg.Clean, log).Clean(rows, names.ValidNames(seeds))
	if err != nil {
		return err
	}

	path := outputPath(cmd, pipeline.CleanedFile)
	if err := table.WriteFile(path, func(w io.Writer) error { return table.WriteCleaned(w, out.Publications) }); err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	if err := report.Stages(stdout, out.Stages); err != nil {
		return err
	}
	if err := report.ParseFailures(stdout, out.ParseFailures); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\n%d records written to %s\n", len(out.Publications), path)
	return nil
}
