// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/table"
)

var seedsCmd = &cobra.Command{
	Use:   "seeds <names.csv>",
	Short: "Normalize seed author names and derive their queries",
	Long: `Seeds reads a CSV with a "name" column, normalizes every name to its
"X. Surname" identity and writes name, name_normalized and query_string
columns. A name that cannot be normalized aborts the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeeds,
}

func init() {
	seedsCmd.Flags().String("out", "", "output file (default <data-dir>/"+pipeline.SeedsFile+")")
	seedsCmd.Flags().String("overrides", "", "YAML file with extra name overrides")

	rootCmd.AddCommand(seedsCmd)
}

func runSeeds(cmd *cobra.Command, args []string) error {
	seeds, err := readSeeds(args[0])
	if err != nil {
		return err
	}

	out := outputPath(cmd, pipeline.SeedsFile)
	if err := table.WriteFile(out, func(w io.Writer) error { return table.WriteSeeds(w, seeds) }); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d seeds written to %s\n", len(seeds), out)
	return nil
}
