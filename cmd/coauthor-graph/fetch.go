// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/fetch"
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/progress"
	"github.com/pdiddy/coauthor-graph/internal/report"
	"github.com/pdiddy/coauthor-graph/internal/table"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <names.csv>",
	Short: "Fetch arXiv records for every seed author",
	Long: `Fetch runs one arXiv author query per seed, waiting a fixed delay before
each query, and writes every returned record with normalized authors. A
query that fails contributes no records; failed queries are listed at the
end and do not fail the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("out", "", "output file (default <data-dir>/"+pipeline.PublicationsFile+")")
	addFetchFlags(fetchCmd)

	rootCmd.AddCommand(fetchCmd)
}

// addFetchFlags registers the flags shared by fetch and run.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("use-api", true, "query the Atom API instead of the web search pages")
	cmd.Flags().Duration("delay", fetch.DefaultQueryDelay, "delay before every query")
	cmd.Flags().Duration("page-delay", fetch.DefaultQueryDelay, "delay between result pages")
	cmd.Flags().Int("page-size", 100, "results per page")
	cmd.Flags().Int("max-results", 0, "maximum results per query (0 = all)")
	cmd.Flags().String("overrides", "", "YAML file with extra name overrides")
}

func runFetch(cmd *cobra.Command, args []string) error {
	seeds, err := readSeeds(args[0])
	if err != nil {
		return err
	}
	queries := names.Queries(seeds)

	normalizer, err := pipeline.NewNormalizer(cfg.Names)
	if err != nil {
		return err
	}
	fetcher := fetch.NewFetcher(fetch.NewArxivSource(cfg.Fetch), normalizer, log)
	fetcher.Delay = cfg.Fetch.QueryDelay
	fetcher.Progress = progress.NewCounter(cmd.ErrOrStderr(), "fetch", len(queries))

	out, err := fetcher.Fetch(cmd.Context(), queries)
	if err != nil {
		return err
	}

	path := outputPath(cmd, pipeline.PublicationsFile)
	rows := table.ToRows(out.Publications)
	if err := table.WriteFile(path, func(w io.Writer) error { return table.WritePublications(w, rows) }); err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "%d records from %d/%d queries written to %s\n",
		len(out.Publications), out.Succeeded, len(queries), path)
	return report.Failures(stdout, out.Failed)
}
