// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/store"
	"github.com/pdiddy/coauthor-graph/internal/table"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// outputPath returns the --out flag, or file inside the data directory.
func outputPath(cmd *cobra.Command, file string) string {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return out
	}
	return filepath.Join(cfg.Store.DataDir, file)
}

// inputPath returns the named flag, or file inside the data directory.
func inputPath(cmd *cobra.Command, flag, file string) string {
	if in, _ := cmd.Flags().GetString(flag); in != "" {
		return in
	}
	return filepath.Join(cfg.Store.DataDir, file)
}

func readNames(path string) ([]string, error) {
	var raw []string
	err := table.ReadFile(path, func(r io.Reader) error {
		var err error
		raw, err = table.ReadSeedNames(r)
		return err
	})
	return raw, err
}

// readSeeds loads a seed file and derives identities and queries.
func readSeeds(path string) ([]types.SeedName, error) {
	raw, err := readNames(path)
	if err != nil {
		return nil, err
	}
	n, err := pipeline.NewNormalizer(cfg.Names)
	if err != nil {
		return nil, err
	}
	return names.PrepareSeeds(raw, n)
}

func readRows(path string) ([]types.PublicationRow, error) {
	var rows []types.PublicationRow
	err := table.ReadFile(path, func(r io.Reader) error {
		var err error
		rows, err = table.ReadPublications(r)
		return err
	})
	return rows, err
}

// readCleaned loads a cleaned table. Index and AuthorCount are rebuilt from
// row order and the parsed author lists.
func readCleaned(path string) ([]types.Publication, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	pubs := make([]types.Publication, 0, len(rows))
	for i, r := range rows {
		p, err := clean.ParseRow(i, r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		p.Index = i
		p.AuthorCount = len(p.Authors)
		pubs = append(pubs, p)
	}
	return pubs, nil
}

// openStore opens the configured run database.
func openStore() (*store.Store, error) {
	if cfg.Store.DBPath == "" {
		return nil, fmt.Errorf("no database: set --db or store.db_path")
	}
	return store.Open(cfg.Store.DBPath)
}

// loadCleaned returns the cleaned publications of the run named by --run,
// or else the cleaned table named by --in.
func loadCleaned(cmd *cobra.Command) ([]types.Publication, error) {
	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		return readCleaned(inputPath(cmd, "in", pipeline.CleanedFile))
	}
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Publications(cmd.Context(), runID)
}

// addRunFlags lets a command read its records from a stored run.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("run", "", "read cleaned records of this stored run instead of --in")
	cmd.Flags().String("db", "", "SQLite database accumulating runs")
}
