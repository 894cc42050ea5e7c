// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/fetch"
	"github.com/pdiddy/coauthor-graph/internal/pipeline"
	"github.com/pdiddy/coauthor-graph/internal/store"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func TestFlagKeysAreDefined(t *testing.T) {
	defined := map[string]bool{}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.LocalFlags().VisitAll(func(f *pflag.Flag) { defined[f.Name] = true })
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)

	for name := range flagKeys {
		assert.True(t, defined[name], "flag --%s is mapped but no command defines it", name)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"seeds", "fetch", "clean", "graph", "neighbours", "run", "runs", "version"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}

	c, _, err := rootCmd.Find([]string{"runs", "show"})
	require.NoError(t, err)
	assert.Equal(t, "show", c.Name())
}

// withDB points the global configuration at a fresh database holding one
// stored run, and restores the configuration afterwards.
func withDB(t *testing.T) store.RunData {
	t.Helper()
	saved := cfg
	t.Cleanup(func() { cfg = saved })

	cfg.Store.DBPath = filepath.Join(t.TempDir(), "runs.db")
	s, err := store.Open(cfg.Store.DBPath)
	require.NoError(t, err)
	defer s.Close()

	data := store.RunData{
		Run: store.Run{ID: "r1", StartedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Mode: types.GraphAuthors, Failed: 2},
		Publications: []types.Publication{
			{Index: 0, Title: "A", Authors: []string{"J. Smith", "A. Doe"}, PDFURL: "p1", AuthorCount: 2},
		},
		Edges: []types.Edge{{Source: "J. Smith", Target: "A. Doe", Title: "A", PDFURL: "p1"}},
		Failures: []fetch.QueryFailure{
			{Query: "au:doe", Reason: "HTTP 503"},
			{Query: "au:doe", Reason: "HTTP 503"},
		},
	}
	require.NoError(t, s.SaveRun(context.Background(), data))
	return data
}

func TestLoadCleanedFromRun(t *testing.T) {
	data := withDB(t)

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("in", "", "")
	addRunFlags(cmd)
	require.NoError(t, cmd.Flags().Set("run", "r1"))
	cmd.SetContext(context.Background())

	pubs, err := loadCleaned(cmd)
	require.NoError(t, err)
	assert.Equal(t, data.Publications, pubs)

	require.NoError(t, cmd.Flags().Set("run", "missing"))
	_, err = loadCleaned(cmd)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestRunsShowStoredRun(t *testing.T) {
	withDB(t)

	var out bytes.Buffer
	runsShowCmd.SetOut(&out)
	runsShowCmd.SetContext(context.Background())
	require.NoError(t, runsShowCmd.Flags().Set("edges", "true"))
	t.Cleanup(func() {
		runsShowCmd.SetOut(nil)
		_ = runsShowCmd.Flags().Set("edges", "false")
	})

	require.NoError(t, runRunsShow(runsShowCmd, []string{"r1"}))
	assert.Contains(t, out.String(), "r1")
	assert.Contains(t, out.String(), "2 queries failed")
	assert.Contains(t, out.String(), "A. Doe")
}

func TestRunsShowManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), pipeline.ManifestFile)
	require.NoError(t, pipeline.WriteManifest(path, &pipeline.Manifest{
		RunID:         "m1",
		Source:        "arxiv",
		Mode:          types.GraphAuthors,
		Stages:        []clean.StageCount{{Stage: clean.StageInitial, Count: 4}},
		FailedQueries: []fetch.QueryFailure{{Query: "au:doe", Reason: "timeout"}},
		Counts:        pipeline.ManifestCounts{Edges: 3, Neighbours: 1},
	}))

	var out bytes.Buffer
	require.NoError(t, showManifest(&out, path))
	assert.Contains(t, out.String(), "run m1 (arxiv, authors mode)")
	assert.Contains(t, out.String(), clean.StageInitial)
	assert.Contains(t, out.String(), "1 queries failed")
	assert.Contains(t, out.String(), "3 edges, 1 neighbours")

	assert.Error(t, showManifest(&out, filepath.Join(t.TempDir(), "none.yaml")))
}

func TestReadCleaned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"published,title,authors,summary,doi,primary_category,link,pdf_url,no_authors\n"+
			"2024-01-02T00:00:00Z,A,\"['J. Smith', 'A. Doe']\",,,cs.SI,,p1,2\n"+
			",B,\"[\"\"J. Smith\"\"]\",,,,,p2,1\n"), 0o644))

	pubs, err := readCleaned(path)
	require.NoError(t, err)
	require.Len(t, pubs, 2)
	assert.Equal(t, []string{"J. Smith", "A. Doe"}, pubs[0].Authors)
	assert.Equal(t, 2, pubs[0].AuthorCount)
	assert.Equal(t, 1, pubs[1].Index)
	assert.True(t, pubs[1].Published.IsZero())
}

func TestReadCleanedMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte("title,authors,pdf_url\nA,not-a-list,p1\n"), 0o644))

	_, err := readCleaned(path)
	assert.Error(t, err)
}
