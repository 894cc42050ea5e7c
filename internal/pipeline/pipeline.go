// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs every stage in order (seed preparation, fetch,
// clean, graph and neighbour discovery) and writes each table into the data
// directory together with a run manifest.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/coauthor-graph/internal/clean"
	"github.com/pdiddy/coauthor-graph/internal/fetch"
	"github.com/pdiddy/coauthor-graph/internal/graph"
	"github.com/pdiddy/coauthor-graph/internal/graphdb"
	"github.com/pdiddy/coauthor-graph/internal/logger"
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/progress"
	"github.com/pdiddy/coauthor-graph/internal/store"
	"github.com/pdiddy/coauthor-graph/internal/table"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// Output file names inside the data directory.
const (
	SeedsFile        = "seeds.csv"
	PublicationsFile = "publications.csv"
	CleanedFile      = "cleaned.csv"
	EdgesFile        = "edges.csv"
	PaperEdgesFile   = "paper_edges.csv"
	NeighboursFile   = "neighbours.csv"
)

// Deps are the collaborators of a run. Only Source is required.
type Deps struct {
	Source fetch.Source
	Store  *store.Store
	Graph  *graphdb.Client
	Log    *logger.Logger

	// Progress receives per-query and per-record progress lines.
	Progress io.Writer

	// Now defaults to time.Now.
	Now func() time.Time
}

// Result carries the manifest and the tables produced by a run.
type Result struct {
	Manifest     *Manifest
	Seeds        []types.SeedName
	Fetched      fetch.FetchOutput
	Cleaned      clean.CleanOutput
	Edges        []types.Edge
	PaperEdges   []types.PaperEdge
	Neighbours   []string
	ManifestPath string
}

// Run executes the pipeline for rawNames. The first error aborts the run;
// per-query fetch failures and malformed records are not errors.
func Run(ctx context.Context, deps Deps, cfg types.PipelineConfig, rawNames []string) (*Result, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("pipeline: no source")
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	runID := uuid.NewString()
	log = log.With("run_id", runID)
	dataDir := cfg.Store.DataDir
	mode := cfg.Graph.Mode
	if mode == "" {
		mode = types.GraphAuthors
	}

	m := &Manifest{
		RunID:     runID,
		StartedAt: now().UTC(),
		Source:    deps.Source.Name(),
		Mode:      mode,
		Config: ManifestConfig{
			UseAPI:     cfg.Fetch.UseAPI,
			QueryDelay: cfg.Fetch.QueryDelay,
			PageSize:   cfg.Fetch.PageSize,
			MaxResults: cfg.Fetch.MaxResults,
			MaxAuthors: cfg.Clean.MaxAuthors,
			Strict:     cfg.Clean.StrictParse,
		},
		Outputs: map[string]string{},
	}
	res := &Result{Manifest: m}

	write := func(name, file string, fn func(io.Writer) error) error {
		path := filepath.Join(dataDir, file)
		if err := table.WriteFile(path, fn); err != nil {
			return err
		}
		m.Outputs[name] = path
		return nil
	}

	// Seeds.
	normalizer, err := NewNormalizer(cfg.Names)
	if err != nil {
		return nil, err
	}
	seeds, err := names.PrepareSeeds(rawNames, normalizer)
	if err != nil {
		return nil, fmt.Errorf("preparing seeds: %w", err)
	}
	res.Seeds = seeds
	m.Counts.Seeds = len(seeds)
	if err := write("seeds", SeedsFile, func(w io.Writer) error { return table.WriteSeeds(w, seeds) }); err != nil {
		return nil, err
	}
	log.Info("seeds prepared", "seeds", len(seeds))

	// Fetch.
	queries := names.Queries(seeds)
	m.Counts.Queries = len(queries)
	fetcher := fetch.NewFetcher(deps.Source, normalizer, log)
	fetcher.Delay = cfg.Fetch.QueryDelay
	fetcher.Progress = progress.NewCounter(deps.Progress, "fetch", len(queries))
	fetched, err := fetcher.Fetch(ctx, queries)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}
	res.Fetched = fetched
	m.Counts.Succeeded = fetched.Succeeded
	m.Counts.Fetched = len(fetched.Publications)
	m.FailedQueries = fetched.Failed

	rows := table.ToRows(fetched.Publications)
	if err := write("publications", PublicationsFile, func(w io.Writer) error { return table.WritePublications(w, rows) }); err != nil {
		return nil, err
	}

	// Clean.
	valid := names.ValidNames(seeds)
	cleaned, err := clean.New(cfg.Clean, log).Clean(rows, valid)
	if err != nil {
		return nil, err
	}
	res.Cleaned = cleaned
	m.Stages = cleaned.Stages
	m.Counts.Cleaned = len(cleaned.Publications)
	for _, pe := range cleaned.ParseFailures {
		m.ParseFailures = append(m.ParseFailures, pe.Error())
	}
	if err := write("cleaned", CleanedFile, func(w io.Writer) error { return table.WriteCleaned(w, cleaned.Publications) }); err != nil {
		return nil, err
	}

	// Graph.
	graphProgress := progress.NewCounter(deps.Progress, "graph", len(cleaned.Publications))
	switch mode {
	case types.GraphPapers:
		res.PaperEdges = graph.PaperEdges(cleaned.Publications, graphProgress)
		m.Counts.Edges = len(res.PaperEdges)
		err = write("paper_edges", PaperEdgesFile, func(w io.Writer) error { return table.WritePaperEdges(w, res.PaperEdges) })
	default:
		res.Edges = graph.CoAuthorEdges(cleaned.Publications, graphProgress)
		m.Counts.Edges = len(res.Edges)
		err = write("edges", EdgesFile, func(w io.Writer) error { return table.WriteEdges(w, res.Edges) })
	}
	if err != nil {
		return nil, err
	}
	log.Info("graph built", "mode", string(mode), "edges", m.Counts.Edges)

	// Neighbours.
	res.Neighbours = graph.Neighbours(cleaned.Publications, valid)
	m.Counts.Neighbours = len(res.Neighbours)
	if err := write("neighbours", NeighboursFile, func(w io.Writer) error { return table.WriteNames(w, res.Neighbours) }); err != nil {
		return nil, err
	}

	// Sinks.
	if err := deps.Graph.SyncCoAuthors(ctx, runID, res.Edges); err != nil {
		return nil, fmt.Errorf("syncing graph database: %w", err)
	}
	if err := deps.Graph.SyncPaperEdges(ctx, runID, res.PaperEdges); err != nil {
		return nil, fmt.Errorf("syncing graph database: %w", err)
	}

	m.FinishedAt = now().UTC()

	if deps.Store != nil {
		if err := deps.Store.SaveRun(ctx, runData(m, res)); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
		log.Info("run stored", "publications", len(cleaned.Publications))
	}

	res.ManifestPath = filepath.Join(dataDir, ManifestFile)
	if err := WriteManifest(res.ManifestPath, m); err != nil {
		return nil, err
	}
	log.Info("run finished",
		"queries", m.Counts.Queries, "failed", len(m.FailedQueries),
		"cleaned", m.Counts.Cleaned, "edges", m.Counts.Edges, "neighbours", m.Counts.Neighbours)
	return res, nil
}

// NewNormalizer builds a Normalizer with the overrides file from cfg, if any.
func NewNormalizer(cfg types.NamesConfig) (*names.Normalizer, error) {
	if cfg.OverridesFile == "" {
		return names.NewNormalizer(nil), nil
	}
	extra, err := names.LoadOverrides(cfg.OverridesFile)
	if err != nil {
		return nil, err
	}
	return names.NewNormalizer(extra), nil
}

func runData(m *Manifest, res *Result) store.RunData {
	return store.RunData{
		Run: store.Run{
			ID:         m.RunID,
			StartedAt:  m.StartedAt,
			FinishedAt: m.FinishedAt,
			Mode:       m.Mode,
			Seeds:      m.Counts.Seeds,
			Queries:    m.Counts.Queries,
			Failed:     len(m.FailedQueries),
			Fetched:    m.Counts.Fetched,
			Cleaned:    m.Counts.Cleaned,
			Edges:      m.Counts.Edges,
		},
		Publications: res.Cleaned.Publications,
		Edges:        res.Edges,
		PaperEdges:   res.PaperEdges,
		Failures:     m.FailedQueries,
	}
}
