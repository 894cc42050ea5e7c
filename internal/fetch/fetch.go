// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves publication records for a list of author queries.
// Queries run one at a time with a fixed delay before each. A query that
// fails for any reason contributes no records; the failure is kept in the
// output and the next query proceeds.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/coauthor-graph/internal/logger"
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/progress"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// DefaultQueryDelay is the pause before every query.
const DefaultQueryDelay = 3 * time.Second

// RawResult is one search hit as exposed by a Source, before author names
// are normalized.
type RawResult struct {
	Published       time.Time
	Title           string
	Authors         []string
	Summary         string
	DOI             string
	PrimaryCategory string
	Link            string
	PDFURL          string
}

// Source answers a single query with every matching result.
type Source interface {
	Name() string
	Search(ctx context.Context, query string) ([]RawResult, error)
}

// FetchError wraps the reason one query produced no records.
type FetchError struct {
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("query %q: %v", e.Query, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// QueryResult is the outcome of one query: either Publications or Err.
type QueryResult struct {
	Query        string
	Publications []types.Publication
	Err          error
}

// OK reports whether the query succeeded.
func (r QueryResult) OK() bool { return r.Err == nil }

// QueryFailure records a failed query for diagnostics.
type QueryFailure struct {
	Query  string `json:"query" yaml:"query"`
	Reason string `json:"reason" yaml:"reason"`
}

// FetchOutput aggregates the successful payloads in query order and lists
// the failed queries separately.
type FetchOutput struct {
	Publications []types.Publication
	Succeeded    int
	Failed       []QueryFailure
}

// Project converts a raw result into a Publication, normalizing each author.
// An author name that cannot be normalized fails the whole result.
func Project(raw RawResult, n *names.Normalizer) (types.Publication, error) {
	if n == nil {
		n = names.NewNormalizer(nil)
	}
	authors := make([]string, 0, len(raw.Authors))
	for _, a := range raw.Authors {
		id, err := n.Normalize(a)
		if err != nil {
			return types.Publication{}, fmt.Errorf("result %q: %w", raw.Title, err)
		}
		authors = append(authors, id)
	}
	return types.Publication{
		Published:       raw.Published,
		Title:           raw.Title,
		Authors:         authors,
		Summary:         raw.Summary,
		DOI:             raw.DOI,
		PrimaryCategory: raw.PrimaryCategory,
		Link:            raw.Link,
		PDFURL:          raw.PDFURL,
	}, nil
}

// Fetcher runs queries against a Source sequentially.
type Fetcher struct {
	Source     Source
	Normalizer *names.Normalizer
	Delay      time.Duration
	Log        *logger.Logger
	Progress   progress.Reporter

	// sleep waits between queries; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher returns a Fetcher with the default delay and no-op collaborators.
func NewFetcher(src Source, n *names.Normalizer, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{
		Source:     src,
		Normalizer: n,
		Delay:      DefaultQueryDelay,
		Log:        log,
	}
}

// Fetch runs every query in order. Per-query failures are recorded and
// skipped. The only error returned is context cancellation, together with
// whatever was fetched before it.
func (f *Fetcher) Fetch(ctx context.Context, queries []string) (FetchOutput, error) {
	log := f.Log
	if log == nil {
		log = logger.Nop()
	}
	prog := progress.OrNop(f.Progress)
	sleep := f.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var out FetchOutput
	for _, q := range queries {
		if err := sleep(ctx, f.Delay); err != nil {
			return out, err
		}

		res := f.FetchQuery(ctx, q)
		prog.Step(q)
		if !res.OK() {
			log.Warn("query failed, skipping", "query", q, "source", f.Source.Name(), "error", res.Err)
			out.Failed = append(out.Failed, QueryFailure{Query: q, Reason: res.Err.Error()})
			continue
		}
		log.Debug("query fetched", "query", q, "records", len(res.Publications))
		out.Succeeded++
		out.Publications = append(out.Publications, res.Publications...)
	}
	log.Info("fetch finished",
		"queries", len(queries), "failed", len(out.Failed), "records", len(out.Publications))
	return out, nil
}

// FetchQuery runs a single query and projects its results. Any failure
// yields a QueryResult carrying a *FetchError and no publications.
func (f *Fetcher) FetchQuery(ctx context.Context, query string) QueryResult {
	res := QueryResult{Query: query}
	raws, err := f.Source.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		res.Err = &FetchError{Query: query, Err: err}
		return res
	}

	pubs := make([]types.Publication, 0, len(raws))
	for _, raw := range raws {
		p, err := Project(raw, f.Normalizer)
		if err != nil {
			res.Err = &FetchError{Query: query, Err: err}
			return res
		}
		pubs = append(pubs, p)
	}
	res.Publications = pubs
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
