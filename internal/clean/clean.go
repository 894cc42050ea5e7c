// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clean turns fetched publication rows into the cleaned dataset:
// parsed author lists, at least one seed author per record, one record per
// PDF URL and no large consortium papers.
package clean

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/coauthor-graph/internal/logger"
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// DefaultMaxAuthors is the author count at which a record is considered a
// consortium paper and dropped.
const DefaultMaxAuthors = 15

// Stage names reported in CleanOutput.Stages, in order.
const (
	StageInitial    = "Initial"
	StageValid      = "Valid authors"
	StageDuplicates = "After duplicates"
	StageCoops      = "After coops"
)

// dateLayouts are tried in order when parsing the published column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// StageCount is the number of records left after a cleaning step.
type StageCount struct {
	Stage string `json:"stage" yaml:"stage"`
	Count int    `json:"count" yaml:"count"`
}

// CleanOutput is the cleaned dataset plus the record count after each step.
type CleanOutput struct {
	Publications  []types.Publication
	Stages        []StageCount
	ParseFailures []*ParseError
}

// Count returns the count recorded for stage, or -1.
func (o CleanOutput) Count(stage string) int {
	for _, s := range o.Stages {
		if s.Stage == stage {
			return s.Count
		}
	}
	return -1
}

// HasValidAuthors reports whether any author is in valid.
func HasValidAuthors(authors []string, valid names.Set) bool {
	for _, a := range authors {
		if valid.Has(a) {
			return true
		}
	}
	return false
}

// ParseDate parses the published column. An empty value yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// ParseRow converts a textual row back into a Publication. row is the
// zero-based position used in error messages.
func ParseRow(row int, r types.PublicationRow) (types.Publication, error) {
	authors, err := ParseAuthors(r.Authors)
	if err != nil {
		return types.Publication{}, &ParseError{Row: row, Field: "authors", Value: r.Authors, Err: err}
	}
	published, err := ParseDate(r.Published)
	if err != nil {
		return types.Publication{}, &ParseError{Row: row, Field: "published", Value: r.Published, Err: err}
	}
	return types.Publication{
		Published:       published,
		Title:           r.Title,
		Authors:         authors,
		Summary:         r.Summary,
		DOI:             r.DOI,
		PrimaryCategory: r.PrimaryCategory,
		Link:            r.Link,
		PDFURL:          r.PDFURL,
	}, nil
}

// Cleaner applies the cleaning steps with a given configuration.
type Cleaner struct {
	Config types.CleanConfig
	Log    *logger.Logger
}

// New returns a Cleaner, defaulting MaxAuthors when unset.
func New(cfg types.CleanConfig, log *logger.Logger) *Cleaner {
	if cfg.MaxAuthors <= 0 {
		cfg.MaxAuthors = DefaultMaxAuthors
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cleaner{Config: cfg, Log: log}
}

// Clean runs the cleaning steps with cfg and no logging.
func Clean(rows []types.PublicationRow, valid names.Set, cfg types.CleanConfig) (CleanOutput, error) {
	return New(cfg, nil).Clean(rows, valid)
}

// Clean parses rows, keeps those with at least one valid author, drops
// repeated PDF URLs (first wins), drops records with MaxAuthors or more
// authors and numbers the survivors from zero.
//
// A row whose author list or date cannot be parsed is dropped and listed in
// ParseFailures. With Config.StrictParse the first such row aborts cleaning
// instead.
func (c *Cleaner) Clean(rows []types.PublicationRow, valid names.Set) (CleanOutput, error) {
	var out CleanOutput
	stage := func(name string, n int) {
		out.Stages = append(out.Stages, StageCount{Stage: name, Count: n})
		c.Log.Info("clean stage", "stage", name, "records", n)
	}

	stage(StageInitial, len(rows))

	pubs := make([]types.Publication, 0, len(rows))
	for i, r := range rows {
		p, err := ParseRow(i, r)
		if err != nil {
			var pe *ParseError
			errors.As(err, &pe)
			if c.Config.StrictParse {
				return CleanOutput{}, fmt.Errorf("cleaning: %w", err)
			}
			c.Log.Warn("dropping malformed record", "row", i, "field", pe.Field, "error", pe.Err)
			out.ParseFailures = append(out.ParseFailures, pe)
			continue
		}
		pubs = append(pubs, p)
	}

	kept := pubs[:0]
	for _, p := range pubs {
		if HasValidAuthors(p.Authors, valid) {
			kept = append(kept, p)
		}
	}
	pubs = kept
	stage(StageValid, len(pubs))

	seen := make(map[string]struct{}, len(pubs))
	kept = pubs[:0]
	for _, p := range pubs {
		if _, dup := seen[p.PDFURL]; dup {
			continue
		}
		seen[p.PDFURL] = struct{}{}
		kept = append(kept, p)
	}
	pubs = kept
	stage(StageDuplicates, len(pubs))

	kept = pubs[:0]
	for _, p := range pubs {
		p.AuthorCount = len(p.Authors)
		if p.AuthorCount < c.Config.MaxAuthors {
			kept = append(kept, p)
		}
	}
	pubs = kept
	stage(StageCoops, len(pubs))

	for i := range pubs {
		pubs[i].Index = i
	}
	out.Publications = pubs
	return out, nil
}
