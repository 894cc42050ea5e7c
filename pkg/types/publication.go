// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the tables passed between coauthor-graph pipeline stages.
// Each stage takes one table by value and returns the next; nothing is shared
// between stages except the read-only set of valid author names.
package types

import "time"

// SeedName is one row of the seed author list with its derived identity and
// the search query built from it.
type SeedName struct {
	// Name is the raw name as it appears in the input file.
	Name string `json:"name" yaml:"name"`

	// NameNormalized is the canonical "X. Surname" identity.
	NameNormalized string `json:"name_normalized" yaml:"name_normalized"`

	// QueryString is the arXiv search query for this author (e.g. "au:smith").
	QueryString string `json:"query_string" yaml:"query_string"`
}

// Publication is a single fetched record. Authors are normalized identities.
// Index and AuthorCount are zero until the record passes through cleaning.
type Publication struct {
	// Index is the dense zero-based position in the cleaned table.
	Index int `json:"index" yaml:"index"`

	// Published is the first-version submission date.
	Published time.Time `json:"published" yaml:"published"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists normalized author identities in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Summary is the paper abstract.
	Summary string `json:"summary" yaml:"summary"`

	// DOI is the publisher DOI when arXiv knows one.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PrimaryCategory is the arXiv primary category (e.g. "cs.SI").
	PrimaryCategory string `json:"primary_category" yaml:"primary_category"`

	// Link is the abstract page URL.
	Link string `json:"link" yaml:"link"`

	// PDFURL is the PDF download URL. Cleaning deduplicates on this field.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// AuthorCount is len(Authors), filled in by cleaning.
	AuthorCount int `json:"no_authors" yaml:"no_authors"`
}

// PublicationRow is the textual form of a Publication as stored in a
// delimited file. Authors holds the serialized author list and Published the
// formatted date; cleaning parses both back.
type PublicationRow struct {
	Published       string
	Title           string
	Authors         string
	Summary         string
	DOI             string
	PrimaryCategory string
	Link            string
	PDFURL          string
}

// Edge connects two co-authors of one publication. The remaining fields are
// copied verbatim from that publication, so a paper with k authors yields
// k*(k-1)/2 edges with identical metadata.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`

	Published       time.Time `json:"published" yaml:"published"`
	Title           string    `json:"title" yaml:"title"`
	Summary         string    `json:"summary" yaml:"summary"`
	DOI             string    `json:"doi,omitempty" yaml:"doi,omitempty"`
	PrimaryCategory string    `json:"primary_category" yaml:"primary_category"`
	Link            string    `json:"link" yaml:"link"`
	PDFURL          string    `json:"pdf_url" yaml:"pdf_url"`
	AuthorCount     int       `json:"no_authors" yaml:"no_authors"`
}

// PaperEdge connects two publications that share at least one author,
// identified by title. Edges are directed: both orderings of a pair appear.
type PaperEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}
