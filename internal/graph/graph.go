// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph derives edge lists from the cleaned publication table and
// finds the next ring of authors to crawl.
package graph

import (
	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/progress"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// CoAuthorEdges emits one edge for every unordered pair of authors of each
// publication, in author order, carrying the publication's metadata. Names
// are transliterated to ASCII. A pair of identical names is skipped, so a
// record whose author list repeats an identity yields fewer than k*(k-1)/2
// edges.
func CoAuthorEdges(pubs []types.Publication, prog progress.Reporter) []types.Edge {
	prog = progress.OrNop(prog)

	var edges []types.Edge
	for _, p := range pubs {
		authors := make([]string, len(p.Authors))
		for i, a := range p.Authors {
			authors[i] = names.Transliterate(a)
		}
		for i := 0; i < len(authors); i++ {
			for j := i + 1; j < len(authors); j++ {
				if authors[i] == authors[j] {
					continue
				}
				edges = append(edges, edgeFrom(p, authors[i], authors[j]))
			}
		}
		prog.Step(p.Title)
	}
	return edges
}

func edgeFrom(p types.Publication, source, target string) types.Edge {
	return types.Edge{
		Source:          source,
		Target:          target,
		Published:       p.Published,
		Title:           p.Title,
		Summary:         p.Summary,
		DOI:             p.DOI,
		PrimaryCategory: p.PrimaryCategory,
		Link:            p.Link,
		PDFURL:          p.PDFURL,
		AuthorCount:     p.AuthorCount,
	}
}

// PaperEdges connects publications that share at least one author. Every
// ordered pair (i, j) with i != j is tested, so the cost is quadratic in
// len(pubs) and each connected pair appears in both directions.
func PaperEdges(pubs []types.Publication, prog progress.Reporter) []types.PaperEdge {
	prog = progress.OrNop(prog)

	sets := make([]names.Set, len(pubs))
	for i, p := range pubs {
		sets[i] = names.NewSet(p.Authors...)
	}

	var edges []types.PaperEdge
	for i := range pubs {
		for j := range pubs {
			if i != j && intersects(sets[i], sets[j]) {
				edges = append(edges, types.PaperEdge{Source: pubs[i].Title, Target: pubs[j].Title})
			}
		}
		prog.Step(pubs[i].Title)
	}
	return edges
}

func intersects(a, b names.Set) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for id := range a {
		if b.Has(id) {
			return true
		}
	}
	return false
}

// Neighbours returns the sorted distinct authors of pubs that are not in
// valid. These are the candidates for the next crawl iteration.
func Neighbours(pubs []types.Publication, valid names.Set) []string {
	seen := names.NewSet()
	for _, p := range pubs {
		for _, a := range p.Authors {
			if !valid.Has(a) {
				seen[a] = struct{}{}
			}
		}
	}
	return seen.Sorted()
}
