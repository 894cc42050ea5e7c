// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/internal/names"
	"github.com/pdiddy/coauthor-graph/internal/progress"
	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func pub(title string, authors ...string) types.Publication {
	return types.Publication{Title: title, Authors: authors, PDFURL: "pdf/" + title, AuthorCount: len(authors)}
}

func TestCoAuthorEdges(t *testing.T) {
	pubs := []types.Publication{
		pub("R1", "J. Smith", "A. Doe", "B. Roe"),
		pub("R2", "J. Smith", "C. Poe"),
	}
	c := progress.NewCounter(nil, "graph", len(pubs))

	edges := CoAuthorEdges(pubs, c)
	require.Len(t, edges, 4)
	assert.Equal(t, 2, c.Done())

	got := make([][2]string, len(edges))
	for i, e := range edges {
		got[i] = [2]string{e.Source, e.Target}
	}
	assert.Equal(t, [][2]string{
		{"J. Smith", "A. Doe"},
		{"J. Smith", "B. Roe"},
		{"A. Doe", "B. Roe"},
		{"J. Smith", "C. Poe"},
	}, got)

	assert.Equal(t, "R1", edges[0].Title)
	assert.Equal(t, "pdf/R1", edges[0].PDFURL)
	assert.Equal(t, 3, edges[0].AuthorCount)
	assert.Equal(t, "R2", edges[3].Title)
}

func TestCoAuthorEdgesCount(t *testing.T) {
	for k := 0; k <= 6; k++ {
		authors := make([]string, k)
		for i := range authors {
			authors[i] = string(rune('A'+i)) + ". Author" + string(rune('a'+i))
		}
		edges := CoAuthorEdges([]types.Publication{pub("p", authors...)}, nil)
		assert.Len(t, edges, k*(k-1)/2, "k=%d", k)
	}
}

func TestCoAuthorEdgesTransliterates(t *testing.T) {
	edges := CoAuthorEdges([]types.Publication{pub("p", "J. Müller", "L. Wałęsa")}, nil)
	require.Len(t, edges, 1)
	assert.Equal(t, "J. Muller", edges[0].Source)
	assert.Equal(t, "L. Walesa", edges[0].Target)
}

func TestCoAuthorEdgesSkipsSelfPairs(t *testing.T) {
	edges := CoAuthorEdges([]types.Publication{pub("p", "J. Smith", "J. Smith", "A. Doe")}, nil)
	assert.Len(t, edges, 2)
	for _, e := range edges {
		assert.NotEqual(t, e.Source, e.Target)
	}
}

func TestPaperEdgesDisjoint(t *testing.T) {
	pubs := []types.Publication{
		pub("R1", "J. Smith", "B. Roe"),
		pub("R2", "A. Doe"),
		pub("R3", "C. Poe", "D. Lowe"),
	}
	assert.Empty(t, PaperEdges(pubs, nil))
}

func TestPaperEdgesShared(t *testing.T) {
	pubs := []types.Publication{
		pub("R1", "J. Smith", "B. Roe"),
		pub("R2", "A. Doe", "J. Smith"),
		pub("R3", "C. Poe"),
	}
	c := progress.NewCounter(nil, "graph", len(pubs))

	edges := PaperEdges(pubs, c)
	assert.Equal(t, []types.PaperEdge{
		{Source: "R1", Target: "R2"},
		{Source: "R2", Target: "R1"},
	}, edges)
	assert.Equal(t, 3, c.Done())
}

func TestNeighbours(t *testing.T) {
	pubs := []types.Publication{
		pub("R1", "J. Smith", "B. Roe", "A. Doe"),
		pub("R2", "J. Smith", "B. Roe"),
		pub("R3", "C. Poe"),
	}
	valid := names.NewSet("J. Smith", "C. Poe")

	assert.Equal(t, []string{"A. Doe", "B. Roe"}, Neighbours(pubs, valid))
	assert.Empty(t, Neighbours(pubs, names.NewSet("J. Smith", "C. Poe", "A. Doe", "B. Roe")))
	assert.Empty(t, Neighbours(nil, valid))
}
