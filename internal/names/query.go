// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package names

import (
	"fmt"
	"strings"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

// authorField is the arXiv query prefix restricting a term to author names.
const authorField = "au:"

// Query builds the arXiv author query for a normalized name from its
// surname, e.g. "J. Smith" → "au:smith".
func Query(normalized string) string {
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return authorField
	}
	return authorField + strings.ToLower(fields[len(fields)-1])
}

// PrepareSeeds normalizes every raw seed name and derives its query. The
// first unusable name aborts preparation.
func PrepareSeeds(raw []string, n *Normalizer) ([]types.SeedName, error) {
	if n == nil {
		n = defaultNormalizer
	}
	seeds := make([]types.SeedName, 0, len(raw))
	for i, name := range raw {
		normalized, err := n.Normalize(name)
		if err != nil {
			return nil, fmt.Errorf("seed row %d: %w", i+1, err)
		}
		seeds = append(seeds, types.SeedName{
			Name:           name,
			NameNormalized: normalized,
			QueryString:    Query(normalized),
		})
	}
	return seeds, nil
}

// ValidNames returns the set of normalized seed identities.
func ValidNames(seeds []types.SeedName) Set {
	s := make(Set, len(seeds))
	for _, seed := range seeds {
		s[seed.NameNormalized] = struct{}{}
	}
	return s
}

// Queries returns the seed queries in input order. Seeds sharing a surname
// produce repeated queries; the cleaner removes the resulting duplicates.
func Queries(seeds []types.SeedName) []string {
	q := make([]string, len(seeds))
	for i, seed := range seeds {
		q[i] = seed.QueryString
	}
	return q
}
