package search

import (
	"slices"
	"strings"

	"github.com/poiesic/clinquery/core"
)

// Facet names accepted by Filter.
const (
	FacetCancerType = "cancer_type"
	FacetGenes      = "genes"
)

// FacetFilters maps a facet name to the set of accepted values.
// Within one facet any value may match (OR); across facets all non-empty
// filters must match (AND).
type FacetFilters map[string][]string

// Filter applies score, keyword and facet constraints to ranked results.
// It is pure and order-preserving: the input slice is never mutated and
// surviving results keep their relative order. Filter(results, 0, nil, nil)
// returns an equal result list.
func Filter(results []*core.ScoredResult, minScore int, keywords []string, facets FacetFilters) []*core.ScoredResult {
	out := make([]*core.ScoredResult, 0, len(results))
	for _, result := range results {
		if result.Score < minScore {
			continue
		}
		if !matchesKeywords(result, keywords) {
			continue
		}
		if !matchesFacets(result.Document, facets) {
			continue
		}
		out = append(out, result)
	}
	return out
}

// matchesKeywords reports whether at least one keyword appears among the
// result's matched tokens, compared case-insensitively. An empty keyword
// list matches everything.
func matchesKeywords(result *core.ScoredResult, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	for _, keyword := range keywords {
		if slices.Contains(result.MatchedTokens, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// matchesFacets requires every non-empty facet filter to intersect the
// document's corresponding metadata set. A document with an empty facet set
// never satisfies a non-empty filter for that facet; neither does an unknown
// facet name.
func matchesFacets(doc *core.Document, facets FacetFilters) bool {
	for name, accepted := range facets {
		if len(accepted) == 0 {
			continue
		}
		values := facetValues(doc, name)
		found := false
		for _, v := range accepted {
			if slices.Contains(values, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func facetValues(doc *core.Document, name string) []string {
	switch name {
	case FacetCancerType:
		return doc.CancerTypes
	case FacetGenes:
		return doc.Genes
	default:
		return nil
	}
}
