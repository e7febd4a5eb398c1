package search

import (
	"strings"

	"github.com/poiesic/clinquery/core"
)

// DefaultClosestCutoff is the minimum similarity for a closest-match answer.
const DefaultClosestCutoff = 0.4

// ClosestMatch is the legacy single-result backend: it returns the document
// whose prompt is most similar to the query by normalized edit distance,
// provided the similarity reaches the cutoff. Ties go to the lower document
// id. It is a separate strategy from token-overlap ranking and must not be
// blended with it.
func ClosestMatch(docs []*core.Document, query string, cutoff float64) (*core.Document, bool) {
	if cutoff <= 0 {
		cutoff = DefaultClosestCutoff
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, false
	}

	var best *core.Document
	bestSim := cutoff
	for _, doc := range docs {
		sim := similarity(query, strings.ToLower(doc.Prompt))
		if sim > bestSim || (sim == bestSim && best == nil && sim >= cutoff) {
			best = doc
			bestSim = sim
		}
	}
	return best, best != nil
}

// similarity is 1 - levenshtein/maxLen over runes, in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with a rolling two-row table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
