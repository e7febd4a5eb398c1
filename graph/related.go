package graph

import (
	"sort"

	"github.com/poiesic/clinquery/core"
)

// RelatedConcepts returns up to topN concepts related to the query, ranked
// by the summed weight of co-occurrence edges incident to the query's
// tokens. Weights accumulate when several query tokens reach the same
// neighbor. Query tokens absent from the graph contribute nothing; a query
// with no graph presence yields an empty slice, never an error.
func (g *Graph) RelatedConcepts(query string, topN int) []core.RelatedConcept {
	if topN <= 0 {
		return []core.RelatedConcept{}
	}

	aggregate := make(map[core.ID]int)
	for token := range core.TokenSet(query, g.termMinLen) {
		id := NodeID(KindTerm, token)
		for neighbor, weight := range g.cooc[id] {
			aggregate[neighbor] += weight
		}
	}

	concepts := make([]core.RelatedConcept, 0, len(aggregate))
	for id, weight := range aggregate {
		node, ok := g.nodes[id]
		if !ok || node.Kind == KindDocument {
			// Documents are never concepts; the co-occurrence graph holds
			// only term nodes, but filter by kind anyway.
			continue
		}
		concepts = append(concepts, core.RelatedConcept{Concept: node.Label, Weight: weight})
	}

	sort.Slice(concepts, func(i, j int) bool {
		if concepts[i].Weight != concepts[j].Weight {
			return concepts[i].Weight > concepts[j].Weight
		}
		return concepts[i].Concept < concepts[j].Concept
	})
	if len(concepts) > topN {
		concepts = concepts[:topN]
	}
	return concepts
}
