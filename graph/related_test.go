package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelatedConcepts(t *testing.T) {
	g := Build(graphDocs())

	t.Run("neighbors ranked by aggregate weight", func(t *testing.T) {
		related := g.RelatedConcepts("pdl1", 10)
		require.NotEmpty(t, related)

		// nsclc co-occurs with pdl1 in two documents; everything else once.
		assert.Equal(t, "nsclc", related[0].Concept)
		assert.Equal(t, 2, related[0].Weight)
		for i := 1; i < len(related); i++ {
			assert.LessOrEqual(t, related[i].Weight, related[i-1].Weight)
		}
	})

	t.Run("weights accumulate across query tokens", func(t *testing.T) {
		single := g.RelatedConcepts("pdl1", 50)
		combined := g.RelatedConcepts("pdl1 atezolizumab", 50)

		var nsclcSingle, nsclcCombined int
		for _, r := range single {
			if r.Concept == "nsclc" {
				nsclcSingle = r.Weight
			}
		}
		for _, r := range combined {
			if r.Concept == "nsclc" {
				nsclcCombined = r.Weight
			}
		}
		// atezolizumab adds one more nsclc co-occurrence on top of pdl1's two.
		assert.Equal(t, 2, nsclcSingle)
		assert.Equal(t, 3, nsclcCombined)
	})

	t.Run("topN truncates", func(t *testing.T) {
		all := g.RelatedConcepts("pdl1", 100)
		require.Greater(t, len(all), 2)
		assert.Len(t, g.RelatedConcepts("pdl1", 2), 2)
		assert.Equal(t, all[:2], g.RelatedConcepts("pdl1", 2))
	})

	t.Run("absent tokens contribute nothing", func(t *testing.T) {
		assert.Empty(t, g.RelatedConcepts("pembrolizumab", 5))
		assert.Empty(t, g.RelatedConcepts("", 5))
	})

	t.Run("non-positive topN yields empty", func(t *testing.T) {
		assert.Empty(t, g.RelatedConcepts("pdl1", 0))
		assert.Empty(t, g.RelatedConcepts("pdl1", -1))
	})

	t.Run("never returns a document node", func(t *testing.T) {
		for _, r := range g.RelatedConcepts("pdl1 nsclc chemotherapy", 100) {
			id := NodeID(KindTerm, r.Concept)
			node, ok := g.Node(id)
			require.True(t, ok)
			assert.NotEqual(t, KindDocument, node.Kind)
		}
	})

	t.Run("deterministic tie-break by concept", func(t *testing.T) {
		first := g.RelatedConcepts("nsclc", 50)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, g.RelatedConcepts("nsclc", 50))
		}
		for i := 1; i < len(first); i++ {
			if first[i-1].Weight == first[i].Weight {
				assert.Less(t, first[i-1].Concept, first[i].Concept)
			}
		}
	})
}
