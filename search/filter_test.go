package search

import (
	"testing"

	"github.com/poiesic/clinquery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedResults(t *testing.T) []*core.ScoredResult {
	t.Helper()
	docs, idx := fixture(t)
	s, err := NewSearcher(docs, idx)
	require.NoError(t, err)
	results := s.Search("atezolizumab dose")
	require.NotEmpty(t, results)
	return results
}

func TestFilter_IdentityWhenUnconstrained(t *testing.T) {
	results := rankedResults(t)
	filtered := Filter(results, 0, nil, nil)
	assert.Equal(t, results, filtered)
}

func TestFilter_MinScore(t *testing.T) {
	results := rankedResults(t)
	filtered := Filter(results, 4, nil, nil)
	for _, r := range filtered {
		assert.GreaterOrEqual(t, r.Score, 4)
	}
	assert.Less(t, len(filtered), len(results))
}

func TestFilter_KeywordsCaseInsensitive(t *testing.T) {
	results := rankedResults(t)

	filtered := Filter(results, 0, []string{"DOSE"}, nil)
	require.NotEmpty(t, filtered)
	for _, r := range filtered {
		assert.Contains(t, r.MatchedTokens, "dose")
	}

	assert.Empty(t, Filter(results, 0, []string{"pembrolizumab"}, nil))
}

func TestFilter_Facets(t *testing.T) {
	results := rankedResults(t)

	t.Run("cancer type excludes untagged documents", func(t *testing.T) {
		filtered := Filter(results, 0, nil, FacetFilters{FacetCancerType: {"NSCLC"}})
		require.NotEmpty(t, filtered)
		for _, r := range filtered {
			assert.True(t, r.Document.HasCancerType("NSCLC"))
		}
		// Doc 2 carries no cancer types, so it can never pass.
		for _, r := range filtered {
			assert.NotEqual(t, 2, r.Document.Id)
		}
	})

	t.Run("or within a facet", func(t *testing.T) {
		filtered := Filter(results, 0, nil, FacetFilters{FacetCancerType: {"Bladder", "Melanoma"}})
		require.Len(t, filtered, 1)
		assert.Equal(t, 1, filtered[0].Document.Id)
	})

	t.Run("and across facets", func(t *testing.T) {
		filtered := Filter(results, 0, nil, FacetFilters{
			FacetCancerType: {"NSCLC"},
			FacetGenes:      {"PD-L1"},
		})
		require.Len(t, filtered, 1)
		assert.Equal(t, 1, filtered[0].Document.Id)
	})

	t.Run("facet values are not case-folded", func(t *testing.T) {
		assert.Empty(t, Filter(results, 0, nil, FacetFilters{FacetCancerType: {"nsclc"}}))
	})

	t.Run("empty facet value set is ignored", func(t *testing.T) {
		filtered := Filter(results, 0, nil, FacetFilters{FacetCancerType: {}})
		assert.Equal(t, results, filtered)
	})

	t.Run("unknown facet never matches", func(t *testing.T) {
		assert.Empty(t, Filter(results, 0, nil, FacetFilters{"stage": {"IV"}}))
	})
}

func TestFilter_OrderPreservedAndInputUntouched(t *testing.T) {
	results := rankedResults(t)
	before := make([]*core.ScoredResult, len(results))
	copy(before, results)

	filtered := Filter(results, 1, nil, nil)
	assert.Equal(t, before, results)
	for i := 1; i < len(filtered); i++ {
		prev, curr := filtered[i-1], filtered[i]
		if prev.Score == curr.Score {
			assert.Less(t, prev.Document.Id, curr.Document.Id)
		} else {
			assert.Greater(t, prev.Score, curr.Score)
		}
	}
}
