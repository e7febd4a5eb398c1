package graph

import (
	"fmt"
	"testing"

	"github.com/poiesic/clinquery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphDocs() []*core.Document {
	return []*core.Document{
		{
			Id:          0,
			Prompt:      "Does PD-L1 expression predict response in NSCLC",
			Completion:  "Higher PD-L1 expression correlates with better response",
			CancerTypes: []string{"NSCLC"},
			Genes:       []string{"PD-L1"},
		},
		{
			Id:          1,
			Prompt:      "Atezolizumab efficacy in PD-L1 positive NSCLC",
			Completion:  "Improved overall survival versus chemotherapy",
			CancerTypes: []string{"NSCLC"},
			Genes:       []string{"PD-L1"},
		},
		{
			Id:         2,
			Prompt:     "Adverse events of chemotherapy",
			Completion: "Nausea and fatigue are common",
		},
	}
}

func TestBuild_CooccurrenceWeights(t *testing.T) {
	g := Build(graphDocs())

	// pdl1 and nsclc co-occur in the keyword sets of docs 0 and 1.
	assert.Equal(t, 2, g.EdgeWeight("pdl1", "nsclc"))
	assert.Equal(t, 2, g.EdgeWeight("nsclc", "pdl1")) // undirected

	// atezolizumab appears only in doc 1.
	assert.Equal(t, 1, g.EdgeWeight("atezolizumab", "nsclc"))

	// No edge between keywords that never share a document.
	assert.Equal(t, 0, g.EdgeWeight("atezolizumab", "nausea"))

	// No self-loops.
	assert.Equal(t, 0, g.EdgeWeight("nsclc", "nsclc"))
}

func TestBuild_EntityRelations(t *testing.T) {
	g := Build(graphDocs())

	doc0 := NodeID(KindDocument, graphDocs()[0].Prompt+"\x00"+graphDocs()[0].Completion)
	_, ok := g.Node(doc0)
	require.True(t, ok)

	var about, involves, mentions int
	for _, rel := range g.Relations() {
		if rel.From != doc0 {
			continue
		}
		to, ok := g.Node(rel.To)
		require.True(t, ok)
		switch rel.Kind {
		case RelationAbout:
			about++
			assert.Equal(t, KindCancerType, to.Kind)
			assert.Equal(t, "NSCLC", to.Label)
		case RelationInvolves:
			involves++
			assert.Equal(t, KindGene, to.Kind)
			assert.Equal(t, "PD-L1", to.Label)
		case RelationMentions:
			mentions++
			assert.Equal(t, KindTerm, to.Kind)
			assert.True(t, core.IsAlphabetic(to.Label), "mentions must be alphabetic, got %q", to.Label)
		}
	}
	assert.Equal(t, 1, about)
	assert.Equal(t, 1, involves)
	// "pdl1" is alphanumeric, not alphabetic, so it is not a mention.
	assert.Positive(t, mentions)
	for _, rel := range g.Relations() {
		to, _ := g.Node(rel.To)
		assert.NotEqual(t, "pdl1", to.Label, "non-alphabetic terms must not be mentioned")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	docs := graphDocs()
	first := Build(docs)
	for i := 0; i < 5; i++ {
		again := Build(docs)
		assert.Equal(t, first.DatasetHash(), again.DatasetHash())
		assert.Equal(t, first.Nodes(), again.Nodes())
		assert.Equal(t, first.CoocEdges(), again.CoocEdges())
		assert.Equal(t, first.Relations(), again.Relations())
	}
}

func TestBuild_StableKeysAcrossRebuilds(t *testing.T) {
	docs := graphDocs()
	g1 := Build(docs)

	// Rebuilding from structurally equal documents (fresh allocations)
	// produces identical node keys: keys derive from content, not identity.
	copies := make([]*core.Document, len(docs))
	for i, d := range docs {
		c := *d
		copies[i] = &c
	}
	g2 := Build(copies)
	assert.Equal(t, g1.Nodes(), g2.Nodes())
}

func TestBuild_KeywordCap(t *testing.T) {
	prompt := ""
	for i := 0; i < 50; i++ {
		prompt += fmt.Sprintf("keyword%02d ", i)
	}
	docs := []*core.Document{{Id: 0, Prompt: prompt, Completion: ""}}

	g := Build(docs, WithKeywordCap(10))
	// 10 keywords survive the cap: exactly C(10,2) = 45 pairs.
	assert.Len(t, g.CoocEdges(), 45)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := Build(graphDocs())
	restored := FromSnapshot(g.Snapshot())

	assert.Equal(t, g.DatasetHash(), restored.DatasetHash())
	assert.Equal(t, g.TermMinLength(), restored.TermMinLength())
	assert.Equal(t, g.Nodes(), restored.Nodes())
	assert.Equal(t, g.CoocEdges(), restored.CoocEdges())
	assert.Equal(t, g.Relations(), restored.Relations())

	// The restored graph answers queries identically.
	assert.Equal(t, g.RelatedConcepts("pdl1", 5), restored.RelatedConcepts("pdl1", 5))
}
