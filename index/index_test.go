package index

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/clinquery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []*core.Document {
	return []*core.Document{
		{
			Id:         0,
			Prompt:     "What is the dose of atezolizumab for NSCLC",
			Completion: "1200mg every three weeks",
		},
		{
			Id:         1,
			Prompt:     "How does atezolizumab work",
			Completion: "It blocks PD-L1 so T cells stay active",
		},
		{
			Id:         2,
			Prompt:     "Dose adjustments for renal impairment",
			Completion: "No dose adjustment is required",
		},
	}
}

func TestBuild_PostingsExactness(t *testing.T) {
	docs := testDocs()
	idx, err := Build(docs)
	require.NoError(t, err)

	// Every token of every document appears in postings exactly once per doc.
	for _, doc := range docs {
		promptTokens := core.TokenSet(doc.Prompt, idx.MinTokenLength())
		completionTokens := core.TokenSet(doc.Completion, idx.MinTokenLength())
		all := make(map[string]struct{})
		for tok := range promptTokens {
			all[tok] = struct{}{}
		}
		for tok := range completionTokens {
			all[tok] = struct{}{}
		}
		for tok := range all {
			ids := idx.Postings(tok)
			count := 0
			for _, id := range ids {
				if id == doc.Id {
					count++
				}
			}
			assert.Equalf(t, 1, count, "token %q should list doc %d exactly once", tok, doc.Id)
		}
	}
}

func TestBuild_DedupAcrossFields(t *testing.T) {
	// "dose" occurs in both fields of doc 2; its posting list must not repeat the id.
	idx, err := Build(testDocs())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, idx.Postings("dose"))
}

func TestBuild_AscendingDeterministicPostings(t *testing.T) {
	docs := testDocs()
	first, err := Build(docs)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Build(docs)
		require.NoError(t, err)
		for _, tok := range first.Tokens() {
			assert.Equal(t, first.Postings(tok), again.Postings(tok))
		}
		assert.Equal(t, first.Tokens(), again.Tokens())
	}
}

func TestIndex_Contains(t *testing.T) {
	idx, err := Build(testDocs())
	require.NoError(t, err)

	assert.True(t, idx.Contains("atezolizumab"))
	assert.True(t, idx.Contains("pdl1"))
	assert.False(t, idx.Contains("nivolumab"))
	assert.False(t, idx.Contains("is")) // below minimum token length
}

func TestIndex_PostingsReturnsCopy(t *testing.T) {
	idx, err := Build(testDocs())
	require.NoError(t, err)

	ids := idx.Postings("atezolizumab")
	require.NotEmpty(t, ids)
	ids[0] = 999
	assert.Equal(t, []int{0, 1}, idx.Postings("atezolizumab"))
}

func TestBuild_EmptyDocuments(t *testing.T) {
	idx, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, idx.Tokens())
	assert.Nil(t, idx.Postings("anything"))
	assert.Equal(t, 0, idx.DocCount())
}

func TestBuild_SmallPool(t *testing.T) {
	idx, err := Build(testDocs(), WithPoolSize(1))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, idx.Postings("atezolizumab"))
}

func TestTokenizeDocs_SubmitFailureWaitsForInFlightTasks(t *testing.T) {
	errPoolFull := errors.New("pool is full")

	// The first two tasks run slowly in the background; the third submit
	// fails. The call must not return until both in-flight tasks are done.
	var completed atomic.Int32
	calls := 0
	submit := func(task func()) error {
		calls++
		if calls > 2 {
			return errPoolFull
		}
		go func() {
			time.Sleep(20 * time.Millisecond)
			completed.Add(1)
			task()
		}()
		return nil
	}

	_, err := tokenizeDocs(testDocs(), core.DefaultMinTokenLength, submit)
	require.ErrorIs(t, err, errPoolFull)
	assert.Equal(t, int32(2), completed.Load())
}
