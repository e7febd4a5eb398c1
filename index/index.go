package index

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/clinquery/core"
)

// Option configures the index build.
type Option func(*builder)

// WithMinTokenLength sets the minimum token length in runes.
// Default is core.DefaultMinTokenLength. The searcher must tokenize queries
// with the same value; read it back via Index.MinTokenLength.
func WithMinTokenLength(n int) Option {
	return func(b *builder) {
		if n < 1 {
			n = core.DefaultMinTokenLength
		}
		b.minTokenLen = n
	}
}

// WithPoolSize sets the tokenizer worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *builder) {
		if size < 1 {
			size = 1
		}
		b.poolSize = size
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

type builder struct {
	minTokenLen int
	poolSize    int
	logger      *slog.Logger
}

// fieldTokens holds one document's token sets, computed off the merge path.
type fieldTokens struct {
	prompt     map[string]struct{}
	completion map[string]struct{}
}

// Index is an inverted index from token to ascending document ids.
// Read-only after Build returns; safe for concurrent use.
type Index struct {
	postings    map[string][]int
	minTokenLen int
	docCount    int
}

// Build constructs the index for the given documents. Each token's posting
// list contains a document id at most once, even when the token appears in
// both prompt and completion. Runs in time proportional to total token
// occurrences.
func Build(docs []*core.Document, opts ...Option) (*Index, error) {
	b := &builder{
		minTokenLen: core.DefaultMinTokenLength,
		poolSize:    max(runtime.NumCPU()/2, 1),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	pool, err := ants.NewPool(b.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	tokenized, err := tokenizeDocs(docs, b.minTokenLen, pool.Submit)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		postings:    make(map[string][]int),
		minTokenLen: b.minTokenLen,
		docCount:    len(docs),
	}
	for i, ft := range tokenized {
		id := docs[i].Id
		for token := range ft.prompt {
			idx.postings[token] = append(idx.postings[token], id)
		}
		for token := range ft.completion {
			if _, inPrompt := ft.prompt[token]; inPrompt {
				continue
			}
			idx.postings[token] = append(idx.postings[token], id)
		}
	}

	b.logger.Debug("index built", "documents", len(docs), "vocabulary", len(idx.postings))
	return idx, nil
}

// tokenizeDocs tokenizes in parallel via submit; the caller merges
// sequentially by id so posting lists come out ascending regardless of
// worker scheduling. When a submit fails it stops scheduling, waits for
// every task already in flight, and only then returns, so no goroutine
// outlives the call.
func tokenizeDocs(docs []*core.Document, minTokenLen int, submit func(func()) error) ([]fieldTokens, error) {
	tokenized := make([]fieldTokens, len(docs))
	var wg sync.WaitGroup
	var submitErr error
	for i, doc := range docs {
		i, doc := i, doc
		wg.Add(1)
		err := submit(func() {
			defer wg.Done()
			tokenized[i] = fieldTokens{
				prompt:     core.TokenSet(doc.Prompt, minTokenLen),
				completion: core.TokenSet(doc.Completion, minTokenLen),
			}
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()
	if submitErr != nil {
		return nil, submitErr
	}
	return tokenized, nil
}

// Postings returns the document ids containing the token, in ascending
// order. The returned slice is a copy; callers may not mutate the index.
func (idx *Index) Postings(token string) []int {
	ids, ok := idx.postings[token]
	if !ok {
		return nil
	}
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Contains reports whether any document contains the token.
func (idx *Index) Contains(token string) bool {
	_, ok := idx.postings[token]
	return ok
}

// Tokens returns the sorted vocabulary of the index.
func (idx *Index) Tokens() []string {
	tokens := make([]string, 0, len(idx.postings))
	for token := range idx.postings {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// MinTokenLength returns the minimum token length the index was built with.
// Query tokenization must use the same value.
func (idx *Index) MinTokenLength() int {
	return idx.minTokenLen
}

// DocCount returns the number of indexed documents.
func (idx *Index) DocCount() int {
	return idx.docCount
}
