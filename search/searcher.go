package search

import (
	"log/slog"
	"sort"

	"github.com/poiesic/clinquery/core"
	"github.com/poiesic/clinquery/index"
)

// Default field weights: a prompt match counts double a completion match.
const (
	DefaultPromptWeight     = 2
	DefaultCompletionWeight = 1
)

// Searcher ranks documents against free-text queries using the inverted
// index. It reads only immutable structures, so a single Searcher is safe
// for concurrent use.
type Searcher struct {
	docs             []*core.Document
	idx              *index.Index
	promptWeight     int
	completionWeight int
	logger           *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithWeights sets the prompt and completion match weights.
// Non-positive values fall back to the defaults.
func WithWeights(prompt, completion int) Option {
	return func(s *Searcher) error {
		if prompt < 1 {
			prompt = DefaultPromptWeight
		}
		if completion < 1 {
			completion = DefaultCompletionWeight
		}
		s.promptWeight = prompt
		s.completionWeight = completion
		return nil
	}
}

// NewSearcher creates a searcher over a loaded document set and its index.
// The documents must be the loader's output: ids dense and positional.
func NewSearcher(docs []*core.Document, idx *index.Index, opts ...Option) (*Searcher, error) {
	if docs == nil {
		return nil, ErrDocumentsRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	s := &Searcher{
		docs:             docs,
		idx:              idx,
		promptWeight:     DefaultPromptWeight,
		completionWeight: DefaultCompletionWeight,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search ranks documents sharing at least one token with the query.
// An empty or fully-filtered query yields an empty result list, never an
// error. Results are sorted by score descending, then document id ascending.
func (s *Searcher) Search(query string) []*core.ScoredResult {
	return s.SearchWithMonitor(query, nil)
}

// SearchWithMonitor is Search with stage callbacks for observability.
func (s *Searcher) SearchWithMonitor(query string, monitor SearchMonitor) []*core.ScoredResult {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	// The query must be tokenized with the same rule the index was built with.
	queryTokens := core.TokenSet(query, s.idx.MinTokenLength())
	sortedQuery := make([]string, 0, len(queryTokens))
	for token := range queryTokens {
		sortedQuery = append(sortedQuery, token)
	}
	sort.Strings(sortedQuery)
	monitor.AfterTokenize(sortedQuery)

	if len(queryTokens) == 0 {
		monitor.Finish(nil)
		return []*core.ScoredResult{}
	}

	// Candidates: union of posting lists (OR semantics).
	candidateSet := make(map[int]struct{})
	for token := range queryTokens {
		for _, id := range s.idx.Postings(token) {
			candidateSet[id] = struct{}{}
		}
	}
	candidates := make([]int, 0, len(candidateSet))
	for id := range candidateSet {
		candidates = append(candidates, id)
	}
	sort.Ints(candidates)
	monitor.AfterCandidates(candidates)

	results := make([]*core.ScoredResult, 0, len(candidates))
	for _, id := range candidates {
		if id < 0 || id >= len(s.docs) {
			continue
		}
		result := s.score(s.docs[id], queryTokens)
		if result.Score <= 0 {
			// Candidates come from postings, so this should not happen;
			// excluded defensively to keep the score > 0 contract.
			continue
		}
		monitor.CandidateScored(result)
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.Id < results[j].Document.Id
	})

	s.logger.Debug("search complete", "query", query, "candidates", len(candidates), "results", len(results))
	monitor.Finish(results)
	return results
}

// score recomputes exact token intersections for one candidate.
func (s *Searcher) score(doc *core.Document, queryTokens map[string]struct{}) *core.ScoredResult {
	promptTokens := core.TokenSet(doc.Prompt, s.idx.MinTokenLength())
	completionTokens := core.TokenSet(doc.Completion, s.idx.MinTokenLength())

	matched := make(map[string]struct{})
	promptMatches := 0
	completionMatches := 0
	for token := range queryTokens {
		inPrompt := false
		if _, ok := promptTokens[token]; ok {
			promptMatches++
			matched[token] = struct{}{}
			inPrompt = true
		}
		if _, ok := completionTokens[token]; ok {
			completionMatches++
			if !inPrompt {
				matched[token] = struct{}{}
			}
		}
	}

	matchedTokens := make([]string, 0, len(matched))
	for token := range matched {
		matchedTokens = append(matchedTokens, token)
	}
	sort.Strings(matchedTokens)

	return &core.ScoredResult{
		Document:          doc,
		Score:             s.promptWeight*promptMatches + s.completionWeight*completionMatches,
		PromptMatches:     promptMatches,
		CompletionMatches: completionMatches,
		MatchedTokens:     matchedTokens,
	}
}
