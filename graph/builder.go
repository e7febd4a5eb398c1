package graph

import (
	"log/slog"
	"sort"

	"github.com/poiesic/clinquery/core"
)

const (
	// DefaultTermMinLength keeps significant terms of four or more runes.
	DefaultTermMinLength = 4

	// DefaultKeywordCap bounds a document's keyword set. Pairwise
	// co-occurrence is quadratic in keyword count, so dense records are
	// truncated (in sorted keyword order) rather than allowed to blow up
	// the edge count.
	DefaultKeywordCap = 64
)

// Option configures the graph build.
type Option func(*builder)

// WithTermMinLength sets the significant-term length threshold in runes.
// Default is DefaultTermMinLength.
func WithTermMinLength(n int) Option {
	return func(b *builder) {
		if n < 1 {
			n = DefaultTermMinLength
		}
		b.termMinLen = n
	}
}

// WithKeywordCap sets the per-document keyword cap for co-occurrence pairs.
// Default is DefaultKeywordCap.
func WithKeywordCap(n int) Option {
	return func(b *builder) {
		if n < 2 {
			n = DefaultKeywordCap
		}
		b.keywordCap = n
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
	termMinLen int
	keywordCap int
	logger     *slog.Logger
}

// Build constructs the knowledge graph in one deterministic pass over the
// documents. A fixed document set always produces the same nodes, edges and
// weights.
func Build(docs []*core.Document, opts ...Option) *Graph {
	b := &builder{
		termMinLen: DefaultTermMinLength,
		keywordCap: DefaultKeywordCap,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	g := &Graph{
		datasetHash: core.DatasetHash(docs),
		termMinLen:  b.termMinLen,
		nodes:       make(map[core.ID]Node),
		cooc:        make(map[core.ID]map[core.ID]int),
	}

	for _, doc := range docs {
		b.addCooccurrences(g, doc)
		b.addEntityRelations(g, doc)
	}

	b.logger.Debug("graph built",
		"documents", len(docs),
		"nodes", g.NodeCount(),
		"cooc_edges", len(g.CoocEdges()),
		"relations", len(g.relations))
	return g
}

// keywords extracts a document's keyword set: significant prompt terms plus
// normalized cancer types and genes, sorted and capped.
func (b *builder) keywords(doc *core.Document) []string {
	set := core.TokenSet(doc.Prompt, b.termMinLen)
	for _, ct := range doc.CancerTypes {
		if normalized := core.NormalizeTerm(ct); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	for _, gene := range doc.Genes {
		if normalized := core.NormalizeTerm(gene); normalized != "" {
			set[normalized] = struct{}{}
		}
	}

	keywords := make([]string, 0, len(set))
	for kw := range set {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	if len(keywords) > b.keywordCap {
		keywords = keywords[:b.keywordCap]
	}
	return keywords
}

// addCooccurrences increments the shared edge weight for every unordered
// pair of distinct keywords in the document's keyword set.
func (b *builder) addCooccurrences(g *Graph, doc *core.Document) {
	keywords := b.keywords(doc)
	ids := make([]core.ID, len(keywords))
	for i, kw := range keywords {
		ids[i] = g.ensureNode(KindTerm, kw, kw)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			g.addCoocWeight(ids[i], ids[j], 1)
		}
	}
}

// addEntityRelations adds the document node and its labeled edges to cancer
// types (about), genes (involves) and significant alphabetic terms from
// prompt and completion (mentions).
func (b *builder) addEntityRelations(g *Graph, doc *core.Document) {
	docID := g.ensureNode(KindDocument, doc.Prompt+"\x00"+doc.Completion, doc.Prompt)

	for _, ct := range doc.CancerTypes {
		to := g.ensureNode(KindCancerType, ct, ct)
		g.relations = append(g.relations, Relation{From: docID, To: to, Kind: RelationAbout})
	}
	for _, gene := range doc.Genes {
		to := g.ensureNode(KindGene, gene, gene)
		g.relations = append(g.relations, Relation{From: docID, To: to, Kind: RelationInvolves})
	}

	terms := core.TokenSet(doc.Prompt+" "+doc.Completion, b.termMinLen)
	sorted := make([]string, 0, len(terms))
	for term := range terms {
		if core.IsAlphabetic(term) {
			sorted = append(sorted, term)
		}
	}
	sort.Strings(sorted)
	for _, term := range sorted {
		to := g.ensureNode(KindTerm, term, term)
		g.relations = append(g.relations, Relation{From: docID, To: to, Kind: RelationMentions})
	}
}

// ensureNode interns a node by its content-derived key and returns the key.
func (g *Graph) ensureNode(kind NodeKind, key, label string) core.ID {
	id := NodeID(kind, key)
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = Node{Id: id, Kind: kind, Label: label}
	}
	return id
}
