package graph

import (
	"fmt"
	"sort"

	"github.com/poiesic/clinquery/core"
)

// NodeKind tags the variant of a graph node.
type NodeKind uint8

const (
	KindDocument NodeKind = iota + 1
	KindCancerType
	KindGene
	KindTerm
)

func (k NodeKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindCancerType:
		return "cancer_type"
	case KindGene:
		return "gene"
	case KindTerm:
		return "term"
	default:
		return "unknown"
	}
}

// Node is a graph node keyed by a stable content-derived ID, never by
// memory identity.
type Node struct {
	Id    core.ID
	Kind  NodeKind
	Label string
}

// NodeID derives the stable key for a node from its kind and content key.
func NodeID(kind NodeKind, key string) core.ID {
	return core.IDFromContent(fmt.Sprintf("(%s,%s)", kind, key))
}

// RelationKind labels an entity-relationship edge.
type RelationKind uint8

const (
	RelationAbout RelationKind = iota + 1 // document -> cancer type
	RelationInvolves                      // document -> gene
	RelationMentions                      // document -> significant term
)

func (k RelationKind) String() string {
	switch k {
	case RelationAbout:
		return "about"
	case RelationInvolves:
		return "involves"
	case RelationMentions:
		return "mentions"
	default:
		return "unknown"
	}
}

// Relation is a labeled edge in the entity-relationship graph.
type Relation struct {
	From core.ID // always a document node
	To   core.ID
	Kind RelationKind
}

// CoocEdge is one undirected weighted edge of the co-occurrence graph,
// reported with A.Id < B.Id.
type CoocEdge struct {
	A      core.ID
	B      core.ID
	Weight int
}

// Graph holds both the co-occurrence graph and the entity-relationship
// graph built from one document set. Immutable after Build/FromSnapshot;
// safe for concurrent readers.
type Graph struct {
	datasetHash core.ID
	termMinLen  int
	nodes       map[core.ID]Node
	cooc        map[core.ID]map[core.ID]int // symmetric adjacency, weight >= 1
	relations   []Relation
}

// DatasetHash returns the content hash of the document set the graph was
// built from. The persisted cache is keyed by it.
func (g *Graph) DatasetHash() core.ID {
	return g.datasetHash
}

// TermMinLength returns the significant-term length threshold the graph was
// built with. Related-concept queries tokenize with the same value.
func (g *Graph) TermMinLength() int {
	return g.termMinLen
}

// Node looks up a node by its content-derived key.
func (g *Graph) Node(id core.ID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Id < nodes[j].Id })
	return nodes
}

// NodeCount returns the number of nodes across both structures.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// CoocEdges returns the co-occurrence edges sorted by (A, B), each
// undirected edge reported once.
func (g *Graph) CoocEdges() []CoocEdge {
	var edges []CoocEdge
	for a, neighbors := range g.cooc {
		for b, weight := range neighbors {
			if a < b {
				edges = append(edges, CoocEdge{A: a, B: b, Weight: weight})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}

// EdgeWeight returns the co-occurrence weight between two keyword labels,
// or 0 when no edge exists. Labels are normalized the way the builder
// normalizes keywords.
func (g *Graph) EdgeWeight(a, b string) int {
	idA := NodeID(KindTerm, core.NormalizeTerm(a))
	idB := NodeID(KindTerm, core.NormalizeTerm(b))
	return g.cooc[idA][idB]
}

// Relations returns the entity-relationship edges in build order.
func (g *Graph) Relations() []Relation {
	out := make([]Relation, len(g.relations))
	copy(out, g.relations)
	return out
}

// Snapshot is the portable form of a Graph, used by the persisted cache.
// Round-tripping through a Snapshot reproduces an identical node set, edge
// set and weights.
type Snapshot struct {
	DatasetHash core.ID
	TermMinLen  int
	Nodes       []Node
	Edges       []CoocEdge
	Relations   []Relation
}

// Snapshot exports the graph deterministically.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		DatasetHash: g.datasetHash,
		TermMinLen:  g.termMinLen,
		Nodes:       g.Nodes(),
		Edges:       g.CoocEdges(),
		Relations:   g.Relations(),
	}
}

// FromSnapshot rebuilds a Graph from its portable form.
func FromSnapshot(s Snapshot) *Graph {
	g := &Graph{
		datasetHash: s.DatasetHash,
		termMinLen:  s.TermMinLen,
		nodes:       make(map[core.ID]Node, len(s.Nodes)),
		cooc:        make(map[core.ID]map[core.ID]int),
		relations:   make([]Relation, len(s.Relations)),
	}
	for _, n := range s.Nodes {
		g.nodes[n.Id] = n
	}
	for _, e := range s.Edges {
		g.addCoocWeight(e.A, e.B, e.Weight)
	}
	copy(g.relations, s.Relations)
	return g
}

func (g *Graph) addCoocWeight(a, b core.ID, weight int) {
	if g.cooc[a] == nil {
		g.cooc[a] = make(map[core.ID]int)
	}
	if g.cooc[b] == nil {
		g.cooc[b] = make(map[core.ID]int)
	}
	g.cooc[a][b] += weight
	g.cooc[b][a] += weight
}
