package core

import (
	"encoding/binary"
	"slices"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for graph nodes and dataset versions.
// It is generated using content-based hashing so rebuilds are stable.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a single question/answer record from the clinical dataset.
// Documents are immutable after loading; Id is a dense index assigned in
// input order to accepted records only, so it is not stable across reloads
// if the input changes.
type Document struct {
	Id          int
	Prompt      string
	Completion  string
	CancerTypes []string          // trimmed, deduped, input order, no case folding
	Genes       []string          // same treatment as CancerTypes
	Metadata    map[string]string // opaque passthrough fields (source, trial_id, ...)
}

// HasCancerType reports whether the document is tagged with the given cancer type.
func (d *Document) HasCancerType(v string) bool {
	return slices.Contains(d.CancerTypes, v)
}

// HasGene reports whether the document is tagged with the given gene.
func (d *Document) HasGene(v string) bool {
	return slices.Contains(d.Genes, v)
}

// ContentKey returns a stable content-derived key for the document,
// independent of its positional Id.
func (d *Document) ContentKey() ID {
	return IDFromContent(d.Prompt + "\x00" + d.Completion)
}

// DatasetHash computes a version hash over the full document set. Two
// document sets hash equal iff they contain the same records in the same
// order, which is what keys the persisted graph cache.
func DatasetHash(docs []*Document) ID {
	h, _ := blake2b.New(8, nil)
	sep := []byte{0x1e}
	for _, d := range docs {
		h.Write([]byte(d.Prompt))
		h.Write(sep)
		h.Write([]byte(d.Completion))
		h.Write(sep)
		for _, ct := range d.CancerTypes {
			h.Write([]byte(ct))
			h.Write(sep)
		}
		for _, g := range d.Genes {
			h.Write([]byte(g))
			h.Write(sep)
		}
	}
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ScoredResult is a ranked search hit. It is created per query and never
// shared between calls.
type ScoredResult struct {
	Document          *Document
	Score             int // 2*PromptMatches + CompletionMatches
	PromptMatches     int
	CompletionMatches int
	MatchedTokens     []string // sorted query tokens found in the document
}

// RelatedConcept is a weighted neighbor concept from the knowledge graph.
type RelatedConcept struct {
	Concept string
	Weight  int
}
