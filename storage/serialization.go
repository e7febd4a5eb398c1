// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/clinquery/core"
	"github.com/poiesic/clinquery/graph"
)

// MUS serializers for the graph snapshot wire format. Hand-written against
// mus-go primitives; the encoded layout is length-prefix-free varints and
// ordinary length-prefixed strings, in struct field order.

type idMUS struct{}

func (idMUS) Marshal(id core.ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (core.ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(v), n, err
}

func (idMUS) Size(id core.ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type nodeMUS struct{}

func (nodeMUS) Marshal(node graph.Node, bs []byte) int {
	n := IDMUS.Marshal(node.Id, bs)
	n += varint.Int.Marshal(int(node.Kind), bs[n:])
	n += ord.String.Marshal(node.Label, bs[n:])
	return n
}

func (nodeMUS) Unmarshal(bs []byte) (graph.Node, int, error) {
	var node graph.Node
	id, n, err := IDMUS.Unmarshal(bs)
	if err != nil {
		return node, n, err
	}
	node.Id = id
	kind, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return node, n, err
	}
	node.Kind = graph.NodeKind(kind)
	label, n1, err := ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return node, n, err
	}
	node.Label = label
	return node, n, nil
}

func (nodeMUS) Size(node graph.Node) int {
	return IDMUS.Size(node.Id) + varint.Int.Size(int(node.Kind)) + ord.String.Size(node.Label)
}

func (nodeMUS) Skip(bs []byte) (int, error) {
	n, err := IDMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	n1, err := varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = ord.String.Skip(bs[n:])
	return n + n1, err
}

type coocEdgeMUS struct{}

func (coocEdgeMUS) Marshal(e graph.CoocEdge, bs []byte) int {
	n := IDMUS.Marshal(e.A, bs)
	n += IDMUS.Marshal(e.B, bs[n:])
	n += varint.Int.Marshal(e.Weight, bs[n:])
	return n
}

func (coocEdgeMUS) Unmarshal(bs []byte) (graph.CoocEdge, int, error) {
	var e graph.CoocEdge
	a, n, err := IDMUS.Unmarshal(bs)
	if err != nil {
		return e, n, err
	}
	b, n1, err := IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	weight, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.A, e.B, e.Weight = a, b, weight
	return e, n, nil
}

func (coocEdgeMUS) Size(e graph.CoocEdge) int {
	return IDMUS.Size(e.A) + IDMUS.Size(e.B) + varint.Int.Size(e.Weight)
}

func (coocEdgeMUS) Skip(bs []byte) (int, error) {
	n, err := IDMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	n1, err := IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = varint.Int.Skip(bs[n:])
	return n + n1, err
}

type relationMUS struct{}

func (relationMUS) Marshal(r graph.Relation, bs []byte) int {
	n := IDMUS.Marshal(r.From, bs)
	n += IDMUS.Marshal(r.To, bs[n:])
	n += varint.Int.Marshal(int(r.Kind), bs[n:])
	return n
}

func (relationMUS) Unmarshal(bs []byte) (graph.Relation, int, error) {
	var r graph.Relation
	from, n, err := IDMUS.Unmarshal(bs)
	if err != nil {
		return r, n, err
	}
	to, n1, err := IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	kind, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return r, n, err
	}
	r.From, r.To, r.Kind = from, to, graph.RelationKind(kind)
	return r, n, nil
}

func (relationMUS) Size(r graph.Relation) int {
	return IDMUS.Size(r.From) + IDMUS.Size(r.To) + varint.Int.Size(int(r.Kind))
}

func (relationMUS) Skip(bs []byte) (int, error) {
	n, err := IDMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	n1, err := IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = varint.Int.Skip(bs[n:])
	return n + n1, err
}

type snapshotMUS struct{}

func (snapshotMUS) Marshal(s graph.Snapshot, bs []byte) int {
	n := IDMUS.Marshal(s.DatasetHash, bs)
	n += varint.Int.Marshal(s.TermMinLen, bs[n:])
	n += nodesMUS.Marshal(s.Nodes, bs[n:])
	n += edgesMUS.Marshal(s.Edges, bs[n:])
	n += relationsMUS.Marshal(s.Relations, bs[n:])
	return n
}

func (snapshotMUS) Unmarshal(bs []byte) (graph.Snapshot, int, error) {
	var s graph.Snapshot
	hash, n, err := IDMUS.Unmarshal(bs)
	if err != nil {
		return s, n, err
	}
	s.DatasetHash = hash
	minLen, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}
	s.TermMinLen = minLen
	nodes, n1, err := nodesMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}
	s.Nodes = nodes
	edges, n1, err := edgesMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}
	s.Edges = edges
	relations, n1, err := relationsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return s, n, err
	}
	s.Relations = relations
	return s, n, nil
}

func (snapshotMUS) Size(s graph.Snapshot) int {
	return IDMUS.Size(s.DatasetHash) + varint.Int.Size(s.TermMinLen) +
		nodesMUS.Size(s.Nodes) + edgesMUS.Size(s.Edges) + relationsMUS.Size(s.Relations)
}

func (snapshotMUS) Skip(bs []byte) (int, error) {
	n, err := IDMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	n1, err := varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = nodesMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = edgesMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = relationsMUS.Skip(bs[n:])
	return n + n1, err
}

var (
	IDMUS       = idMUS{}
	NodeMUS     = nodeMUS{}
	CoocEdgeMUS = coocEdgeMUS{}
	RelationMUS = relationMUS{}
	SnapshotMUS = snapshotMUS{}

	nodesMUS     = ord.NewSliceSer[graph.Node](NodeMUS)
	edgesMUS     = ord.NewSliceSer[graph.CoocEdge](CoocEdgeMUS)
	relationsMUS = ord.NewSliceSer[graph.Relation](RelationMUS)
)

// MarshalSnapshot serializes a graph snapshot to bytes.
func MarshalSnapshot(s graph.Snapshot) []byte {
	buf := make([]byte, SnapshotMUS.Size(s))
	SnapshotMUS.Marshal(s, buf)
	return buf
}

// UnmarshalSnapshot deserializes a graph snapshot from bytes.
func UnmarshalSnapshot(data []byte) (graph.Snapshot, error) {
	s, _, err := SnapshotMUS.Unmarshal(data)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	return s, nil
}
