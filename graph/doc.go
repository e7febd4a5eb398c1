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


// Package graph builds the knowledge graph over loaded documents and answers
// related-concept queries from it.
//
// One pass over the documents produces two linked structures:
//
//   - A term co-occurrence graph: each document contributes a keyword set
//     (significant prompt terms plus normalized cancer types and genes), and
//     every unordered pair of distinct keywords shares a weighted edge that
//     counts co-occurrences across the whole corpus.
//   - An entity-relationship graph: one document node per record, with
//     labeled relations to cancer-type nodes (about), gene nodes (involves)
//     and significant-term nodes (mentions).
//
// Node keys are content-derived IDs, so rebuilding from an unchanged dataset
// reproduces identical keys. A built Graph is immutable and safe for
// concurrent readers; it can be exported to a Snapshot for persistence and
// restored without rebuilding.
package graph
