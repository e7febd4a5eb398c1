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


// Package search ranks documents against free-text queries and post-filters
// the results by score and facets.
//
// The Searcher type implements weighted token-overlap ranking:
//   - Candidates are the union of posting lists over query tokens (OR semantics)
//   - Each candidate is scored by exact intersection counts, prompt matches
//     weighted double over completion matches
//   - Results sort by score descending, ties broken by ascending document id
//
// Filter applies score/keyword/facet constraints without reordering. The
// legacy ClosestMatch backend answers with the single most similar prompt by
// edit distance; it is a separate strategy and is never blended with the
// token-overlap ranking.
package search
