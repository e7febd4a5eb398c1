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


// Package storage defines the graph cache abstraction and its wire format.
//
// The only persisted artifact in the system is the knowledge-graph snapshot,
// keyed by the content hash of the document set it was built from. Keying by
// content hash makes staleness impossible: a changed dataset hashes to a new
// key and simply misses the cache.
//
// Constructors in backend packages (storage/badger) return the GraphCache
// interface, not concrete types, so callers never couple to a specific
// backend and tests can substitute in-memory implementations.
//
// A corrupt or unreadable cached snapshot is reported as ErrCacheCorrupt and
// is always recoverable: callers rebuild from documents and overwrite. It is
// never a fatal condition.
package storage
