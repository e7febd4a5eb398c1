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


// Package index builds the inverted index over loaded documents.
//
// The index maps each token to the ascending list of document ids whose
// prompt or completion contains it after normalization. It is built once per
// dataset load and is read-only afterwards, so concurrent queries need no
// locking. Tokenization of individual documents runs on a worker pool; the
// merge happens in document-id order, so builds are deterministic.
package index
