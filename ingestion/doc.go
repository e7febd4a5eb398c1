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


// Package ingestion loads the clinical Q&A dataset into immutable documents.
//
// The dataset is a JSON array of records. Each record is decoded strictly on
// its own: a record that lacks a string-coercible prompt or completion is
// skipped with a log line, never failing the whole batch. Accepted records
// receive dense 0-based ids in input order.
//
// Load-time failures use three sentinel errors:
//   - ErrSourceUnreadable: the source could not be opened or read
//   - ErrMalformedDataset: the top-level JSON is not an array
//   - ErrEmptyDataset: zero records survived validation
package ingestion
