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


package ingestion

import "errors"

var (
	// ErrSourceUnreadable indicates the dataset source could not be opened or read.
	ErrSourceUnreadable = errors.New("dataset source unreadable")

	// ErrMalformedDataset indicates the top-level dataset is not a JSON array.
	ErrMalformedDataset = errors.New("malformed dataset")

	// ErrEmptyDataset indicates zero records survived validation.
	ErrEmptyDataset = errors.New("no valid records in dataset")

	// errInvalidRecord marks a single record that failed its decode attempt.
	// It never escapes Load; invalid records are skipped, not fatal.
	errInvalidRecord = errors.New("invalid record")
)
