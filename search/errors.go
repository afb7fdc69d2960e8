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


package search

import "errors"

var (
	// ErrEmptyQuery is returned for blank or whitespace-only query text.
	// The query is rejected before any computation.
	ErrEmptyQuery = errors.New("query text is empty")

	// ErrIndexVersionMismatch is returned when the stored index version
	// (dimension, tokenizer rules, derivation) disagrees with the running
	// configuration. Fatal for queries; resolved only by a full reindex.
	ErrIndexVersionMismatch = errors.New("index version mismatch")

	// ErrVectorRepositoryRequired is returned when a vector repository is not provided.
	ErrVectorRepositoryRequired = errors.New("vector repository required")

	// ErrKeywordRepositoryRequired is returned when a keyword repository is not provided.
	ErrKeywordRepositoryRequired = errors.New("keyword repository required")

	// ErrMetaRepositoryRequired is returned when a meta repository is not provided.
	ErrMetaRepositoryRequired = errors.New("meta repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
