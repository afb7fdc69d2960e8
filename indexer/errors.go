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


package indexer

import "errors"

var (
	// ErrWriteLockHeld is returned when another process holds the index
	// write lock and it could not be acquired within the retry budget
	ErrWriteLockHeld = errors.New("index write lock held by another process")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrWriterRequired is returned when no index writer is provided
	ErrWriterRequired = errors.New("index writer is required")

	// ErrVectorRepositoryRequired is returned when no vector repository is provided
	ErrVectorRepositoryRequired = errors.New("vector repository is required")

	// ErrMetaRepositoryRequired is returned when no meta repository is provided
	ErrMetaRepositoryRequired = errors.New("meta repository is required")

	// ErrEmbedderRequired is returned when no embedder is provided
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrSourceRequired is returned when Reindex is called with a nil source
	ErrSourceRequired = errors.New("note source is required")
)
