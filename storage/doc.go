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


// Package storage provides the storage abstraction layer for noteseek.
//
// This package defines repository interfaces that decouple storage
// implementation from the indexing and search logic, plus the pinned binary
// serialization for persisted records. The storage/badger sub-package holds
// the BadgerDB implementation.
//
// # Repositories
//
//   - VectorRepository: keyed embedding storage with a brute-force scan
//   - KeywordRepository: inverted posting structure for keyword overlap
//   - IndexWriter: note-granular atomic mutations across both stores
//   - MetaRepository: index version marker and pass bookkeeping
//
// # Consistency
//
// All repository implementations must be thread-safe. Writes commit per
// note: a reader concurrent with a reindex pass observes either the state
// before or after a given note's update, never a partially written record
// and never a mix of old vector and new postings for one note.
//
// # Serialization
//
// Record layouts are pinned by hand on mus-go primitive serializers rather
// than generated: vector components are fixed-width little-endian float32
// and posting terms are encoded in sorted order, so re-marshaling an
// unchanged record is byte-identical. Layout changes require an index
// version bump.
//
// # Usage
//
// Create repositories over a shared backend:
//
//	backend, err := badger.OpenBackend("/path/to/index", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	vectors := badger.NewVectorRepository(backend)
//
// Use in tests with in-memory storage:
//
//	vectors, keywords, meta, backend, err := badger.NewMemoryRepositories()
package storage
