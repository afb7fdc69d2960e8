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


package noteseek

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/noteseek/embed"
	"github.com/poiesic/noteseek/indexer"
	"github.com/poiesic/noteseek/search"
	"github.com/poiesic/noteseek/storage"
	"github.com/poiesic/noteseek/storage/badger"
	"github.com/poiesic/noteseek/tokenizer"
)

// Index is the top-level handle over a persistent note index. It owns the
// storage backend and wires the repositories, embedder, indexer, and
// searcher together.
type Index struct {
	backend  *badger.Backend
	vectors  storage.VectorRepository
	keywords storage.KeywordRepository
	meta     storage.MetaRepository
	embedder *embed.Harmonic
	lockPath string
	logger   *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	inMemory bool
	lockPath string
}

// WithInMemory opens the index without touching disk. State is lost on
// Close; intended for tests and throwaway sessions.
func WithInMemory() IndexOption {
	return func(o *indexOptions) {
		o.inMemory = true
	}
}

// WithLockFile overrides the path of the cross-process write lock.
// Default is "<filePath>.lock"; in-memory indexes take no lock.
func WithLockFile(path string) IndexOption {
	return func(o *indexOptions) {
		o.lockPath = path
	}
}

// Open opens (creating if needed) the index stored at filePath.
func Open(filePath string, opts ...IndexOption) (*Index, error) {
	options := &indexOptions{}
	for _, opt := range opts {
		opt(options)
	}

	lockPath := options.lockPath
	if lockPath == "" && !options.inMemory {
		lockPath = filePath + ".lock"
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	return &Index{
		backend:  backend,
		vectors:  badger.NewVectorRepository(backend),
		keywords: badger.NewKeywordRepository(backend),
		meta:     badger.NewMetaRepository(backend),
		embedder: embed.NewHarmonic(),
		lockPath: lockPath,
		logger:   slog.Default(),
	}, nil
}

func (ix *Index) Close() error {
	if err := ix.backend.Close(); err != nil {
		ix.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (ix *Index) VectorRepository() storage.VectorRepository {
	return ix.vectors
}

func (ix *Index) KeywordRepository() storage.KeywordRepository {
	return ix.keywords
}

func (ix *Index) MetaRepository() storage.MetaRepository {
	return ix.meta
}

func (ix *Index) Embedder() *embed.Harmonic {
	return ix.embedder
}

// NewIndexer creates an indexer over this index. The index's write lock
// is applied unless the caller overrides it.
func (ix *Index) NewIndexer(opts ...indexer.Option) (*indexer.Indexer, error) {
	if ix.lockPath != "" {
		opts = append([]indexer.Option{indexer.WithLockPath(ix.lockPath)}, opts...)
	}
	return indexer.NewIndexer(ix.backend, ix.vectors, ix.meta, ix.embedder, opts...)
}

func (ix *Index) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(ix.vectors, ix.keywords, ix.meta, ix.embedder, opts...)
}

// Status summarizes the state of a persistent index.
type Status struct {
	Notes          int
	Dimension      int
	TokenizerRules int
	Derivation     int
	LastIndexed    time.Time
	Built          bool
}

// Status reports the stored index state. An index that has never been
// built returns Built=false with the running configuration.
func (ix *Index) Status(ctx context.Context) (*Status, error) {
	status := &Status{
		Dimension:      ix.embedder.Dimension(),
		TokenizerRules: tokenizer.RulesVersion,
		Derivation:     embed.DerivationVersion,
	}

	version, err := ix.meta.GetVersion(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return status, nil
		}
		return nil, err
	}
	status.Built = true
	status.Dimension = version.Dimension
	status.TokenizerRules = version.TokenizerRules
	status.Derivation = version.Derivation

	hashes, err := ix.vectors.ContentHashes(ctx)
	if err != nil {
		return nil, err
	}
	status.Notes = len(hashes)

	status.LastIndexed, err = ix.meta.GetLastIndexed(ctx)
	if err != nil {
		return nil, err
	}

	return status, nil
}
