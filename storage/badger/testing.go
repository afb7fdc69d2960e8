package badger

import (
	"github.com/poiesic/noteseek/storage"
)

// NewMemoryRepositories creates all repositories over a shared in-memory
// backend. Intended for tests; the caller must close the backend.
func NewMemoryRepositories() (storage.VectorRepository, storage.KeywordRepository, storage.MetaRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return NewVectorRepository(backend), NewKeywordRepository(backend), NewMetaRepository(backend), backend, nil
}
