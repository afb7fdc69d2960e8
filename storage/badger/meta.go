package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/storage"
)

// MetaRepository implements storage.MetaRepository for BadgerDB.
type MetaRepository struct {
	backend *Backend
}

var _ storage.MetaRepository = (*MetaRepository)(nil)

// NewMetaRepository creates a new MetaRepository.
func NewMetaRepository(backend *Backend) *MetaRepository {
	return &MetaRepository{backend: backend}
}

// GetVersion retrieves the persisted index version marker.
func (r *MetaRepository) GetVersion(ctx context.Context) (*core.IndexVersion, error) {
	var version *core.IndexVersion
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(metaVersionKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			version, unmarshalErr = storage.UnmarshalIndexVersion(val)
			return unmarshalErr
		})
	}, false)
	return version, err
}

// SetVersion persists the index version marker.
func (r *MetaRepository) SetVersion(ctx context.Context, version core.IndexVersion) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(metaVersionKey), storage.MarshalIndexVersion(version)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetLastIndexed returns when the last indexing pass committed.
// The zero time means the index has never been built.
func (r *MetaRepository) GetLastIndexed(ctx context.Context) (time.Time, error) {
	var at time.Time
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(metaLastIndexedKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			at, unmarshalErr = storage.UnmarshalTime(val)
			return unmarshalErr
		})
	}, false)
	return at, err
}

// SetLastIndexed records the commit time of an indexing pass.
func (r *MetaRepository) SetLastIndexed(ctx context.Context, at time.Time) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(metaLastIndexedKey), storage.MarshalTime(at)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
