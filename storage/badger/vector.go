package badger

import (
	"context"
	"iter"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) *VectorRepository {
	return &VectorRepository{backend: backend}
}

// UpsertVector atomically replaces the stored vector for a note.
func (r *VectorRepository) UpsertVector(ctx context.Context, record *core.VectorRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := checkDimension(tx, len(record.Components)); err != nil {
			return err
		}
		if err := tx.Set(makeVectorKey(record.NoteID), storage.MarshalVectorRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteVector removes a note's vector. Unknown notes are a no-op.
func (r *VectorRepository) DeleteVector(ctx context.Context, noteID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeVectorKey(noteID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetVector retrieves the vector record for a note.
func (r *VectorRepository) GetVector(ctx context.Context, noteID string) (*core.VectorRecord, error) {
	var record *core.VectorRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = readVectorRecord(tx, makeVectorKey(noteID))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return record, err
}

// ScanVectors lazily yields every stored vector record. The whole scan
// runs inside one read transaction, so it observes a consistent snapshot.
func (r *VectorRepository) ScanVectors(ctx context.Context) iter.Seq2[*core.VectorRecord, error] {
	return func(yield func(*core.VectorRecord, error) bool) {
		tx := r.backend.db.NewTransaction(false)
		defer tx.Discard()

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record *core.VectorRecord
			err := it.Item().Value(func(val []byte) error {
				var unmarshalErr error
				record, unmarshalErr = storage.UnmarshalVectorRecord(val)
				return unmarshalErr
			})
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// ContentHashes returns the stored content hash for every indexed note id.
func (r *VectorRepository) ContentHashes(ctx context.Context) (map[string]uint64, error) {
	hashes := make(map[string]uint64)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix + ":")
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record *core.VectorRecord
			err := it.Item().Value(func(val []byte) error {
				var unmarshalErr error
				record, unmarshalErr = storage.UnmarshalVectorRecord(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			hashes[record.NoteID] = record.ContentHash
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// readVectorRecord reads a vector record from the transaction.
// Returns nil without error when the key is absent.
func readVectorRecord(tx *badger.Txn, key []byte) (*core.VectorRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.VectorRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalVectorRecord(val)
		return unmarshalErr
	})
	return record, err
}
