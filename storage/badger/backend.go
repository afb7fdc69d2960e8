package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/storage"
)

// Backend wraps a BadgerDB instance and provides low-level operations.
// It also implements storage.IndexWriter: note-granular mutations that
// touch both the vector and keyword stores commit in one transaction here.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.IndexWriter = (*Backend)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// UpsertNote atomically writes a note's vector record and posting list.
// A reader never observes the new vector with the old postings or vice
// versa: the whole note update commits in one transaction.
func (b *Backend) UpsertNote(ctx context.Context, record *core.VectorRecord, postings *core.PostingList) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := checkDimension(tx, len(record.Components)); err != nil {
			return err
		}

		if err := tx.Set(makeVectorKey(record.NoteID), storage.MarshalVectorRecord(record)); err != nil {
			return err
		}

		if err := removePostingsTx(tx, postings.NoteID); err != nil {
			return err
		}
		if err := writePostingsTx(tx, postings); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// DeleteNote atomically removes a note's vector record and postings.
// Deleting an unknown note is a no-op.
func (b *Backend) DeleteNote(ctx context.Context, noteID string) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeVectorKey(noteID)); err != nil {
			return err
		}
		if err := removePostingsTx(tx, noteID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Wipe removes every vector, posting and meta record.
func (b *Backend) Wipe(ctx context.Context) error {
	return b.db.DropAll()
}

// checkDimension enforces the store-wide vector dimension recorded in the
// version marker. Stores without a marker (first build in progress) accept
// any dimension; the indexer persists the marker before writing vectors.
func checkDimension(tx *badger.Txn, dimension int) error {
	item, err := tx.Get([]byte(metaVersionKey))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	}

	var version *core.IndexVersion
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		version, unmarshalErr = storage.UnmarshalIndexVersion(val)
		return unmarshalErr
	})
	if err != nil {
		return err
	}

	if version.Dimension != dimension {
		return fmt.Errorf("%w: got %d, store dimension is %d",
			storage.ErrDimensionMismatch, dimension, version.Dimension)
	}
	return nil
}
