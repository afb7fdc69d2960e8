package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/storage"
)

// KeywordRepository implements storage.KeywordRepository for BadgerDB.
// Postings are double-indexed: a forward record per note (the unit of
// replacement and deletion) and inverted token entries (the unit of
// matching).
type KeywordRepository struct {
	backend *Backend
}

var _ storage.KeywordRepository = (*KeywordRepository)(nil)

// NewKeywordRepository creates a new KeywordRepository.
func NewKeywordRepository(backend *Backend) *KeywordRepository {
	return &KeywordRepository{backend: backend}
}

// IndexPostings replaces all postings for a note.
func (r *KeywordRepository) IndexPostings(ctx context.Context, postings *core.PostingList) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := removePostingsTx(tx, postings.NoteID); err != nil {
			return err
		}
		if err := writePostingsTx(tx, postings); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RemovePostings deletes every posting entry for a note.
func (r *KeywordRepository) RemovePostings(ctx context.Context, noteID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := removePostingsTx(tx, noteID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetPostings retrieves the forward posting list for a note.
func (r *KeywordRepository) GetPostings(ctx context.Context, noteID string) (*core.PostingList, error) {
	var postings *core.PostingList
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		postings, err = readPostingList(tx, makePostingForwardKey(noteID))
		if err != nil {
			return err
		}
		if postings == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return postings, err
}

// MatchTerms scores stored notes against query term frequencies. The
// overlap score is the summed matched-frequency ratio: the fraction of
// query term occurrences whose term appears in the note's postings.
func (r *KeywordRepository) MatchTerms(ctx context.Context, terms map[string]int) (map[string]float32, error) {
	totalQuery := 0
	for _, tf := range terms {
		totalQuery += tf
	}
	if totalQuery == 0 {
		return map[string]float32{}, nil
	}

	matched := make(map[string]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for term, qtf := range terms {
			prefix := makePartialInvertedKey(term)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			it := tx.NewIterator(opts)

			for it.Rewind(); it.Valid(); it.Next() {
				noteID := noteIDFromInvertedKey(it.Item().Key(), prefix)
				matched[noteID] += qtf
			}
			it.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float32, len(matched))
	for noteID, m := range matched {
		scores[noteID] = float32(m) / float32(totalQuery)
	}
	return scores, nil
}

// writePostingsTx writes the forward record and inverted entries for a
// note. Callers must have removed any previous postings first.
func writePostingsTx(tx *badger.Txn, postings *core.PostingList) error {
	if err := tx.Set(makePostingForwardKey(postings.NoteID), storage.MarshalPostingList(postings)); err != nil {
		return err
	}
	for term, tf := range postings.Terms {
		key := makePostingInvertedKey(term, postings.NoteID)
		if err := tx.Set(key, storage.MarshalTermFrequency(tf)); err != nil {
			return err
		}
	}
	return nil
}

// removePostingsTx deletes a note's forward record and all inverted
// entries derived from it. A note without postings is a no-op.
func removePostingsTx(tx *badger.Txn, noteID string) error {
	old, err := readPostingList(tx, makePostingForwardKey(noteID))
	if err != nil {
		return err
	}
	if old == nil {
		return nil
	}

	for term := range old.Terms {
		if err := tx.Delete(makePostingInvertedKey(term, noteID)); err != nil {
			return err
		}
	}
	return tx.Delete(makePostingForwardKey(noteID))
}

// readPostingList reads a forward posting list from the transaction.
// Returns nil without error when the key is absent.
func readPostingList(tx *badger.Txn, key []byte) (*core.PostingList, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var postings *core.PostingList
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		postings, unmarshalErr = storage.UnmarshalPostingList(val)
		return unmarshalErr
	})
	return postings, err
}
