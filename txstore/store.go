// Package txstore persists raw transactions in a bbolt database, keyed by
// txid. It stores canonical serializations only; it is an archive, not a
// mempool — there is no fee accounting, eviction, or validation.
package txstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"go.etcd.io/bbolt"

	"github.com/poolcore/libtxn-go/txn"
)

var bucketTxns = []byte("txns")

// Store wraps a bbolt database holding raw transactions.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath. The parent directory
// is created if it does not exist.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("txstore: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("txstore: open bolt db: %w", err)
	}
	err = db.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(bucketTxns)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("txstore: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores t's canonical serialization keyed by its txid. The
// transaction must carry a raw-bytes cache (from NewFromBytes or
// Serialize); ErrNoSerialization otherwise.
func (s *Store) Put(t *txn.Transaction) error {
	if t == nil {
		return fmt.Errorf("%w: transaction", ErrNilParam)
	}
	raw := t.Raw()
	if len(raw) == 0 {
		return ErrNoSerialization
	}
	id := t.TxID()
	return s.db.Update(func(btx *bbolt.Tx) error {
		if err := btx.Bucket(bucketTxns).Put(id[:], raw); err != nil {
			return fmt.Errorf("txstore: put transaction: %w", err)
		}
		return nil
	})
}

// Get loads and decodes the transaction with the given txid. Returns
// ErrNotFound if the store has no such transaction.
func (s *Store) Get(id chainhash.Hash) (*txn.Transaction, error) {
	var raw []byte
	err := s.db.View(func(btx *bbolt.Tx) error {
		v := btx.Bucket(bucketTxns).Get(id[:])
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		// v is only valid inside the view transaction.
		raw = make([]byte, len(v))
		copy(raw, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn.Parse(raw)
}

// Has reports whether the store holds a transaction with the given txid.
func (s *Store) Has(id chainhash.Hash) (bool, error) {
	var found bool
	err := s.db.View(func(btx *bbolt.Tx) error {
		found = btx.Bucket(bucketTxns).Get(id[:]) != nil
		return nil
	})
	return found, err
}

// Delete removes the transaction with the given txid. Returns ErrNotFound
// if it was not stored.
func (s *Store) Delete(id chainhash.Hash) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketTxns)
		if b.Get(id[:]) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := b.Delete(id[:]); err != nil {
			return fmt.Errorf("txstore: delete transaction: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored transactions.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(btx *bbolt.Tx) error {
		n = btx.Bucket(bucketTxns).Stats().KeyN
		return nil
	})
	return n, err
}

// ForEach calls fn for every stored transaction, decoded. Iteration stops
// at the first error, which is returned.
func (s *Store) ForEach(fn func(*txn.Transaction) error) error {
	return s.db.View(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketTxns).ForEach(func(_, v []byte) error {
			raw := make([]byte, len(v))
			copy(raw, v)
			t, err := txn.Parse(raw)
			if err != nil {
				return err
			}
			return fn(t)
		})
	})
}
