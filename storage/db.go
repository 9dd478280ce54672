package storage

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrKeyNotFound is returned by KV.Get when no record exists at the key.
var ErrKeyNotFound = errors.New("storage: key not found")

// KV is the ordered key-value surface a single call executes against. Writes
// performed through a KV are visible to subsequent reads on the same KV
// (read-your-writes) and become durable only when the enclosing call commits.
type KV interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	// NewIterator walks keys in byte order within the given range. The
	// caller must Release the iterator before the call returns.
	NewIterator(slice *util.Range) iterator.Iterator
}

// Database owns the LevelDB instance backing the post tree. LevelDB admits
// one open transaction at a time, which serializes calls the same way the
// host environment does.
type Database struct {
	db *leveldb.DB
}

// Open creates or opens a persistent database at the given path.
func Open(path string) (*Database, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &Database{db: db}, nil
}

// OpenInMemory returns a database backed by volatile storage. It shares the
// iterator and transaction semantics of the persistent backend, which makes
// it the test double of choice.
func OpenInMemory() (*Database, error) {
	db, err := leveldb.Open(ldbstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory leveldb: %w", err)
	}
	return &Database{db: db}, nil
}

// Close releases the underlying LevelDB resources.
func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Update runs fn inside a transaction. If fn returns an error the
// transaction is discarded and none of its writes survive; otherwise it is
// committed as a unit.
func (d *Database) Update(fn func(KV) error) error {
	txn, err := d.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("open transaction: %w", err)
	}
	if err := fn(txnKV{txn}); err != nil {
		txn.Discard()
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View runs fn against a stable snapshot and always discards it afterwards.
func (d *Database) View(fn func(KV) error) error {
	txn, err := d.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("open transaction: %w", err)
	}
	defer txn.Discard()
	return fn(txnKV{txn})
}

type txnKV struct {
	txn *leveldb.Transaction
}

func (t txnKV) Get(key []byte) ([]byte, error) {
	value, err := t.txn.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

func (t txnKV) Has(key []byte) (bool, error) {
	return t.txn.Has(key, nil)
}

func (t txnKV) Put(key, value []byte) error {
	return t.txn.Put(key, value, nil)
}

func (t txnKV) Delete(key []byte) error {
	return t.txn.Delete(key, nil)
}

func (t txnKV) NewIterator(slice *util.Range) iterator.Iterator {
	return t.txn.NewIterator(slice, nil)
}
