package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetMissingKey(t *testing.T) {
	db := newTestDB(t)
	err := db.View(func(kv KV) error {
		_, err := kv.Get([]byte("absent"))
		return err
	})
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestUpdateCommitsAsUnit(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Update(func(kv KV) error {
		if err := kv.Put([]byte("a"), []byte("1")); err != nil {
			return err
		}
		return kv.Put([]byte("b"), []byte("2"))
	}))

	require.NoError(t, db.View(func(kv KV) error {
		value, err := kv.Get([]byte("a"))
		require.NoError(t, err)
		require.Equal(t, []byte("1"), value)
		ok, err := kv.Has([]byte("b"))
		require.NoError(t, err)
		require.True(t, ok)
		return nil
	}))
}

func TestUpdateDiscardsOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")
	err := db.Update(func(kv KV) error {
		if err := kv.Put([]byte("orphan"), []byte("x")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, db.View(func(kv KV) error {
		ok, err := kv.Has([]byte("orphan"))
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))
}

func TestReadYourWrites(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Update(func(kv KV) error {
		if err := kv.Put([]byte("k"), []byte("v")); err != nil {
			return err
		}
		value, err := kv.Get([]byte("k"))
		require.NoError(t, err)
		require.Equal(t, []byte("v"), value)

		if err := kv.Delete([]byte("k")); err != nil {
			return err
		}
		ok, err := kv.Has([]byte("k"))
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	}))
}

func TestIteratorByteOrder(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Update(func(kv KV) error {
		for _, key := range []string{"p/b", "p/a", "q/x", "p/c"} {
			if err := kv.Put([]byte(key), nil); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, db.View(func(kv KV) error {
		it := kv.NewIterator(util.BytesPrefix([]byte("p/")))
		defer it.Release()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Error())
		require.Equal(t, []string{"p/a", "p/b", "p/c"}, keys)

		// Reverse traversal from the range end.
		require.True(t, it.Last())
		require.Equal(t, "p/c", string(it.Key()))
		require.True(t, it.Prev())
		require.Equal(t, "p/b", string(it.Key()))
		return nil
	}))
}

func TestIteratorSeesPendingWrites(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Update(func(kv KV) error {
		return kv.Put([]byte("p/a"), nil)
	}))

	require.NoError(t, db.Update(func(kv KV) error {
		if err := kv.Put([]byte("p/b"), nil); err != nil {
			return err
		}
		it := kv.NewIterator(util.BytesPrefix([]byte("p/")))
		defer it.Release()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Error())
		require.Equal(t, []string{"p/a", "p/b"}, keys)
		return nil
	}))
}
