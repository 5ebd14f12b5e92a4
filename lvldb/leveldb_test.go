// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mmrledger/kv"
)

func newStores(t *testing.T) []*LevelDB {
	persisted, err := New(filepath.Join(t.TempDir(), "main.db"), Options{CacheSize: 16, OpenFilesCacheCapacity: 16})
	require.NoError(t, err)
	t.Cleanup(func() { persisted.Close() })

	mem, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	return []*LevelDB{persisted, mem}
}

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	for _, db := range newStores(t) {
		assert.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		assert.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBulkAndSnapshot(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	snap := db.Snapshot()
	defer snap.Release()

	bulk := db.Bulk()
	assert.NoError(t, bulk.Put([]byte("a"), []byte("1")))
	assert.NoError(t, bulk.Put([]byte("b"), []byte("2")))

	// nothing visible before write
	has, err := db.Has([]byte("a"))
	assert.NoError(t, err)
	assert.False(t, has)

	assert.NoError(t, bulk.Write())
	has, err = db.Has([]byte("a"))
	assert.NoError(t, err)
	assert.True(t, has)

	// the snapshot was taken before the write
	_, err = snap.Get([]byte("a"))
	assert.True(t, snap.IsNotFound(err))
}

func TestLevelDBIterateBucket(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	b1 := kv.Bucket("x").NewStore(db)
	b2 := kv.Bucket("y").NewStore(db)
	for i, k := range []string{"1", "2", "3"} {
		assert.NoError(t, b1.Put([]byte(k), []byte{byte(i)}))
		assert.NoError(t, b2.Put([]byte(k), []byte{byte(i + 10)}))
	}

	var keys []string
	err = kv.ForEach(b1, kv.Range{}, func(key, val []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, keys)

	keys = keys[:0]
	err = kv.ForEach(b2, kv.Range{Start: []byte("2")}, func(key, val []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, keys)
}
