// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/qianbin/drlp"
	"github.com/vechain/mmrledger/cache"
	"github.com/vechain/mmrledger/kv"
	"github.com/vechain/mmrledger/log"
	"github.com/vechain/mmrledger/thor"
)

// NodeBucket is the kv bucket holding node hashes.
const NodeBucket = kv.Bucket("m")

var logger = log.WithContext("pkg", "mmr")

// KVStore is a NodeStore backed by a kv.Store, with an LRU cache of hashes.
type KVStore struct {
	store   kv.Store
	cache   *cache.LRU[uint64, thor.Bytes32]
	lastLog atomic.Int64
}

// NewKVStore creates a node store in the node bucket of db.
// cacheSize is the number of cached hashes, 0 disables the cache.
func NewKVStore(db kv.Store, cacheSize int) (*KVStore, error) {
	s := &KVStore{store: NodeBucket.NewStore(db)}
	if cacheSize > 0 {
		c, err := cache.NewLRU[uint64, thor.Bytes32](cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

func nodeKey(pos uint64) []byte {
	return drlp.AppendUint(nil, pos)
}

func (s *KVStore) Get(pos uint64) (thor.Bytes32, bool, error) {
	if s.cache != nil {
		if h, ok := s.cache.Get(pos); ok {
			return h, true, nil
		}
		s.logStats()
	}

	val, err := s.store.Get(nodeKey(pos))
	if err != nil {
		if s.store.IsNotFound(err) {
			return thor.Bytes32{}, false, nil
		}
		return thor.Bytes32{}, false, errors.Wrapf(err, "get node %d", pos)
	}
	if len(val) != 32 {
		return thor.Bytes32{}, false, errors.Errorf("node %d: corrupted value of length %d", pos, len(val))
	}
	h := thor.BytesToBytes32(val)
	if s.cache != nil {
		s.cache.Add(pos, h)
	}
	return h, true, nil
}

func (s *KVStore) Append(pos uint64, hashes []thor.Bytes32) error {
	bulk := s.store.Bulk()
	for i, h := range hashes {
		if err := bulk.Put(nodeKey(pos+uint64(i)), h.Bytes()); err != nil {
			return errors.Wrap(err, "put node")
		}
	}
	if err := bulk.Write(); err != nil {
		return errors.Wrap(err, "write nodes")
	}
	if s.cache != nil {
		for i, h := range hashes {
			s.cache.Add(pos+uint64(i), h)
		}
	}
	return nil
}

func (s *KVStore) logStats() {
	now := time.Now().UnixNano()
	last := s.lastLog.Swap(now)
	if now-last <= int64(time.Second*20) {
		s.lastLog.CompareAndSwap(now, last)
		return
	}
	s.cache.Stats().Log(logger, "node cache stats")

	_, hit, miss := s.cache.Stats().Stats()
	metricNodeCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricNodeCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
}
