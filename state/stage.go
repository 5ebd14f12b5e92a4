// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vechain/mmrledger/kv"
)

// Stage holds the changes of a state ready to be written.
type Stage struct {
	changes map[storageKey]rlp.RawValue
	cache   *Cache
}

// Len returns the number of changed values.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes through putter, which is expected to be a bulk of the
// store the state was created on.
func (s *Stage) Commit(putter kv.Putter) error {
	putter = StorageBucket.NewPutter(putter)
	for k, v := range s.changes {
		key := k.bytes()
		if len(v) == 0 {
			if err := putter.Delete(key); err != nil {
				return &Error{err}
			}
		} else {
			if err := putter.Put(key, v); err != nil {
				return &Error{err}
			}
		}
		metricStorageCounter().AddWithLabel(1, map[string]string{"type": "write", "target": "db"})
	}
	return nil
}

// UpdateCache refreshes the cache with the committed values. Call it after the
// changes are durably written.
func (s *Stage) UpdateCache() {
	if s.cache == nil {
		return
	}
	for k, v := range s.changes {
		s.cache.set(k.bytes(), v)
	}
}
