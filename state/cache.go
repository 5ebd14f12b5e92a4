// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"slices"

	"github.com/qianbin/directcache"
	"github.com/vechain/mmrledger/cache"
	"github.com/vechain/mmrledger/log"
)

var logger = log.WithContext("pkg", "state")

// Cache caches raw storage values, including their absence.
// It's safe for concurrent use and meant to be shared by all states over the same store.
type Cache struct {
	values *directcache.Cache
	stats  cache.Stats
}

// NewCache creates a cache of the given size in MiB.
func NewCache(sizeMB int) *Cache {
	return &Cache{values: directcache.New(sizeMB * 1024 * 1024)}
}

// values are stored with a leading marker byte, 0 for absent and 1 for present.
func (c *Cache) get(key []byte) (val []byte, found bool) {
	found = c.values.AdvGet(key, func(v []byte) {
		if len(v) > 0 && v[0] == 1 {
			val = slices.Clone(v[1:])
		}
	}, false)
	if found {
		c.stats.Hit()
	} else {
		c.stats.Miss()
	}
	return
}

func (c *Cache) set(key, val []byte) {
	if len(val) == 0 {
		_ = c.values.Set(key, []byte{0})
		return
	}
	_ = c.values.AdvSet(key, len(val)+1, func(v []byte) {
		v[0] = 1
		copy(v[1:], val)
	})
}

// LogStats logs the hit rate if it changed since the last call.
func (c *Cache) LogStats() {
	c.stats.Log(logger, "state cache stats")
}
