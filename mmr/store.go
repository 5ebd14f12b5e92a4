// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"sync"

	"github.com/vechain/mmrledger/thor"
)

// NodeStore persists node hashes by position.
type NodeStore interface {
	// Get returns the hash at pos. ok is false if the node was never stored.
	Get(pos uint64) (hash thor.Bytes32, ok bool, err error)
	// Append stores hashes at consecutive positions starting from pos.
	// Nodes already present at those positions are overwritten.
	Append(pos uint64, hashes []thor.Bytes32) error
}

// MemStore is a NodeStore in memory.
type MemStore struct {
	lock  sync.RWMutex
	nodes map[uint64]thor.Bytes32
}

func NewMemStore() *MemStore {
	return &MemStore{nodes: make(map[uint64]thor.Bytes32)}
}

func (s *MemStore) Get(pos uint64) (thor.Bytes32, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	h, ok := s.nodes[pos]
	return h, ok, nil
}

func (s *MemStore) Append(pos uint64, hashes []thor.Bytes32) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, h := range hashes {
		s.nodes[pos+uint64(i)] = h
	}
	return nil
}

// Len returns the number of stored nodes.
func (s *MemStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.nodes)
}
