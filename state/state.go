// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vechain/mmrledger/kv"
	"github.com/vechain/mmrledger/stackedmap"
	"github.com/vechain/mmrledger/thor"
)

// StorageBucket is the kv bucket holding account storage.
const StorageBucket = kv.Bucket("s")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, len(k.addr)+len(k.key))
	b = append(b, k.addr[:]...)
	return append(b, k.key[:]...)
}

// State manages account storage on top of a kv store.
// Changes are kept in memory until staged and committed.
type State struct {
	src   kv.Getter
	cache *Cache
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New creates a state over db. cache is optional.
func New(db kv.Getter, cache *Cache) *State {
	s := &State{
		src:   StorageBucket.NewGetter(db),
		cache: cache,
	}
	s.sm = stackedmap.New[storageKey, rlp.RawValue](s.cacheGetter)
	return s
}

func (s *State) cacheGetter(k storageKey) (rlp.RawValue, bool, error) {
	key := k.bytes()
	if s.cache != nil {
		if val, ok := s.cache.get(key); ok {
			metricStorageCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "cache"})
			return val, true, nil
		}
	}
	val, err := s.src.Get(key)
	if err != nil {
		if !s.src.IsNotFound(err) {
			return nil, false, err
		}
		val = nil
	}
	metricStorageCounter().AddWithLabel(1, map[string]string{"type": "read", "target": "db"})
	if s.cache != nil {
		s.cache.set(key, val)
	}
	return val, true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw. Empty raw deletes the value.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the cumulative changes.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		changes[k] = v
		return true
	})
	return &Stage{changes: changes, cache: s.cache}
}
