// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vechain/mmrledger/thor"
)

// Scalar is a single RLP encoded value at a slot.
type Scalar[V any] struct {
	context *Context
	pos     thor.Bytes32
}

func NewScalar[V any](context *Context, pos thor.Bytes32) *Scalar[V] {
	return &Scalar[V]{context: context, pos: pos}
}

// Get returns the value, the zero value if never set.
func (s *Scalar[V]) Get() (value V, err error) {
	err = s.context.state.DecodeStorage(s.context.address, s.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (s *Scalar[V]) Set(value V) error {
	return s.context.state.EncodeStorage(s.context.address, s.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
