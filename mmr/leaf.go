// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/qianbin/drlp"
	"github.com/vechain/mmrledger/thor"
)

// Leaf is application data that can be appended to the MMR.
//
// The full form must decode back into the original value. The compact form may
// hide parts of composite leaves behind their hashes, and is the only form
// that is ever hashed.
type Leaf interface {
	Encode(compact bool) ([]byte, error)
}

// OpaqueLeaf is an already encoded leaf. Its full and compact forms are the same.
type OpaqueLeaf []byte

func (l OpaqueLeaf) Encode(bool) ([]byte, error) { return l, nil }

// Uint64Leaf is a number leaf, RLP encoded.
type Uint64Leaf uint64

func (l Uint64Leaf) Encode(bool) ([]byte, error) {
	return drlp.AppendUint(nil, uint64(l)), nil
}

// Plain is a leaf of any RLP encodable value. Compact and full forms are equal.
type Plain[T any] struct {
	Value T
}

// NewPlain wraps v into a leaf.
func NewPlain[T any](v T) *Plain[T] {
	return &Plain[T]{v}
}

func (l *Plain[T]) Encode(bool) ([]byte, error) {
	return rlp.EncodeToBytes(l.Value)
}

// DecodePlain decodes the full form of a Plain leaf.
func DecodePlain[T any](data []byte) (*Plain[T], error) {
	var l Plain[T]
	if err := rlp.DecodeBytes(data, &l.Value); err != nil {
		return nil, err
	}
	return &l, nil
}

// EncodedLeaf keeps both encodings of a leaf, so that a leaf read back from storage
// or received over the wire hashes exactly as the original one.
// Compact is empty when it equals Full.
type EncodedLeaf struct {
	Full    []byte
	Compact []byte `rlp:"optional"`
}

// EncodeLeaf captures both forms of l.
func EncodeLeaf(l Leaf) (*EncodedLeaf, error) {
	if el, ok := l.(*EncodedLeaf); ok {
		return el, nil
	}
	full, err := l.Encode(false)
	if err != nil {
		return nil, err
	}
	compact, err := l.Encode(true)
	if err != nil {
		return nil, err
	}
	el := &EncodedLeaf{Full: full}
	if !bytes.Equal(full, compact) {
		el.Compact = compact
	}
	return el, nil
}

func (l *EncodedLeaf) Encode(compact bool) ([]byte, error) {
	if compact && len(l.Compact) > 0 {
		return l.Compact, nil
	}
	return l.Full, nil
}

// CheckForms checks that Compact is the compact form of the composite leaf in Full.
// A leaf carrying only one of the forms has nothing to check.
func (l *EncodedLeaf) CheckForms(hasher thor.Hasher) error {
	if len(l.Compact) == 0 || len(l.Full) == 0 {
		return nil
	}
	c, err := DecodeCompact(hasher, l.Full)
	if err != nil {
		return errors.WithMessage(err, "decode full form")
	}
	compact, err := c.Encode(true)
	if err != nil {
		return err
	}
	if !bytes.Equal(compact, l.Compact) {
		return errors.New("compact form does not match full form")
	}
	return nil
}
