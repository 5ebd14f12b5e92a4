// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/vechain/mmrledger/thor"
)

const (
	tagData uint8 = iota
	tagHash
)

type compactElement struct {
	Tag     uint8
	Payload []byte
}

// Compact is a composite leaf made of ordered elements, each of which can be
// hidden behind its hash without changing the leaf hash.
//
// The full form lists the elements with their data. The compact form lists the
// element hashes only, and is what the MMR commits to.
type Compact struct {
	hasher   thor.Hasher
	Elements []Node
}

// NewCompact creates a composite leaf of the given elements.
func NewCompact(hasher thor.Hasher, elems ...Node) *Compact {
	return &Compact{hasher: hasher, Elements: elems}
}

// Pair is a composite leaf of two elements.
func Pair(hasher thor.Hasher, a, b Node) *Compact {
	return NewCompact(hasher, a, b)
}

// Triple is a composite leaf of three elements.
func Triple(hasher thor.Hasher, a, b, c Node) *Compact {
	return NewCompact(hasher, a, b, c)
}

// Hide replaces the i-th element by its hash. The leaf hash is unchanged.
func (c *Compact) Hide(i int) error {
	if i < 0 || i >= len(c.Elements) {
		return fmt.Errorf("element index %d out of range", i)
	}
	h, err := c.Elements[i].Hash(c.hasher)
	if err != nil {
		return err
	}
	c.Elements[i] = HashNode(h)
	return nil
}

func (c *Compact) Encode(compact bool) ([]byte, error) {
	elems := make([]compactElement, 0, len(c.Elements))
	for i, e := range c.Elements {
		if compact || e.IsHash() {
			h, err := e.Hash(c.hasher)
			if err != nil {
				return nil, errors.WithMessagef(err, "hash element %d", i)
			}
			elems = append(elems, compactElement{tagHash, h.Bytes()})
			continue
		}
		data, err := e.Leaf().Encode(false)
		if err != nil {
			return nil, errors.WithMessagef(err, "encode element %d", i)
		}
		elems = append(elems, compactElement{tagData, data})
	}
	return rlp.EncodeToBytes(elems)
}

// DecodeCompact decodes either form of a composite leaf. Data elements come back
// as OpaqueLeaf.
func DecodeCompact(hasher thor.Hasher, data []byte) (*Compact, error) {
	var elems []compactElement
	if err := rlp.DecodeBytes(data, &elems); err != nil {
		return nil, err
	}
	c := &Compact{hasher: hasher, Elements: make([]Node, 0, len(elems))}
	for i, e := range elems {
		switch e.Tag {
		case tagData:
			c.Elements = append(c.Elements, DataNode(OpaqueLeaf(e.Payload)))
		case tagHash:
			if len(e.Payload) != 32 {
				return nil, fmt.Errorf("element %d: invalid hash length %d", i, len(e.Payload))
			}
			c.Elements = append(c.Elements, HashNode(thor.BytesToBytes32(e.Payload)))
		default:
			return nil, fmt.Errorf("element %d: unknown tag %d", i, e.Tag)
		}
	}
	return c, nil
}

// DecodeElement decodes the i-th element of c into T. Hidden elements cannot be decoded.
func DecodeElement[T any](c *Compact, i int) (T, error) {
	var v T
	if i < 0 || i >= len(c.Elements) {
		return v, fmt.Errorf("element index %d out of range", i)
	}
	e := c.Elements[i]
	if e.IsHash() {
		return v, fmt.Errorf("element %d is hidden", i)
	}
	data, err := e.Leaf().Encode(false)
	if err != nil {
		return v, err
	}
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return v, err
	}
	return v, nil
}
