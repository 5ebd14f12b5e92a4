// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"github.com/vechain/mmrledger/thor"
)

// Node is either leaf data or a hash.
// Proof items and proven leaves are both nodes, so every combination rule
// works on Hash() only and never looks at which variant it got.
type Node struct {
	data Leaf
	hash thor.Bytes32
}

// DataNode creates a node holding leaf data.
func DataNode(l Leaf) Node {
	return Node{data: l}
}

// HashNode creates a node holding a hash.
func HashNode(h thor.Bytes32) Node {
	return Node{hash: h}
}

// Hash returns the hash committed for the node: the hash of the compact encoding
// for data, the hash itself otherwise.
func (n Node) Hash(hasher thor.Hasher) (thor.Bytes32, error) {
	if n.data == nil {
		return n.hash, nil
	}
	enc, err := n.data.Encode(true)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return hasher.Hash(enc), nil
}

// Leaf returns the leaf data, nil for a hash node.
func (n Node) Leaf() Leaf {
	return n.data
}

// IsHash reports whether the node only holds a hash.
func (n Node) IsHash() bool {
	return n.data == nil
}

// merge is the combination rule of two sibling nodes, left before right.
func merge(hasher thor.Hasher, left, right thor.Bytes32) thor.Bytes32 {
	return hasher.Hash(left[:], right[:])
}

// EmptyRoot is the root of an MMR without leaves: the hash of empty input.
func EmptyRoot(hasher thor.Hasher) thor.Bytes32 {
	return hasher.Hash()
}

// BagPeaks folds peak hashes, given highest first, into the root.
// The fold starts from the lowest peak: acc = H(acc ++ next higher peak).
func BagPeaks(hasher thor.Hasher, peaks []thor.Bytes32) thor.Bytes32 {
	if len(peaks) == 0 {
		return EmptyRoot(hasher)
	}
	acc := peaks[len(peaks)-1]
	for i := len(peaks) - 2; i >= 0; i-- {
		acc = merge(hasher, acc, peaks[i])
	}
	return acc
}
