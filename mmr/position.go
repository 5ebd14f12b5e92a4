// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"math/bits"
)

// Nodes are laid out in post-order: a parent is written right after its right child.
// Positions are 0-based.
//
//	height
//	  2          6
//	           /   \
//	  1       2     5      9
//	         / \   / \    / \
//	  0     0   1 3   4  7   8  10
//
// The number of leaves alone determines the set of peaks: there is one peak of
// height h for every bit h set in the leaf count.

// MaxLeafCount bounds the leaf count so that every position fits in uint64.
const MaxLeafCount = uint64(1) << 62

// LeafIndexToPos returns the position of the leaf with the given index.
func LeafIndexToPos(index uint64) (uint64, error) {
	if index >= MaxLeafCount {
		return 0, errorf(KindInvalidNumericOp, "leaf index %d out of range", index)
	}
	// mmr size before the leaf, which is also the position of the leaf
	return 2*index - uint64(bits.OnesCount64(index)), nil
}

// LeafCountToMMRSize returns the number of nodes of an MMR with n leaves.
func LeafCountToMMRSize(n uint64) (uint64, error) {
	if n > MaxLeafCount {
		return 0, errorf(KindInvalidNumericOp, "leaf count %d out of range", n)
	}
	return 2*n - uint64(bits.OnesCount64(n)), nil
}

// LeafIndexToMMRSize returns the number of nodes right after the leaf with the given
// index is appended.
func LeafIndexToMMRSize(index uint64) (uint64, error) {
	if index >= MaxLeafCount {
		return 0, errorf(KindInvalidNumericOp, "leaf index %d out of range", index)
	}
	return LeafCountToMMRSize(index + 1)
}

// PosHeightInTree returns the height of the node at pos, leaves are of height 0.
func PosHeightInTree(pos uint64) uint32 {
	pos++
	for !allOnes(pos) {
		pos = jumpLeft(pos)
	}
	return uint32(64 - bits.LeadingZeros64(pos) - 1)
}

// SiblingOffset is the distance between a node of the given height and its sibling.
func SiblingOffset(height uint32) uint64 {
	return (2 << height) - 1
}

// ParentOffset is the distance between a left child of the given height and its parent.
func ParentOffset(height uint32) uint64 {
	return 2 << height
}

func allOnes(n uint64) bool {
	return n != 0 && bits.OnesCount64(n) == 64-bits.LeadingZeros64(n)
}

// jumpLeft moves to the node of the same height in the leftmost tree.
func jumpLeft(pos uint64) uint64 {
	bitLength := 64 - bits.LeadingZeros64(pos)
	mostSignificantBits := uint64(1) << (bitLength - 1)
	return pos - (mostSignificantBits - 1)
}

// Peak is the root of one perfect tree of the forest.
type Peak struct {
	Pos    uint64
	Height uint32
}

// FirstPos returns the position of the leftmost node of the peak's tree.
func (p Peak) FirstPos() uint64 {
	return p.Pos + 1 - (uint64(2) << p.Height) + 1
}

func peaksOf(leafCount uint64) []Peak {
	var (
		peaks  []Peak
		offset uint64
	)
	for h := 63; h >= 0; h-- {
		if leafCount&(uint64(1)<<h) == 0 {
			continue
		}
		size := (uint64(2) << h) - 1
		offset += size
		peaks = append(peaks, Peak{Pos: offset - 1, Height: uint32(h)})
	}
	return peaks
}

// GetPeaks returns the peaks of an MMR with leafCount leaves, highest first.
func GetPeaks(leafCount uint64) ([]Peak, error) {
	if leafCount > MaxLeafCount {
		return nil, errorf(KindInvalidNumericOp, "leaf count %d out of range", leafCount)
	}
	return peaksOf(leafCount), nil
}

// PeakIndexForLeaf returns the index into GetPeaks(leafCount) of the peak containing
// the leaf. It is derived from the bits of leafCount: peaks cover leaf ranges of
// decreasing power of two sizes, left to right.
func PeakIndexForLeaf(leafIndex, leafCount uint64) (int, error) {
	if leafIndex >= leafCount {
		return 0, errorf(KindLeafNotFound, "leaf index %d, leaf count %d", leafIndex, leafCount)
	}
	// the leaves before the containing peak are the common high bits of index and count,
	// so the peak is the highest bit where they differ.
	diff := leafIndex ^ leafCount
	h := 63 - bits.LeadingZeros64(diff)
	// peaks above height h are the set bits of leafCount above h
	return bits.OnesCount64(leafCount >> (h + 1)), nil
}
