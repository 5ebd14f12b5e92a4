// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"github.com/vechain/mmrledger/thor"
)

// LeafProof proves that a set of leaves belongs to an MMR of LeafCount leaves.
type LeafProof struct {
	// LeafIndices are the proven leaf indices, strictly increasing.
	LeafIndices []uint64 `json:"leafIndices"`
	LeafCount   uint64   `json:"leafCount"`
	// Items are the sibling hashes needed to climb to the peaks, in peak order
	// then bottom-up.
	Items []thor.Bytes32 `json:"items"`
	// Peaks are the hashes of the peaks not containing any proven leaf, highest first.
	Peaks []thor.Bytes32 `json:"peaks"`
}

// Bytes returns the RLP encoding of the proof.
func (p *LeafProof) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(p)
}

// DecodeLeafProof decodes an RLP encoded proof.
func DecodeLeafProof(data []byte) (*LeafProof, error) {
	var p LeafProof
	if err := rlp.DecodeBytes(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type queued struct {
	pos    uint64
	hash   thor.Bytes32
	height uint32
}

// siblingAndParent returns the positions of the sibling and the parent of the node
// at pos of the given height, and whether the node is a right child.
func siblingAndParent(pos uint64, height uint32) (sibling, parent uint64, right bool) {
	if PosHeightInTree(pos+1) > height {
		return pos - SiblingOffset(height), pos + 1, true
	}
	return pos + SiblingOffset(height), pos + ParentOffset(height), false
}

// GenerateProof generates a proof of the given leaves against the current root.
func (m *MMR) GenerateProof(indices []uint64) (*LeafProof, error) {
	return m.GenerateProofAt(indices, m.leafCount)
}

// GenerateProofAt generates a proof of the given leaves against the root the MMR had
// with leafCount leaves. Indices are sorted and deduplicated.
func (m *MMR) GenerateProofAt(indices []uint64, leafCount uint64) (*LeafProof, error) {
	if len(indices) == 0 {
		return nil, errorf(KindGenerateProof, "no leaf to prove")
	}
	if leafCount > m.leafCount {
		return nil, errorf(KindInvalidBestKnownLeafCount, "best known leaf count %d exceeds %d", leafCount, m.leafCount)
	}
	indices = slices.Compact(slices.Sorted(slices.Values(indices)))
	if last := indices[len(indices)-1]; last >= leafCount {
		return nil, errorf(KindLeafNotFound, "leaf index %d, leaf count %d", last, leafCount)
	}

	proof := &LeafProof{
		LeafIndices: indices,
		LeafCount:   leafCount,
	}
	err := forEachPeak(indices, leafCount, func(peak Peak, positions []uint64) error {
		if len(positions) == 0 {
			h, err := m.getNode(peak.Pos)
			if err != nil {
				return err
			}
			proof.Peaks = append(proof.Peaks, h)
			return nil
		}
		return m.genPeakProof(peak, positions, &proof.Items)
	})
	if err != nil {
		return nil, reclassify(KindGenerateProof, err)
	}
	return proof, nil
}

// forEachPeak splits sorted leaf indices by the peak containing them, and calls fn
// for every peak in order with the positions of its leaves.
func forEachPeak(indices []uint64, leafCount uint64, fn func(peak Peak, positions []uint64) error) error {
	var (
		firstLeaf uint64
		i         int
	)
	for _, peak := range peaksOf(leafCount) {
		end := firstLeaf + uint64(1)<<peak.Height
		var positions []uint64
		for ; i < len(indices) && indices[i] < end; i++ {
			pos, err := LeafIndexToPos(indices[i])
			if err != nil {
				return err
			}
			positions = append(positions, pos)
		}
		if err := fn(peak, positions); err != nil {
			return err
		}
		firstLeaf = end
	}
	return nil
}

func (m *MMR) genPeakProof(peak Peak, positions []uint64, items *[]thor.Bytes32) error {
	queue := make([]queued, 0, len(positions))
	for _, pos := range positions {
		queue = append(queue, queued{pos: pos})
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.pos == peak.Pos {
			if len(queue) > 0 {
				return errorf(KindGenerateProof, "unexpected nodes above peak %d", peak.Pos)
			}
			break
		}
		sibling, parent, _ := siblingAndParent(n.pos, n.height)
		if len(queue) > 0 && queue[0].pos == sibling {
			queue = queue[1:]
		} else {
			h, err := m.getNode(sibling)
			if err != nil {
				return err
			}
			*items = append(*items, h)
		}
		queue = append(queue, queued{pos: parent, height: n.height + 1})
	}
	return nil
}

// VerifyProof verifies leaves against the root the MMR had with proof.LeafCount leaves.
func (m *MMR) VerifyProof(leaves []Node, proof *LeafProof) error {
	root, err := m.RootAt(proof.LeafCount)
	if err != nil {
		return err
	}
	return VerifyProof(m.hasher, root, leaves, proof)
}

// VerifyProof verifies that leaves, matched in order with proof.LeafIndices, belong to
// the MMR of the given root. It needs nothing but its arguments.
func VerifyProof(hasher thor.Hasher, root thor.Bytes32, leaves []Node, proof *LeafProof) error {
	if proof == nil {
		return errorf(KindVerify, "nil proof")
	}
	if proof.LeafCount > MaxLeafCount {
		return errorf(KindInvalidNumericOp, "leaf count %d out of range", proof.LeafCount)
	}
	if len(leaves) == 0 {
		return errorf(KindVerify, "no leaf to verify")
	}
	if len(leaves) != len(proof.LeafIndices) {
		return errorf(KindVerify, "%d leaves for %d indices", len(leaves), len(proof.LeafIndices))
	}
	for i, index := range proof.LeafIndices {
		if index >= proof.LeafCount {
			return errorf(KindVerify, "leaf index %d, leaf count %d", index, proof.LeafCount)
		}
		if i > 0 && index <= proof.LeafIndices[i-1] {
			return errorf(KindVerify, "leaf indices not strictly increasing")
		}
	}

	hashes := make([]thor.Bytes32, len(leaves))
	for i, leaf := range leaves {
		if el, ok := leaf.Leaf().(*EncodedLeaf); ok {
			if err := el.CheckForms(hasher); err != nil {
				return newError(KindVerify, errors.WithMessagef(err, "leaf %d", proof.LeafIndices[i]))
			}
		}
		h, err := leaf.Hash(hasher)
		if err != nil {
			return newError(KindVerify, err)
		}
		hashes[i] = h
	}

	var (
		peakHashes []thor.Bytes32
		items      = proof.Items
		peaks      = proof.Peaks
		next       int
	)
	err := forEachPeak(proof.LeafIndices, proof.LeafCount, func(peak Peak, positions []uint64) error {
		if len(positions) == 0 {
			if len(peaks) == 0 {
				return errorf(KindVerify, "missing peak %d", peak.Pos)
			}
			peakHashes = append(peakHashes, peaks[0])
			peaks = peaks[1:]
			return nil
		}
		queue := make([]queued, 0, len(positions))
		for _, pos := range positions {
			queue = append(queue, queued{pos: pos, hash: hashes[next]})
			next++
		}
		h, err := calcPeakRoot(hasher, peak, queue, &items)
		if err != nil {
			return err
		}
		peakHashes = append(peakHashes, h)
		return nil
	})
	if err != nil {
		return reclassify(KindVerify, err)
	}
	if len(items) > 0 || len(peaks) > 0 {
		return errorf(KindVerify, "%d unused items, %d unused peaks", len(items), len(peaks))
	}
	if got := BagPeaks(hasher, peakHashes); got != root {
		return errorf(KindVerify, "root mismatch, want %v got %v", root, got)
	}
	return nil
}

func calcPeakRoot(hasher thor.Hasher, peak Peak, queue []queued, items *[]thor.Bytes32) (thor.Bytes32, error) {
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.pos == peak.Pos {
			if len(queue) > 0 {
				return thor.Bytes32{}, errorf(KindVerify, "unexpected nodes above peak %d", peak.Pos)
			}
			return n.hash, nil
		}

		sibling, parent, right := siblingAndParent(n.pos, n.height)
		var sibHash thor.Bytes32
		if len(queue) > 0 && queue[0].pos == sibling {
			sibHash = queue[0].hash
			queue = queue[1:]
		} else {
			if len(*items) == 0 {
				return thor.Bytes32{}, errorf(KindVerify, "missing sibling of node %d", n.pos)
			}
			sibHash = (*items)[0]
			*items = (*items)[1:]
		}
		var h thor.Bytes32
		if right {
			h = merge(hasher, sibHash, n.hash)
		} else {
			h = merge(hasher, n.hash, sibHash)
		}
		if parent > peak.Pos {
			return thor.Bytes32{}, errorf(KindVerify, "node %d climbs over peak %d", parent, peak.Pos)
		}
		queue = append(queue, queued{pos: parent, hash: h, height: n.height + 1})
	}
	return thor.Bytes32{}, errorf(KindVerify, "peak %d not reached", peak.Pos)
}
