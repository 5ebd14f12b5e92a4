// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vechain/mmrledger/thor"
)

// PosHash is a node hash at a position.
type PosHash struct {
	Pos  uint64       `json:"pos"`
	Hash thor.Bytes32 `json:"hash"`
}

// AncestryProof proves that the MMR of PrevLeafCount leaves is a prefix of the MMR of
// LeafCount leaves.
type AncestryProof struct {
	PrevPeaks     []thor.Bytes32 `json:"prevPeaks"`
	PrevLeafCount uint64         `json:"prevLeafCount"`
	LeafCount     uint64         `json:"leafCount"`
	Items         []PosHash      `json:"items"`
}

// Bytes returns the RLP encoding of the proof.
func (p *AncestryProof) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(p)
}

// DecodeAncestryProof decodes an RLP encoded proof.
func DecodeAncestryProof(data []byte) (*AncestryProof, error) {
	var p AncestryProof
	if err := rlp.DecodeBytes(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GenerateAncestryProof proves the MMR of prevLeafCount leaves is a prefix of the current one.
func (m *MMR) GenerateAncestryProof(prevLeafCount uint64) (*AncestryProof, error) {
	return m.GenerateAncestryProofAt(prevLeafCount, m.leafCount)
}

// GenerateAncestryProofAt proves the MMR of prevLeafCount leaves is a prefix of the
// MMR of leafCount leaves.
func (m *MMR) GenerateAncestryProofAt(prevLeafCount, leafCount uint64) (*AncestryProof, error) {
	if leafCount > m.leafCount {
		return nil, errorf(KindInvalidBestKnownLeafCount, "best known leaf count %d exceeds %d", leafCount, m.leafCount)
	}
	if prevLeafCount > leafCount {
		return nil, errorf(KindGenerateProof, "previous leaf count %d exceeds %d", prevLeafCount, leafCount)
	}

	prevPeaks := peaksOf(prevLeafCount)
	prevHashes, err := m.peakHashes(prevPeaks)
	if err != nil {
		return nil, newError(KindGenerateProof, err)
	}

	proof := &AncestryProof{
		PrevPeaks:     prevHashes,
		PrevLeafCount: prevLeafCount,
		LeafCount:     leafCount,
	}
	size, _ := LeafCountToMMRSize(leafCount)
	_, _, err = climb(m.hasher, prevPeaks, prevHashes, peaksOf(leafCount), size, func(pos uint64) (thor.Bytes32, error) {
		h, err := m.getNode(pos)
		if err != nil {
			return thor.Bytes32{}, err
		}
		proof.Items = append(proof.Items, PosHash{pos, h})
		return h, nil
	})
	if err != nil {
		return nil, reclassify(KindGenerateProof, err)
	}
	return proof, nil
}

// VerifyAncestryProof verifies that the MMR of prevRoot is a prefix of the MMR of root.
func VerifyAncestryProof(hasher thor.Hasher, prevRoot, root thor.Bytes32, proof *AncestryProof) error {
	if proof == nil {
		return errorf(KindVerify, "nil proof")
	}
	if proof.LeafCount > MaxLeafCount {
		return errorf(KindInvalidNumericOp, "leaf count %d out of range", proof.LeafCount)
	}
	if proof.PrevLeafCount > proof.LeafCount {
		return errorf(KindVerify, "previous leaf count %d exceeds %d", proof.PrevLeafCount, proof.LeafCount)
	}
	prevPeaks := peaksOf(proof.PrevLeafCount)
	if len(prevPeaks) != len(proof.PrevPeaks) {
		return errorf(KindVerify, "%d previous peaks, want %d", len(proof.PrevPeaks), len(prevPeaks))
	}
	if got := BagPeaks(hasher, proof.PrevPeaks); got != prevRoot {
		return errorf(KindVerify, "previous root mismatch, want %v got %v", prevRoot, got)
	}

	items := make(map[uint64]thor.Bytes32, len(proof.Items))
	for _, item := range proof.Items {
		if _, dup := items[item.Pos]; dup {
			return errorf(KindVerify, "duplicated item at %d", item.Pos)
		}
		items[item.Pos] = item.Hash
	}

	size, _ := LeafCountToMMRSize(proof.LeafCount)
	peakHashes, tracked, err := climb(hasher, prevPeaks, proof.PrevPeaks, peaksOf(proof.LeafCount), size, func(pos uint64) (thor.Bytes32, error) {
		h, ok := items[pos]
		if !ok {
			return thor.Bytes32{}, errorf(KindVerify, "missing item at %d", pos)
		}
		delete(items, pos)
		return h, nil
	})
	if err != nil {
		return reclassify(KindVerify, err)
	}
	for pos := range items {
		if _, ok := tracked[pos]; ok {
			return errorf(KindVerify, "item at %d conflicts with a computed node", pos)
		}
	}
	if len(items) > 0 {
		return errorf(KindVerify, "%d unused items", len(items))
	}
	if got := BagPeaks(hasher, peakHashes); got != root {
		return errorf(KindVerify, "root mismatch, want %v got %v", root, got)
	}
	return nil
}

// climb computes the current peaks from the previous ones. Nodes are combined level
// by level, left to right; fetch supplies every hash that cannot be computed.
// It returns the current peak hashes and all computed nodes.
func climb(
	hasher thor.Hasher,
	prevPeaks []Peak,
	prevHashes []thor.Bytes32,
	peaks []Peak,
	size uint64,
	fetch func(pos uint64) (thor.Bytes32, error),
) ([]thor.Bytes32, map[uint64]thor.Bytes32, error) {
	var (
		tracked = make(map[uint64]thor.Bytes32)
		levels  [64][]uint64
		isPeak  = make(map[uint64]bool, len(peaks))
	)
	for _, p := range peaks {
		isPeak[p.Pos] = true
	}
	for i, p := range prevPeaks {
		tracked[p.Pos] = prevHashes[i]
		levels[p.Height] = append(levels[p.Height], p.Pos)
	}

	for height := range uint32(len(levels)) {
		level := levels[height]
		slices.Sort(level)
		consumed := make(map[uint64]bool)
		for _, pos := range level {
			if consumed[pos] || isPeak[pos] {
				continue
			}
			sibling, parent, right := siblingAndParent(pos, height)
			if parent >= size || int(height)+1 >= len(levels) {
				return nil, nil, errorf(KindVerify, "node %d climbs beyond the mmr", pos)
			}
			sibHash, ok := tracked[sibling]
			if ok {
				consumed[sibling] = true
			} else {
				h, err := fetch(sibling)
				if err != nil {
					return nil, nil, err
				}
				sibHash = h
			}
			if right {
				tracked[parent] = merge(hasher, sibHash, tracked[pos])
			} else {
				tracked[parent] = merge(hasher, tracked[pos], sibHash)
			}
			levels[height+1] = append(levels[height+1], parent)
		}
	}

	hashes := make([]thor.Bytes32, 0, len(peaks))
	for _, p := range peaks {
		if h, ok := tracked[p.Pos]; ok {
			hashes = append(hashes, h)
			continue
		}
		h, err := fetch(p.Pos)
		if err != nil {
			return nil, nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, tracked, nil
}
