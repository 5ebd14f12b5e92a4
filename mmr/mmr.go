// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package mmr implements a Merkle Mountain Range: an append-only accumulator
// with succinct membership and ancestry proofs.
package mmr

import (
	"github.com/pkg/errors"
	"github.com/vechain/mmrledger/thor"
)

// MMR is a Merkle Mountain Range over a node store.
//
// Nodes created by Push are kept in memory until Commit. The MMR is not safe for
// concurrent use.
type MMR struct {
	store     NodeStore
	hasher    thor.Hasher
	leafCount uint64

	committedSize   uint64
	committedLeaves uint64
	batch           []thor.Bytes32
}

// New creates an MMR over store, which must already hold all nodes of an MMR with
// leafCount leaves.
func New(store NodeStore, hasher thor.Hasher, leafCount uint64) (*MMR, error) {
	size, err := LeafCountToMMRSize(leafCount)
	if err != nil {
		return nil, err
	}
	return &MMR{
		store:           store,
		hasher:          hasher,
		leafCount:       leafCount,
		committedSize:   size,
		committedLeaves: leafCount,
	}, nil
}

// Hasher returns the hasher of the MMR.
func (m *MMR) Hasher() thor.Hasher { return m.hasher }

// LeafCount returns the number of leaves, including uncommitted ones.
func (m *MMR) LeafCount() uint64 { return m.leafCount }

// Size returns the number of nodes, including uncommitted ones.
func (m *MMR) Size() uint64 { return m.committedSize + uint64(len(m.batch)) }

// Dirty reports whether there are uncommitted nodes.
func (m *MMR) Dirty() bool { return len(m.batch) > 0 }

func (m *MMR) getNode(pos uint64) (thor.Bytes32, error) {
	if pos >= m.committedSize {
		i := pos - m.committedSize
		if i >= uint64(len(m.batch)) {
			return thor.Bytes32{}, errors.Errorf("node %d beyond mmr size %d", pos, m.Size())
		}
		return m.batch[i], nil
	}
	h, ok, err := m.store.Get(pos)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if !ok {
		return thor.Bytes32{}, errors.Errorf("missing node %d", pos)
	}
	return h, nil
}

// Push appends a leaf and returns its index.
func (m *MMR) Push(leaf Leaf) (uint64, error) {
	if m.leafCount >= MaxLeafCount {
		return 0, errorf(KindInvalidNumericOp, "leaf count %d reaches the limit", m.leafCount)
	}
	h, err := DataNode(leaf).Hash(m.hasher)
	if err != nil {
		return 0, newError(KindPush, errors.WithMessage(err, "hash leaf"))
	}

	var (
		pos      = m.Size()
		batchLen = len(m.batch)
		height   uint32
	)
	m.batch = append(m.batch, h)
	// merge while the next position is a parent
	for PosHeightInTree(pos+1) > height {
		pos++
		left, err := m.getNode(pos - ParentOffset(height))
		if err != nil {
			m.batch = m.batch[:batchLen]
			return 0, newError(KindPush, err)
		}
		h = merge(m.hasher, left, h)
		m.batch = append(m.batch, h)
		height++
	}
	index := m.leafCount
	m.leafCount++
	return index, nil
}

func (m *MMR) peakHashes(peaks []Peak) ([]thor.Bytes32, error) {
	hashes := make([]thor.Bytes32, 0, len(peaks))
	for _, p := range peaks {
		h, err := m.getNode(p.Pos)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

// Root returns the current root.
func (m *MMR) Root() (thor.Bytes32, error) {
	return m.RootAt(m.leafCount)
}

// RootAt returns the root the MMR had when it held leafCount leaves.
func (m *MMR) RootAt(leafCount uint64) (thor.Bytes32, error) {
	if leafCount > m.leafCount {
		return thor.Bytes32{}, errorf(KindInvalidBestKnownLeafCount, "leaf count %d exceeds %d", leafCount, m.leafCount)
	}
	hashes, err := m.peakHashes(peaksOf(leafCount))
	if err != nil {
		return thor.Bytes32{}, newError(KindGetRoot, err)
	}
	return BagPeaks(m.hasher, hashes), nil
}

// Commit writes the nodes created since the last commit to the store.
func (m *MMR) Commit() error {
	if len(m.batch) == 0 {
		return nil
	}
	if err := m.store.Append(m.committedSize, m.batch); err != nil {
		return newError(KindCommit, err)
	}
	m.committedSize += uint64(len(m.batch))
	m.committedLeaves = m.leafCount
	m.batch = nil
	return nil
}

// Discard drops the nodes and leaves added since the last commit.
func (m *MMR) Discard() {
	m.batch = nil
	m.leafCount = m.committedLeaves
}
