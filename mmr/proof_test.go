// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vechain/mmrledger/thor"
)

func nodesOf(leaves []Leaf, indices []uint64) []Node {
	nodes := make([]Node, 0, len(indices))
	for _, i := range indices {
		nodes = append(nodes, DataNode(leaves[i]))
	}
	return nodes
}

func TestProofScenario(t *testing.T) {
	m, err := New(NewMemStore(), hasher, 0)
	require.NoError(t, err)
	for _, s := range []string{"a", "b", "c"} {
		_, err := m.Push(OpaqueLeaf(s))
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(3), m.LeafCount())

	proof, err := m.GenerateProof([]uint64{1})
	require.NoError(t, err)
	assert.Equal(t, []thor.Bytes32{hasher.Hash([]byte("a"))}, proof.Items)
	assert.Equal(t, []thor.Bytes32{hasher.Hash([]byte("c"))}, proof.Peaks)

	root, err := m.Root()
	require.NoError(t, err)
	leaves := []Node{DataNode(OpaqueLeaf("b"))}
	assert.NoError(t, VerifyProof(hasher, root, leaves, proof))
	assert.NoError(t, m.VerifyProof(leaves, proof))

	root2, err := m.RootAt(2)
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyProof(hasher, root2, leaves, proof), ErrVerify)
}

func TestProofRoundTrip(t *testing.T) {
	for n := 1; n <= 13; n++ {
		m, leaves := newTestMMR(t, n)
		root, err := m.Root()
		require.NoError(t, err)

		// every subset of leaves
		for set := 1; set < 1<<n; set++ {
			var indices []uint64
			for i := range n {
				if set&(1<<i) != 0 {
					indices = append(indices, uint64(i))
				}
			}
			proof, err := m.GenerateProof(indices)
			require.NoError(t, err)
			require.NoError(t, VerifyProof(hasher, root, nodesOf(leaves, indices), proof), "n %d indices %v", n, indices)
		}
	}
}

func TestProofWithHashedLeaves(t *testing.T) {
	m, leaves := newTestMMR(t, 9)
	root, _ := m.Root()

	proof, err := m.GenerateProof([]uint64{2, 8})
	require.NoError(t, err)
	h, _ := DataNode(leaves[2]).Hash(hasher)
	assert.NoError(t, VerifyProof(hasher, root, []Node{HashNode(h), DataNode(leaves[8])}, proof))
}

func TestGenerateProofErrors(t *testing.T) {
	m, _ := newTestMMR(t, 5)

	_, err := m.GenerateProof(nil)
	assert.ErrorIs(t, err, ErrGenerateProof)

	_, err = m.GenerateProof([]uint64{5})
	assert.ErrorIs(t, err, ErrLeafNotFound)

	_, err = m.GenerateProofAt([]uint64{1}, 6)
	assert.ErrorIs(t, err, ErrInvalidBestKnownLeafCount)

	_, err = m.GenerateProofAt([]uint64{3}, 3)
	assert.ErrorIs(t, err, ErrLeafNotFound)
}

func TestGenerateProofNormalizesIndices(t *testing.T) {
	m, leaves := newTestMMR(t, 11)
	root, _ := m.Root()

	proof, err := m.GenerateProof([]uint64{7, 2, 7, 0})
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 2, 7}, proof.LeafIndices)
	assert.NoError(t, VerifyProof(hasher, root, nodesOf(leaves, proof.LeafIndices), proof))
}

func TestTamperDetection(t *testing.T) {
	m, leaves := newTestMMR(t, 21)
	root, _ := m.Root()
	indices := []uint64{3, 4, 17}
	nodes := nodesOf(leaves, indices)

	proof, err := m.GenerateProof(indices)
	require.NoError(t, err)
	require.NoError(t, VerifyProof(hasher, root, nodes, proof))

	for i := range proof.Items {
		for b := range 32 {
			tampered := *proof
			tampered.Items = append([]thor.Bytes32(nil), proof.Items...)
			tampered.Items[i][b] ^= 0x01
			assert.ErrorIs(t, VerifyProof(hasher, root, nodes, &tampered), ErrVerify)
		}
	}
	for i := range proof.Peaks {
		tampered := *proof
		tampered.Peaks = append([]thor.Bytes32(nil), proof.Peaks...)
		tampered.Peaks[i][0] ^= 0x80
		assert.ErrorIs(t, VerifyProof(hasher, root, nodes, &tampered), ErrVerify)
	}

	otherRoot := root
	otherRoot[31]++
	assert.ErrorIs(t, VerifyProof(hasher, otherRoot, nodes, proof), ErrVerify)

	swapped := []Node{nodes[1], nodes[0], nodes[2]}
	assert.ErrorIs(t, VerifyProof(hasher, root, swapped, proof), ErrVerify)
}

func TestMalformedProofs(t *testing.T) {
	m, leaves := newTestMMR(t, 12)
	root, _ := m.Root()
	indices := []uint64{1, 9}
	nodes := nodesOf(leaves, indices)
	proof, err := m.GenerateProof(indices)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(p *LeafProof) []Node
	}{
		{"extra item", func(p *LeafProof) []Node {
			p.Items = append(p.Items, thor.Bytes32{})
			return nodes
		}},
		{"missing item", func(p *LeafProof) []Node {
			p.Items = p.Items[:len(p.Items)-1]
			return nodes
		}},
		{"extra peak", func(p *LeafProof) []Node {
			p.Peaks = append(p.Peaks, thor.Bytes32{})
			return nodes
		}},
		{"leaf count mismatch", func(p *LeafProof) []Node {
			p.LeafCount = 13
			return nodes
		}},
		{"too few leaves", func(p *LeafProof) []Node {
			return nodes[:1]
		}},
		{"index out of range", func(p *LeafProof) []Node {
			p.LeafIndices = []uint64{1, 12}
			return nodes
		}},
		{"unsorted indices", func(p *LeafProof) []Node {
			p.LeafIndices = []uint64{9, 1}
			return []Node{nodes[1], nodes[0]}
		}},
		{"no leaves", func(p *LeafProof) []Node {
			p.LeafIndices = nil
			return nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := *proof
			p.Items = append([]thor.Bytes32(nil), proof.Items...)
			p.Peaks = append([]thor.Bytes32(nil), proof.Peaks...)
			leaves := tt.mutate(&p)
			assert.ErrorIs(t, VerifyProof(hasher, root, leaves, &p), ErrVerify)
		})
	}

	assert.ErrorIs(t, VerifyProof(hasher, root, nodes, nil), ErrVerify)
	p := *proof
	p.LeafCount = MaxLeafCount + 1
	assert.ErrorIs(t, VerifyProof(hasher, root, nodes, &p), ErrInvalidNumericOp)
}

func TestHistoricalProofStability(t *testing.T) {
	m, leaves := newTestMMR(t, 6)
	oldRoot, _ := m.Root()
	proof, err := m.GenerateProof([]uint64{0, 5})
	require.NoError(t, err)

	for i := 6; i < 30; i++ {
		_, err := m.Push(leafOf(i))
		require.NoError(t, err)
		leaves = append(leaves, leafOf(i))
	}
	require.NoError(t, m.Commit())
	nodes := nodesOf(leaves, []uint64{0, 5})

	// still valid against the root it was made for
	assert.NoError(t, VerifyProof(hasher, oldRoot, nodes, proof))
	assert.NoError(t, m.VerifyProof(nodes, proof))

	current, _ := m.Root()
	assert.ErrorIs(t, VerifyProof(hasher, current, nodes, proof), ErrVerify)

	// a proof at the old leaf count made later is the same proof
	again, err := m.GenerateProofAt([]uint64{0, 5}, 6)
	require.NoError(t, err)
	assert.Equal(t, proof, again)
}

func TestProofEncoding(t *testing.T) {
	m, _ := newTestMMR(t, 7)
	proof, err := m.GenerateProof([]uint64{2, 6})
	require.NoError(t, err)

	data, err := proof.Bytes()
	require.NoError(t, err)
	decoded, err := DecodeLeafProof(data)
	require.NoError(t, err)
	assert.Equal(t, proof, decoded)

	js, err := json.Marshal(proof)
	require.NoError(t, err)
	var fromJSON LeafProof
	require.NoError(t, json.Unmarshal(js, &fromJSON))
	assert.Equal(t, proof, &fromJSON)
}

func TestVerifyBatch(t *testing.T) {
	m, leaves := newTestMMR(t, 16)
	root, _ := m.Root()

	var jobs []VerifyJob
	for i := range uint64(16) {
		proof, err := m.GenerateProof([]uint64{i})
		require.NoError(t, err)
		jobs = append(jobs, VerifyJob{Root: root, Leaves: nodesOf(leaves, []uint64{i}), Proof: proof})
	}
	jobs[5].Leaves = nodesOf(leaves, []uint64{6})

	errs := VerifyBatch(context.Background(), hasher, jobs)
	for i, err := range errs {
		if i == 5 {
			assert.ErrorIs(t, err, ErrVerify)
		} else {
			assert.NoError(t, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range VerifyBatch(ctx, hasher, jobs) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
