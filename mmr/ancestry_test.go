// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vechain/mmrledger/thor"
)

func TestAncestryProofRoundTrip(t *testing.T) {
	m, _ := newTestMMR(t, 40)
	for count := uint64(0); count <= 40; count++ {
		root, err := m.RootAt(count)
		require.NoError(t, err)
		for prev := uint64(0); prev <= count; prev++ {
			prevRoot, err := m.RootAt(prev)
			require.NoError(t, err)

			proof, err := m.GenerateAncestryProofAt(prev, count)
			require.NoError(t, err)
			require.NoError(t, VerifyAncestryProof(hasher, prevRoot, root, proof), "prev %d count %d", prev, count)
		}
	}
}

func TestAncestryProofItems(t *testing.T) {
	m, _ := newTestMMR(t, 4)

	// 3 leaves have peaks at 2 and 3, leaf 3 is at 4 and completes the tree at 6
	proof, err := m.GenerateAncestryProofAt(3, 4)
	require.NoError(t, err)
	require.Len(t, proof.Items, 1)
	assert.Equal(t, uint64(4), proof.Items[0].Pos)
	assert.Len(t, proof.PrevPeaks, 2)

	same, err := m.GenerateAncestryProofAt(4, 4)
	require.NoError(t, err)
	assert.Empty(t, same.Items)

	fromEmpty, err := m.GenerateAncestryProofAt(0, 4)
	require.NoError(t, err)
	assert.Empty(t, fromEmpty.PrevPeaks)
	require.Len(t, fromEmpty.Items, 1)
	assert.Equal(t, uint64(6), fromEmpty.Items[0].Pos)
}

func TestAncestryProofErrors(t *testing.T) {
	m, _ := newTestMMR(t, 10)

	_, err := m.GenerateAncestryProofAt(3, 11)
	assert.ErrorIs(t, err, ErrInvalidBestKnownLeafCount)
	_, err = m.GenerateAncestryProofAt(8, 7)
	assert.ErrorIs(t, err, ErrGenerateProof)

	prevRoot, _ := m.RootAt(5)
	root, _ := m.Root()
	proof, err := m.GenerateAncestryProof(5)
	require.NoError(t, err)
	require.NoError(t, VerifyAncestryProof(hasher, prevRoot, root, proof))

	clone := func() *AncestryProof {
		p := *proof
		p.PrevPeaks = append([]thor.Bytes32(nil), proof.PrevPeaks...)
		p.Items = append([]PosHash(nil), proof.Items...)
		return &p
	}

	tests := []struct {
		name   string
		mutate func(p *AncestryProof)
	}{
		{"tampered item", func(p *AncestryProof) { p.Items[0].Hash[3] ^= 1 }},
		{"tampered prev peak", func(p *AncestryProof) { p.PrevPeaks[0][0] ^= 1 }},
		{"missing item", func(p *AncestryProof) { p.Items = p.Items[1:] }},
		{"unused item", func(p *AncestryProof) { p.Items = append(p.Items, PosHash{Pos: 1000}) }},
		{"duplicated item", func(p *AncestryProof) { p.Items = append(p.Items, p.Items[0]) }},
		{"conflicting item", func(p *AncestryProof) { p.Items = append(p.Items, PosHash{Pos: 6}) }},
		{"missing prev peak", func(p *AncestryProof) { p.PrevPeaks = p.PrevPeaks[1:] }},
		{"prev count mismatch", func(p *AncestryProof) { p.PrevLeafCount = 4 }},
		{"prev count above count", func(p *AncestryProof) { p.PrevLeafCount = 11 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := clone()
			tt.mutate(p)
			assert.ErrorIs(t, VerifyAncestryProof(hasher, prevRoot, root, p), ErrVerify)
		})
	}

	assert.ErrorIs(t, VerifyAncestryProof(hasher, prevRoot, thor.Bytes32{}, proof), ErrVerify)
	assert.ErrorIs(t, VerifyAncestryProof(hasher, thor.Bytes32{}, root, proof), ErrVerify)
	assert.ErrorIs(t, VerifyAncestryProof(hasher, prevRoot, root, nil), ErrVerify)
}

func TestAncestryProofEncoding(t *testing.T) {
	m, _ := newTestMMR(t, 9)
	proof, err := m.GenerateAncestryProof(6)
	require.NoError(t, err)

	data, err := proof.Bytes()
	require.NoError(t, err)
	decoded, err := DecodeAncestryProof(data)
	require.NoError(t, err)
	assert.Equal(t, proof, decoded)
}
