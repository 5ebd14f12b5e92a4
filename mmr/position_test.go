// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafIndexToPos(t *testing.T) {
	want := []uint64{0, 1, 3, 4, 7, 8, 10, 11, 15}
	for i, w := range want {
		pos, err := LeafIndexToPos(uint64(i))
		require.NoError(t, err)
		assert.Equal(t, w, pos, "leaf %d", i)
	}

	_, err := LeafIndexToPos(MaxLeafCount)
	assert.ErrorIs(t, err, ErrInvalidNumericOp)
}

func TestLeafCountToMMRSize(t *testing.T) {
	want := []uint64{0, 1, 3, 4, 7, 8, 10, 11, 15, 16}
	for n, w := range want {
		size, err := LeafCountToMMRSize(uint64(n))
		require.NoError(t, err)
		assert.Equal(t, w, size, "leaf count %d", n)
	}
	size, err := LeafIndexToMMRSize(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), size)

	_, err = LeafCountToMMRSize(MaxLeafCount + 1)
	assert.ErrorIs(t, err, ErrInvalidNumericOp)
}

func TestPosHeightInTree(t *testing.T) {
	want := []uint32{0, 0, 1, 0, 0, 1, 2, 0, 0, 1, 0, 0, 1, 2, 3, 0}
	for pos, w := range want {
		assert.Equal(t, w, PosHeightInTree(uint64(pos)), "pos %d", pos)
	}
}

func TestOffsets(t *testing.T) {
	assert.Equal(t, uint64(1), SiblingOffset(0))
	assert.Equal(t, uint64(3), SiblingOffset(1))
	assert.Equal(t, uint64(2), ParentOffset(0))
	assert.Equal(t, uint64(4), ParentOffset(1))
}

func TestGetPeaks(t *testing.T) {
	peaks, err := GetPeaks(7)
	require.NoError(t, err)
	assert.Equal(t, []Peak{{6, 2}, {9, 1}, {10, 0}}, peaks)
	assert.Equal(t, uint64(0), peaks[0].FirstPos())
	assert.Equal(t, uint64(7), peaks[1].FirstPos())
	assert.Equal(t, uint64(10), peaks[2].FirstPos())

	peaks, err = GetPeaks(0)
	require.NoError(t, err)
	assert.Empty(t, peaks)

	_, err = GetPeaks(MaxLeafCount + 1)
	assert.ErrorIs(t, err, ErrInvalidNumericOp)
}

// peak index by scanning leaf ranges
func naivePeakIndex(index, count uint64) int {
	var first uint64
	for i, p := range peaksOf(count) {
		first += uint64(1) << p.Height
		if index < first {
			return i
		}
	}
	return -1
}

func TestPeakIndexForLeaf(t *testing.T) {
	_, err := PeakIndexForLeaf(3, 3)
	assert.ErrorIs(t, err, ErrLeafNotFound)

	f := fuzz.New()
	for range 2000 {
		var count, index uint64
		f.Fuzz(&count)
		f.Fuzz(&index)
		count = count%MaxLeafCount + 1
		index %= count

		got, err := PeakIndexForLeaf(index, count)
		require.NoError(t, err)
		assert.Equal(t, naivePeakIndex(index, count), got, "index %d count %d", index, count)
	}
}

func TestPositionsAgainstLayout(t *testing.T) {
	f := fuzz.New()
	for range 1000 {
		var index uint64
		f.Fuzz(&index)
		index %= MaxLeafCount - 1

		pos, err := LeafIndexToPos(index)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), PosHeightInTree(pos))

		size, err := LeafIndexToMMRSize(index)
		require.NoError(t, err)
		next, err := LeafIndexToPos(index + 1)
		require.NoError(t, err)
		// leaves are followed only by the parents they complete
		assert.Equal(t, next, size)
	}
}
