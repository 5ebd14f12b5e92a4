// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/rand/v2"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func BenchmarkHash(b *testing.B) {
	data := make([]byte, 64)

	rng := rand.New(rand.NewPCG(1, 0)) //#nosec G404
	for i := range data {
		data[i] = byte(rng.Uint64())
	}

	b.Run("blake2b", func(b *testing.B) {
		for b.Loop() {
			Blake2b(data[:32], data[32:])
		}
	})
	b.Run("keccak", func(b *testing.B) {
		for b.Loop() {
			Keccak256(data[:32], data[32:])
		}
	})
}

func TestHashConcat(t *testing.T) {
	a, b := []byte("left"), []byte("right")

	assert.Equal(t, Blake2b(append(append([]byte{}, a...), b...)), Blake2b(a, b))
	assert.Equal(t, Bytes32(crypto.Keccak256Hash(a, b)), Keccak256(a, b))
	assert.NotEqual(t, Blake2b(a, b), Blake2b(b, a))
}

func TestHasherByName(t *testing.T) {
	h, err := HasherByName("")
	assert.NoError(t, err)
	assert.Equal(t, "blake2b", h.Name())
	assert.Equal(t, Blake2b([]byte("x")), h.Hash([]byte("x")))

	h, err = HasherByName("Keccak256")
	assert.NoError(t, err)
	assert.Equal(t, Keccak256([]byte("x")), h.Hash([]byte("x")))

	_, err = HasherByName("sha1")
	assert.EqualError(t, err, `unsupported hasher "sha1"`)
}
