// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"fmt"
	"strings"
)

// Hasher is a fixed output hash function. The accumulator treats it as a black box.
type Hasher interface {
	Name() string
	// Hash hashes the concatenation of data.
	Hash(data ...[]byte) Bytes32
}

type hasherFunc struct {
	name string
	fn   func(data ...[]byte) Bytes32
}

func (h *hasherFunc) Name() string { return h.name }

func (h *hasherFunc) Hash(data ...[]byte) Bytes32 { return h.fn(data...) }

var (
	// Blake2bHasher is the default hasher.
	Blake2bHasher Hasher = &hasherFunc{"blake2b", Blake2b}
	// Keccak256Hasher hashes with legacy keccak-256.
	Keccak256Hasher Hasher = &hasherFunc{"keccak256", Keccak256}
)

// HasherByName returns the hasher registered with the given name.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", "blake2b":
		return Blake2bHasher, nil
	case "keccak", "keccak256":
		return Keccak256Hasher, nil
	}
	return nil, fmt.Errorf("unsupported hasher %q", name)
}
