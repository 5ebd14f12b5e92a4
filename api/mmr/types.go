// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/mmr"
	"github.com/vechain/mmrledger/thor"
)

// Leaf is a leaf in both of its encodings. Compact is omitted when it equals Full.
type Leaf struct {
	Full    hexutil.Bytes `json:"full"`
	Compact hexutil.Bytes `json:"compact,omitempty"`
}

func ConvertLeaf(el *mmr.EncodedLeaf) *Leaf {
	return &Leaf{Full: el.Full, Compact: el.Compact}
}

func ConvertLeaves(leaves []*Leaf) ([]mmr.Leaf, error) {
	out := make([]mmr.Leaf, 0, len(leaves))
	for i, l := range leaves {
		if l == nil {
			return nil, errors.Errorf("leaves[%d]: null leaf", i)
		}
		out = append(out, &mmr.EncodedLeaf{Full: l.Full, Compact: l.Compact})
	}
	return out, nil
}

type Root struct {
	Root      thor.Bytes32 `json:"root"`
	LeafCount uint64       `json:"leafCount"`
}

type AppendRequest struct {
	Leaves []hexutil.Bytes `json:"leaves"`
}

type AppendResponse struct {
	Indices   []uint64     `json:"indices"`
	Root      thor.Bytes32 `json:"root"`
	LeafCount uint64       `json:"leafCount"`
}

type ProofRequest struct {
	Indices            []uint64 `json:"indices"`
	BestKnownLeafCount *uint64  `json:"bestKnownLeafCount,omitempty"`
}

type ProofResponse struct {
	Leaves []*Leaf        `json:"leaves"`
	Proof  *mmr.LeafProof `json:"proof"`
}

type VerifyRequest struct {
	Leaves []*Leaf        `json:"leaves"`
	Proof  *mmr.LeafProof `json:"proof"`
}

type VerifyStatelessRequest struct {
	Root   thor.Bytes32   `json:"root"`
	Leaves []*Leaf        `json:"leaves"`
	Proof  *mmr.LeafProof `json:"proof"`
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type AncestryVerifyRequest struct {
	PrevRoot thor.Bytes32       `json:"prevRoot"`
	Root     thor.Bytes32       `json:"root"`
	Proof    *mmr.AncestryProof `json:"proof"`
}
