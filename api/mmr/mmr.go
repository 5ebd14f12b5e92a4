// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/mmrledger/accumulator"
	"github.com/vechain/mmrledger/api/utils"
	"github.com/vechain/mmrledger/mmr"
)

type MMR struct {
	acc *accumulator.Accumulator
}

func New(acc *accumulator.Accumulator) *MMR {
	return &MMR{acc}
}

// convertError maps accumulator errors caused by the request to client errors.
func convertError(err error) error {
	var e *mmr.Error
	if !errors.As(err, &e) {
		return err
	}
	switch e.Kind() {
	case mmr.KindLeafNotFound:
		return utils.NotFound(err)
	case mmr.KindInvalidBestKnownLeafCount, mmr.KindInvalidLeafIndex, mmr.KindInvalidNumericOp, mmr.KindGenerateProof:
		return utils.BadRequest(err)
	}
	return err
}

// verifyResult turns a verification failure into a negative answer.
func verifyResult(w http.ResponseWriter, err error) error {
	if err != nil {
		var e *mmr.Error
		if !errors.As(err, &e) || e.Kind() == mmr.KindGetRoot {
			return err
		}
		return utils.WriteJSON(w, &VerifyResponse{Reason: err.Error()})
	}
	return utils.WriteJSON(w, &VerifyResponse{Valid: true})
}

func (m *MMR) handleGetRoot(w http.ResponseWriter, req *http.Request) error {
	leafCount, err := utils.ParseUint64Query(req, "leafCount")
	if err != nil {
		return err
	}
	if leafCount == nil {
		root, count, err := m.acc.Root()
		if err != nil {
			return err
		}
		return utils.WriteJSON(w, &Root{root, count})
	}
	root, err := m.acc.RootAt(*leafCount)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, &Root{root, *leafCount})
}

func (m *MMR) handleGetLeafCount(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, utils.M{"leafCount": m.acc.LeafCount()})
}

func (m *MMR) handleAppend(w http.ResponseWriter, req *http.Request) error {
	var body AppendRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if len(body.Leaves) == 0 {
		return utils.BadRequest(errors.New("body: no leaves"))
	}
	leaves := make([]mmr.Leaf, 0, len(body.Leaves))
	for _, l := range body.Leaves {
		leaves = append(leaves, mmr.OpaqueLeaf(l))
	}
	indices, err := m.acc.Append(leaves...)
	if err != nil {
		return err
	}
	count := indices[len(indices)-1] + 1
	root, err := m.acc.RootAt(count)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &AppendResponse{
		Indices:   indices,
		Root:      root,
		LeafCount: count,
	})
}

func (m *MMR) handleGetLeaf(w http.ResponseWriter, req *http.Request) error {
	index, err := strconv.ParseUint(mux.Vars(req)["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "index"))
	}
	leaf, err := m.acc.Leaf(index)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, ConvertLeaf(leaf))
}

func (m *MMR) handleProof(w http.ResponseWriter, req *http.Request) error {
	var body ProofRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	leaves, proof, err := m.acc.GenerateProof(body.Indices, body.BestKnownLeafCount)
	if err != nil {
		return convertError(err)
	}
	resp := &ProofResponse{Proof: proof}
	for _, l := range leaves {
		resp.Leaves = append(resp.Leaves, ConvertLeaf(l))
	}
	return utils.WriteJSON(w, resp)
}

func (m *MMR) handleVerify(w http.ResponseWriter, req *http.Request) error {
	var body VerifyRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Proof == nil {
		return utils.BadRequest(errors.New("body: missing proof"))
	}
	leaves, err := ConvertLeaves(body.Leaves)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return verifyResult(w, m.acc.VerifyProof(leaves, body.Proof))
}

func (m *MMR) handleVerifyStateless(w http.ResponseWriter, req *http.Request) error {
	var body VerifyStatelessRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Proof == nil {
		return utils.BadRequest(errors.New("body: missing proof"))
	}
	leaves, err := ConvertLeaves(body.Leaves)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return verifyResult(w, m.acc.VerifyProofStateless(body.Root, leaves, body.Proof))
}

func (m *MMR) handleAncestry(w http.ResponseWriter, req *http.Request) error {
	prev, err := utils.ParseUint64Query(req, "prevLeafCount")
	if err != nil {
		return err
	}
	if prev == nil {
		return utils.BadRequest(errors.New("prevLeafCount: required"))
	}
	bestKnown, err := utils.ParseUint64Query(req, "bestKnownLeafCount")
	if err != nil {
		return err
	}
	proof, err := m.acc.GenerateAncestryProof(*prev, bestKnown)
	if err != nil {
		return convertError(err)
	}
	return utils.WriteJSON(w, proof)
}

func (m *MMR) handleVerifyAncestry(w http.ResponseWriter, req *http.Request) error {
	var body AncestryVerifyRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Proof == nil {
		return utils.BadRequest(errors.New("body: missing proof"))
	}
	return verifyResult(w, m.acc.VerifyAncestryProof(body.PrevRoot, body.Root, body.Proof))
}

// Mount registers the routes. The append route is left out when readOnly.
func (m *MMR) Mount(root *mux.Router, pathPrefix string, readOnly bool) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/root").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(m.handleGetRoot))
	sub.Path("/leaf-count").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(m.handleGetLeafCount))
	sub.Path("/leaves/{index:[0-9]+}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(m.handleGetLeaf))
	if !readOnly {
		sub.Path("/leaves").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(m.handleAppend))
	}
	sub.Path("/proof").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(m.handleProof))
	sub.Path("/proof/verify").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(m.handleVerify))
	sub.Path("/proof/verify-stateless").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(m.handleVerifyStateless))
	sub.Path("/ancestry").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(m.handleAncestry))
	sub.Path("/ancestry/verify").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(m.handleVerifyAncestry))
}
