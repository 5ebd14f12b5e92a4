// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mmrledger/accumulator"
	"github.com/vechain/mmrledger/api"
	apimmr "github.com/vechain/mmrledger/api/mmr"
	"github.com/vechain/mmrledger/client"
	"github.com/vechain/mmrledger/lvldb"
	"github.com/vechain/mmrledger/metrics"
	"github.com/vechain/mmrledger/mmr"
	"github.com/vechain/mmrledger/staking"
	"github.com/vechain/mmrledger/state"
	"github.com/vechain/mmrledger/storage"
	"github.com/vechain/mmrledger/thor"
)

type testServer struct {
	ts     *httptest.Server
	db     *lvldb.LevelDB
	acc    *accumulator.Accumulator
	staker *staking.Staker
	client *client.Client
}

func newTestServer(t *testing.T, opts api.Options) *testServer {
	if opts.EnableMetrics {
		metrics.InitializePrometheusMetrics()
	}
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	acc, err := accumulator.New(db, accumulator.Options{})
	require.NoError(t, err)
	staker := staking.NewStaker(db, nil, staking.DefaultParams())

	handler, closeSubs := api.New(acc, staker, opts)
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
		db.Close()
	})
	return &testServer{ts, db, acc, staker, client.New(ts.URL)}
}

func TestMMR(t *testing.T) {
	s := newTestServer(t, api.Options{AllowedOrigins: "*", EnableMetrics: true})
	c := s.client

	root, err := c.Root()
	require.NoError(t, err)
	assert.Equal(t, mmr.EmptyRoot(thor.Blake2bHasher), root.Root)
	assert.Equal(t, uint64(0), root.LeafCount)

	leaves := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d"), []byte("e")}
	appended, err := c.Append(leaves...)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, appended.Indices)
	assert.Equal(t, uint64(5), appended.LeafCount)

	want, count, err := s.acc.Root()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)
	assert.Equal(t, want, appended.Root)

	n, err := c.LeafCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)

	leaf, err := c.Leaf(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), []byte(leaf.Full))
	_, err = c.Leaf(5)
	assert.ErrorIs(t, err, client.ErrNotFound)

	t.Run("historical root", func(t *testing.T) {
		want, err := s.acc.RootAt(3)
		require.NoError(t, err)
		got, err := c.RootAt(3)
		require.NoError(t, err)
		assert.Equal(t, want, got.Root)
		assert.Equal(t, uint64(3), got.LeafCount)

		_, err = c.RootAt(6)
		assert.ErrorIs(t, err, client.ErrNot200Status)
	})

	t.Run("proof", func(t *testing.T) {
		res, err := c.Proof([]uint64{3, 1}, nil)
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 3}, res.Proof.LeafIndices)
		require.Len(t, res.Leaves, 2)
		assert.Equal(t, []byte("b"), []byte(res.Leaves[0].Full))

		valid, err := c.Verify(res.Leaves, res.Proof)
		require.NoError(t, err)
		assert.True(t, valid.Valid)

		valid, err = c.VerifyStateless(appended.Root, res.Leaves, res.Proof)
		require.NoError(t, err)
		assert.True(t, valid.Valid)

		tampered := []*apimmr.Leaf{{Full: []byte("x")}, res.Leaves[1]}
		valid, err = c.Verify(tampered, res.Proof)
		require.NoError(t, err)
		assert.False(t, valid.Valid)
		assert.NotEmpty(t, valid.Reason)

		valid, err = c.VerifyStateless(thor.Bytes32{}, res.Leaves, res.Proof)
		require.NoError(t, err)
		assert.False(t, valid.Valid)
	})

	t.Run("historical proof", func(t *testing.T) {
		bestKnown := uint64(3)
		res, err := c.Proof([]uint64{0}, &bestKnown)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), res.Proof.LeafCount)

		valid, err := c.Verify(res.Leaves, res.Proof)
		require.NoError(t, err)
		assert.True(t, valid.Valid)
	})

	t.Run("proof errors", func(t *testing.T) {
		_, err := c.Proof(nil, nil)
		assert.ErrorIs(t, err, client.ErrNot200Status)

		_, err = c.Proof([]uint64{5}, nil)
		assert.ErrorIs(t, err, client.ErrNotFound)

		bestKnown := uint64(6)
		_, err = c.Proof([]uint64{0}, &bestKnown)
		assert.ErrorIs(t, err, client.ErrNot200Status)

		for _, path := range []string{"/mmr/proof/verify", "/mmr/proof/verify-stateless", "/mmr/ancestry/verify"} {
			resp, err := http.Post(s.ts.URL+path, "application/json", bytes.NewBufferString(`{"unknown":1}`))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)

			resp, err = http.Post(s.ts.URL+path, "application/json", bytes.NewBufferString(`{}`))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		}

		nullLeaf := map[string]string{
			"/mmr/proof/verify":           `{"leaves":[null],"proof":{"leafIndices":[0],"leafCount":5}}`,
			"/mmr/proof/verify-stateless": `{"leaves":[null],"root":"` + appended.Root.String() + `","proof":{"leafIndices":[0],"leafCount":5}}`,
		}
		for path, body := range nullLeaf {
			resp, err := http.Post(s.ts.URL+path, "application/json", bytes.NewBufferString(body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		}
	})

	t.Run("ancestry", func(t *testing.T) {
		prev, err := c.RootAt(2)
		require.NoError(t, err)

		proof, err := c.Ancestry(2)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), proof.PrevLeafCount)
		assert.Equal(t, uint64(5), proof.LeafCount)

		valid, err := c.VerifyAncestry(prev.Root, appended.Root, proof)
		require.NoError(t, err)
		assert.True(t, valid.Valid)

		valid, err = c.VerifyAncestry(appended.Root, appended.Root, proof)
		require.NoError(t, err)
		assert.False(t, valid.Valid)

		_, err = c.Ancestry(6)
		assert.ErrorIs(t, err, client.ErrNot200Status)

		resp, err := http.Get(s.ts.URL + "/mmr/ancestry")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("append errors", func(t *testing.T) {
		resp, err := http.Post(s.ts.URL+"/mmr/leaves", "application/json", bytes.NewBufferString(`{"leaves":[]}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, err = http.Post(s.ts.URL+"/mmr/leaves", "application/json", bytes.NewBufferString(`{"leaves":["zz"]}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestVerifyCompositeLeaf(t *testing.T) {
	s := newTestServer(t, api.Options{})
	h := s.acc.Hasher()

	_, err := s.acc.Append(mmr.Pair(h, mmr.DataNode(mmr.NewPlain("alice")), mmr.DataNode(mmr.Uint64Leaf(100))))
	require.NoError(t, err)

	res, err := s.client.Proof([]uint64{0}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Leaves[0].Compact)

	valid, err := s.client.Verify(res.Leaves, res.Proof)
	require.NoError(t, err)
	assert.True(t, valid.Valid)

	forgedFull, err := mmr.Pair(h, mmr.DataNode(mmr.NewPlain("mallory")), mmr.DataNode(mmr.Uint64Leaf(999999))).Encode(false)
	require.NoError(t, err)
	forged := []*apimmr.Leaf{{Full: forgedFull, Compact: res.Leaves[0].Compact}}

	valid, err = s.client.Verify(forged, res.Proof)
	require.NoError(t, err)
	assert.False(t, valid.Valid)
	assert.Contains(t, valid.Reason, "does not match")
}

func TestReadOnly(t *testing.T) {
	s := newTestServer(t, api.Options{ReadOnly: true})

	_, err := s.client.Append([]byte("a"))
	assert.Error(t, err)
	assert.Equal(t, uint64(0), s.acc.LeafCount())
}

func TestHeaders(t *testing.T) {
	var logs atomic.Bool
	logs.Store(true)
	s := newTestServer(t, api.Options{EnableReqLogger: &logs})

	resp, err := http.Get(s.ts.URL + "/mmr/leaf-count")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(api.VersionHeader))
	assert.NotEmpty(t, resp.Header.Get(api.RequestIDHeader))

	req, err := http.NewRequest(http.MethodGet, s.ts.URL+"/mmr/root", nil)
	require.NoError(t, err)
	req.Header.Set(api.RequestIDHeader, "fixed")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "fixed", resp.Header.Get(api.RequestIDHeader))

	resp, err = http.Get(s.ts.URL + "/doc/mmrledger.yaml")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubscribeRoot(t *testing.T) {
	s := newTestServer(t, api.Options{AllowedOrigins: "*", EnableMetrics: true})
	_, err := s.acc.Append(mmr.OpaqueLeaf("a"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ch, err := s.client.SubscribeRoot(ctx)
	require.NoError(t, err)

	first := <-ch
	require.NoError(t, first.Error)
	assert.Equal(t, uint64(1), first.Data.LeafCount)

	_, err = s.acc.Append(mmr.OpaqueLeaf("b"), mmr.OpaqueLeaf("c"))
	require.NoError(t, err)
	want, _, err := s.acc.Root()
	require.NoError(t, err)

	next := <-ch
	require.NoError(t, next.Error)
	assert.Equal(t, uint64(3), next.Data.LeafCount)
	assert.Equal(t, want, next.Data.Root)
}

func TestLedgers(t *testing.T) {
	s := newTestServer(t, api.Options{})
	stash, controller := thor.BytesToAddress([]byte("stash")), thor.BytesToAddress([]byte("ctrl"))

	require.NoError(t, s.staker.Deposit(stash, big.NewInt(100)))
	require.NoError(t, s.staker.Bond(stash, controller, big.NewInt(60), staking.RewardDestination{Kind: staking.RewardStaked}))

	for _, byController := range []bool{false, true} {
		account := stash
		if byController {
			account = controller
		}
		ledger, err := s.client.Ledger(account, byController)
		require.NoError(t, err)
		assert.Equal(t, stash, ledger.Stash)
		assert.Equal(t, controller, ledger.Controller)
		assert.Equal(t, int64(60), (*big.Int)(ledger.Total).Int64())
		assert.Equal(t, int64(60), (*big.Int)(ledger.Active).Int64())
		assert.Empty(t, ledger.Unlocking)
		require.NotNil(t, ledger.Payee)
		assert.Equal(t, "staked", ledger.Payee.Kind)
	}

	_, err := s.client.Ledger(controller, false)
	assert.ErrorIs(t, err, client.ErrNotFound)

	resp, err := http.Get(s.ts.URL + "/staking/ledgers/" + stash.String() + "?by=nobody")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// bond the stash to itself, leaving its ledger at the old controller
	st := state.New(s.db, nil)
	bonded := storage.NewMapping[thor.Address, thor.Address](storage.NewContext(staking.Address, st), thor.BytesToBytes32([]byte("bonded")))
	require.NoError(t, bonded.Set(stash, stash))
	bulk := s.db.Bulk()
	require.NoError(t, st.Stage().Commit(bulk))
	require.NoError(t, bulk.Write())

	_, err = s.client.Ledger(controller, true)
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.Code)
}
