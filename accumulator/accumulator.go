// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accumulator persists an MMR together with its leaves and serves
// proofs over it.
package accumulator

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/qianbin/drlp"
	"github.com/vechain/mmrledger/co"
	"github.com/vechain/mmrledger/kv"
	"github.com/vechain/mmrledger/log"
	"github.com/vechain/mmrledger/mmr"
	"github.com/vechain/mmrledger/thor"
)

const (
	leafBucket = kv.Bucket("l")
	rootBucket = kv.Bucket("r")
	metaBucket = kv.Bucket("x")
)

var (
	leafCountKey = []byte("leaf-count")
	hasherKey    = []byte("hasher")
)

var logger = log.WithContext("pkg", "accumulator")

// RootUpdate is broadcast after every successful append.
type RootUpdate struct {
	Root      thor.Bytes32 `json:"root"`
	LeafCount uint64       `json:"leafCount"`
}

// Options options for creating an accumulator.
type Options struct {
	Hasher        thor.Hasher
	NodeCacheSize int // number of cached node hashes
}

// Accumulator is an MMR persisted in a kv store.
// Appends are serialized, queries run concurrently with each other.
type Accumulator struct {
	db     kv.Store
	nodes  *mmr.KVStore
	leaves kv.Store
	roots  kv.Store
	meta   kv.Store
	hasher thor.Hasher

	lock   sync.RWMutex
	mmr    *mmr.MMR
	signal co.Signal[RootUpdate]
}

// New opens the accumulator stored in db, or creates an empty one.
func New(db kv.Store, opts Options) (*Accumulator, error) {
	if opts.Hasher == nil {
		opts.Hasher = thor.Blake2bHasher
	}
	nodes, err := mmr.NewKVStore(db, opts.NodeCacheSize)
	if err != nil {
		return nil, err
	}
	a := &Accumulator{
		db:     db,
		nodes:  nodes,
		leaves: leafBucket.NewStore(db),
		roots:  rootBucket.NewStore(db),
		meta:   metaBucket.NewStore(db),
		hasher: opts.Hasher,
	}

	if err := a.checkHasher(); err != nil {
		return nil, err
	}
	count, err := a.loadLeafCount()
	if err != nil {
		return nil, err
	}
	if a.mmr, err = mmr.New(nodes, a.hasher, count); err != nil {
		return nil, err
	}
	metricLeafCount().Set(int64(count))
	logger.Debug("accumulator opened", "leafCount", count, "hasher", a.hasher.Name())
	return a, nil
}

func (a *Accumulator) checkHasher() error {
	name, err := a.meta.Get(hasherKey)
	if err != nil {
		if !a.meta.IsNotFound(err) {
			return errors.Wrap(err, "load hasher")
		}
		return a.meta.Put(hasherKey, []byte(a.hasher.Name()))
	}
	if string(name) != a.hasher.Name() {
		return errors.Errorf("accumulator was created with hasher %q, not %q", name, a.hasher.Name())
	}
	return nil
}

func (a *Accumulator) loadLeafCount() (uint64, error) {
	data, err := a.meta.Get(leafCountKey)
	if err != nil {
		if a.meta.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "load leaf count")
	}
	var count uint64
	if err := rlp.DecodeBytes(data, &count); err != nil {
		return 0, errors.Wrap(err, "decode leaf count")
	}
	return count, nil
}

// Hasher returns the hasher of the accumulator.
func (a *Accumulator) Hasher() thor.Hasher { return a.hasher }

// LeafCount returns the number of leaves.
func (a *Accumulator) LeafCount() uint64 {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.mmr.LeafCount()
}

// Root returns the current root and leaf count.
func (a *Accumulator) Root() (thor.Bytes32, uint64, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	root, err := a.mmr.Root()
	return root, a.mmr.LeafCount(), err
}

// RootAt returns the root the accumulator had with leafCount leaves.
func (a *Accumulator) RootAt(leafCount uint64) (thor.Bytes32, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.rootAt(leafCount)
}

func (a *Accumulator) rootAt(leafCount uint64) (thor.Bytes32, error) {
	if leafCount > a.mmr.LeafCount() {
		return a.mmr.RootAt(leafCount)
	}
	if leafCount == 0 {
		return mmr.EmptyRoot(a.hasher), nil
	}
	val, err := a.roots.Get(drlp.AppendUint(nil, leafCount))
	if err == nil && len(val) == 32 {
		return thor.BytesToBytes32(val), nil
	}
	if err != nil && !a.roots.IsNotFound(err) {
		logger.Warn("failed to read root history", "leafCount", leafCount, "err", err)
	}
	return a.mmr.RootAt(leafCount)
}

// Subscribe returns a waiter fired on every root update.
func (a *Accumulator) Subscribe() co.Waiter[RootUpdate] {
	return a.signal.NewWaiter()
}

// Append appends leaves and returns their indices. Either all leaves are
// appended or none.
func (a *Accumulator) Append(leaves ...mmr.Leaf) ([]uint64, error) {
	if len(leaves) == 0 {
		return nil, nil
	}
	a.lock.Lock()
	defer a.lock.Unlock()

	var (
		prevCount = a.mmr.LeafCount()
		indices   = make([]uint64, 0, len(leaves))
		bulk      = a.db.Bulk()
		leafPut   = leafBucket.NewPutter(bulk)
		rootPut   = rootBucket.NewPutter(bulk)
		root      thor.Bytes32
	)
	err := func() error {
		for _, leaf := range leaves {
			el, err := mmr.EncodeLeaf(leaf)
			if err != nil {
				return errors.WithMessage(err, "encode leaf")
			}
			index, err := a.mmr.Push(el)
			if err != nil {
				return err
			}
			if root, err = a.mmr.Root(); err != nil {
				return err
			}
			data, err := rlp.EncodeToBytes(el)
			if err != nil {
				return err
			}
			if err := leafPut.Put(drlp.AppendUint(nil, index), snappy.Encode(nil, data)); err != nil {
				return err
			}
			if err := rootPut.Put(drlp.AppendUint(nil, index+1), root.Bytes()); err != nil {
				return err
			}
			indices = append(indices, index)
		}
		if err := metaBucket.NewPutter(bulk).Put(leafCountKey, drlp.AppendUint(nil, a.mmr.LeafCount())); err != nil {
			return err
		}
		// nodes go first, they are unreachable until the leaf count is written
		if err := a.mmr.Commit(); err != nil {
			return err
		}
		return bulk.Write()
	}()
	if err != nil {
		a.mmr.Discard()
		if a.mmr.LeafCount() != prevCount {
			// nodes were committed but the leaf count was not, reopen at the persisted count
			if m, e := mmr.New(a.nodes, a.hasher, prevCount); e == nil {
				a.mmr = m
			}
		}
		logger.Warn("failed to append leaves", "count", len(leaves), "err", err)
		return nil, err
	}

	count := a.mmr.LeafCount()
	metricAppendedLeaves().Add(int64(len(leaves)))
	metricLeafCount().Set(int64(count))
	logger.Debug("leaves appended", "count", len(leaves), "leafCount", count, "root", root)

	a.signal.Broadcast(RootUpdate{Root: root, LeafCount: count})
	return indices, nil
}

// Leaf returns the leaf at index.
func (a *Accumulator) Leaf(index uint64) (*mmr.EncodedLeaf, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.leaf(index)
}

func (a *Accumulator) leaf(index uint64) (*mmr.EncodedLeaf, error) {
	if index >= a.mmr.LeafCount() {
		return nil, errors.WithMessagef(mmr.ErrLeafNotFound, "leaf %d", index)
	}
	data, err := a.leaves.Get(drlp.AppendUint(nil, index))
	if err != nil {
		return nil, errors.Wrapf(err, "get leaf %d", index)
	}
	if data, err = snappy.Decode(nil, data); err != nil {
		return nil, errors.Wrapf(err, "decompress leaf %d", index)
	}
	var el mmr.EncodedLeaf
	if err := rlp.DecodeBytes(data, &el); err != nil {
		return nil, errors.Wrapf(err, "decode leaf %d", index)
	}
	return &el, nil
}

func bestKnownOr(bestKnown *uint64, current uint64) uint64 {
	if bestKnown == nil {
		return current
	}
	return *bestKnown
}

// GenerateProof returns the proven leaves and their proof. Without bestKnown, the
// proof is against the current root.
func (a *Accumulator) GenerateProof(indices []uint64, bestKnown *uint64) ([]*mmr.EncodedLeaf, *mmr.LeafProof, error) {
	start := time.Now()
	a.lock.RLock()
	defer a.lock.RUnlock()

	proof, err := a.mmr.GenerateProofAt(indices, bestKnownOr(bestKnown, a.mmr.LeafCount()))
	if err != nil {
		return nil, nil, err
	}
	leaves := make([]*mmr.EncodedLeaf, 0, len(proof.LeafIndices))
	for _, index := range proof.LeafIndices {
		leaf, err := a.leaf(index)
		if err != nil {
			return nil, nil, err
		}
		leaves = append(leaves, leaf)
	}
	metricProofDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": "generate"})
	return leaves, proof, nil
}

func toNodes(leaves []mmr.Leaf) []mmr.Node {
	nodes := make([]mmr.Node, 0, len(leaves))
	for _, l := range leaves {
		nodes = append(nodes, mmr.DataNode(l))
	}
	return nodes
}

// VerifyProof verifies leaves against the root this accumulator had at proof.LeafCount.
func (a *Accumulator) VerifyProof(leaves []mmr.Leaf, proof *mmr.LeafProof) error {
	if proof == nil {
		return mmr.ErrVerify
	}
	root, err := a.RootAt(proof.LeafCount)
	if err != nil {
		return err
	}
	return a.VerifyProofStateless(root, leaves, proof)
}

// VerifyProofStateless verifies leaves against the given root.
func (a *Accumulator) VerifyProofStateless(root thor.Bytes32, leaves []mmr.Leaf, proof *mmr.LeafProof) error {
	start := time.Now()
	err := mmr.VerifyProof(a.hasher, root, toNodes(leaves), proof)
	if err != nil {
		metricVerifyFailures().AddWithLabel(1, map[string]string{"op": "leaf"})
		return err
	}
	metricProofDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": "verify"})
	return nil
}

// GenerateAncestryProof proves that the accumulator with prevLeafCount leaves is a prefix
// of the accumulator with bestKnown leaves, or of the current one.
func (a *Accumulator) GenerateAncestryProof(prevLeafCount uint64, bestKnown *uint64) (*mmr.AncestryProof, error) {
	start := time.Now()
	a.lock.RLock()
	defer a.lock.RUnlock()

	proof, err := a.mmr.GenerateAncestryProofAt(prevLeafCount, bestKnownOr(bestKnown, a.mmr.LeafCount()))
	if err != nil {
		return nil, err
	}
	metricProofDuration().ObserveWithLabels(time.Since(start).Microseconds(), map[string]string{"op": "ancestry"})
	return proof, nil
}

// VerifyAncestryProof verifies an ancestry proof between two roots.
func (a *Accumulator) VerifyAncestryProof(prevRoot, root thor.Bytes32, proof *mmr.AncestryProof) error {
	if err := mmr.VerifyAncestryProof(a.hasher, prevRoot, root, proof); err != nil {
		metricVerifyFailures().AddWithLabel(1, map[string]string{"op": "ancestry"})
		return err
	}
	return nil
}
