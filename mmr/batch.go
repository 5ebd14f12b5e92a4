// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import (
	"context"

	"github.com/vechain/mmrledger/co"
	"github.com/vechain/mmrledger/thor"
)

// VerifyJob is one leaf proof to verify.
type VerifyJob struct {
	Root   thor.Bytes32
	Leaves []Node
	Proof  *LeafProof
}

// VerifyBatch verifies independent proofs in parallel. The i-th error is the result
// of the i-th job. Jobs not started before ctx is done fail with ctx.Err().
func VerifyBatch(ctx context.Context, hasher thor.Hasher, jobs []VerifyJob) []error {
	errs := make([]error, len(jobs))
	<-co.Parallel(func(queue chan<- func()) {
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			queue <- func() {
				errs[i] = VerifyProof(hasher, jobs[i].Root, jobs[i].Leaves, jobs[i].Proof)
			}
		}
	})
	return errs
}
