// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import "github.com/vechain/mmrledger/metrics"

var (
	metricAppendedLeaves = metrics.LazyLoadCounter("accumulator_appended_leaves_count")
	metricLeafCount      = metrics.LazyLoadGauge("accumulator_leaf_count")
	metricProofDuration  = metrics.LazyLoadHistogramVec("accumulator_proof_duration_us", []string{"op"}, metrics.BucketProofMicros)
	metricVerifyFailures = metrics.LazyLoadCounterVec("accumulator_verify_failure_count", []string{"op"})
)
