// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mmr

import "github.com/vechain/mmrledger/metrics"

var metricNodeCacheHitMiss = metrics.LazyLoadGaugeVec("node_cache_hit_miss_count", []string{"event"})
