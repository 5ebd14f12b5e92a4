// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	families := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		families[mf.GetName()] = mf
	}
	return families
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	leaves := metrics.GetOrCreateCountMeter("leaves_appended")
	verifies := metrics.GetOrCreateCountVecMeter("proof_verify", []string{"result"})
	verifyTime := metrics.GetOrCreateHistogramVecMeter("proof_verify_us", []string{"kind"}, BucketProofMicros)
	leafCount := metrics.GetOrCreateGaugeMeter("leaf_count")
	ledgers := metrics.GetOrCreateGaugeVecMeter("ledgers", []string{"kind"})

	total := 0
	for i := range 10 {
		leaves.Add(1)
		result := strconv.FormatBool(i%3 != 0)
		verifies.AddWithLabel(1, map[string]string{"result": result})
		verifyTime.ObserveWithLabels(int64(i), map[string]string{"kind": "leaf"})
		total += i
	}
	leafCount.Set(10)
	leafCount.Add(2)
	ledgers.SetWithLabel(3, map[string]string{"kind": "virtual"})
	ledgers.AddWithLabel(1, map[string]string{"kind": "virtual"})

	// same meter is returned for the same name
	metrics.GetOrCreateCountMeter("leaves_appended").Add(5)

	families := gather(t)
	require.Equal(t, float64(15), families["mmrledger_leaves_appended"].Metric[0].GetCounter().GetValue())

	sumVerify := float64(0)
	for _, m := range families["mmrledger_proof_verify"].Metric {
		sumVerify += m.GetCounter().GetValue()
	}
	require.Equal(t, float64(10), sumVerify)
	require.Equal(t, float64(total), families["mmrledger_proof_verify_us"].Metric[0].GetHistogram().GetSampleSum())
	require.Equal(t, float64(12), families["mmrledger_leaf_count"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(4), families["mmrledger_ledgers"].Metric[0].GetGauge().GetValue())
}

func TestLazyLoading(t *testing.T) {
	old := metrics
	metrics = noopMetrics{}
	t.Cleanup(func() { metrics = old })

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogramVec := LazyLoadHistogramVec("lazyHistogramVec", nil, nil)

	// meters created after initialization are prometheus ones
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramVecMeter{}, lazyHistogramVec())
}
