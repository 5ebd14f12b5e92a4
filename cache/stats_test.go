// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/mmrledger/log"
)

func TestStats(t *testing.T) {
	var cs Stats
	changed, hit, miss := cs.Stats()
	assert.False(t, changed, "zero rate on a fresh counter")
	assert.Zero(t, hit+miss)

	for range 3 {
		cs.Hit()
	}
	assert.Equal(t, int64(1), cs.Miss())

	changed, hit, miss = cs.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(1), miss)

	// same rate
	cs.Hit()
	cs.Hit()
	cs.Hit()
	cs.Miss()
	changed, _, _ = cs.Stats()
	assert.False(t, changed)
}

func TestStatsLog(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(log.LevelDebug)
	logger := log.NewLogger(log.NewHandler(&buf, false, level))

	var cs Stats
	cs.Hit()
	cs.Miss()
	cs.Log(logger, "node cache stats")
	assert.Contains(t, buf.String(), "node cache stats")
	assert.Contains(t, buf.String(), "hitrate=0.500")

	buf.Reset()
	cs.Log(logger, "node cache stats")
	assert.Empty(t, buf.String())
}
