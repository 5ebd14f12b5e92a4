// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mmrledger/accumulator"
	"github.com/vechain/mmrledger/log"
	"github.com/vechain/mmrledger/lvldb"
	"github.com/vechain/mmrledger/mmr"
)

func newTestAdmin(t *testing.T, apiLogs *atomic.Bool) (*httptest.Server, *slog.LevelVar, *accumulator.Accumulator) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	acc, err := accumulator.New(db, accumulator.Options{})
	require.NoError(t, err)

	level := new(slog.LevelVar)
	level.Set(log.LevelInfo)
	ts := httptest.NewServer(New(level, apiLogs, acc))
	t.Cleanup(ts.Close)
	return ts, level, acc
}

func call(t *testing.T, method, url, body string, out any) int {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestLogLevel(t *testing.T) {
	ts, level, _ := newTestAdmin(t, nil)

	var resp LogLevelResponse
	assert.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+"/admin/loglevel", "", &resp))
	assert.Equal(t, "info", resp.CurrentLevel)

	for _, lvl := range []string{"trace", "debug", "warn", "error", "crit", "info"} {
		assert.Equal(t, http.StatusOK, call(t, http.MethodPost, ts.URL+"/admin/loglevel", `{"level":"`+lvl+`"}`, &resp))
		assert.Equal(t, lvl, resp.CurrentLevel)
		assert.Equal(t, lvl, log.LevelString(level.Level()))
	}

	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, ts.URL+"/admin/loglevel", `{"level":"loud"}`, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, ts.URL+"/admin/loglevel", `{"lvl":"info"}`, nil))
	assert.Equal(t, log.LevelInfo, level.Level())

	// not mounted without a toggle
	assert.Equal(t, http.StatusNotFound, call(t, http.MethodGet, ts.URL+"/admin/apilogs", "", nil))
}

func TestAPILogs(t *testing.T) {
	var enabled atomic.Bool
	ts, _, _ := newTestAdmin(t, &enabled)

	var status LogStatus
	assert.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+"/admin/apilogs", "", &status))
	assert.False(t, status.Enabled)

	assert.Equal(t, http.StatusOK, call(t, http.MethodPost, ts.URL+"/admin/apilogs", `{"enabled":true}`, &status))
	assert.True(t, status.Enabled)
	assert.True(t, enabled.Load())

	assert.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, ts.URL+"/admin/apilogs", `{`, nil))
	assert.True(t, enabled.Load())
}

func TestHealth(t *testing.T) {
	ts, _, acc := newTestAdmin(t, nil)
	_, err := acc.Append(mmr.OpaqueLeaf("a"), mmr.OpaqueLeaf("b"))
	require.NoError(t, err)
	root, _, err := acc.Root()
	require.NoError(t, err)

	var h Health
	assert.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+"/admin/health", "", &h))
	assert.True(t, h.Healthy)
	assert.Equal(t, uint64(2), h.LeafCount)
	require.NotNil(t, h.Root)
	assert.Equal(t, root, *h.Root)
	assert.Equal(t, "blake2b", h.Hasher)
	assert.Empty(t, h.Error)
}
