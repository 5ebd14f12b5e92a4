// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swapRoot(t *testing.T, l Logger) {
	old := Root()
	SetDefault(l)
	t.Cleanup(func() { SetDefault(old) })
}

func TestWithContextFollowsRoot(t *testing.T) {
	pkgLogger := WithContext("pkg", "test")

	var buf bytes.Buffer
	swapRoot(t, NewLogger(LogfmtHandlerWithLevel(&buf, newLevelVar(LevelInfo))))

	pkgLogger.Info("hello", "k", 1)
	pkgLogger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "pkg=test")
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "k=1")
	assert.Contains(t, out, "lvl=info")
	assert.NotContains(t, out, "hidden")
}

func TestJSONHandlerReplace(t *testing.T) {
	var buf bytes.Buffer
	swapRoot(t, NewLogger(NewHandler(&buf, true, newLevelVar(LevelTrace))))

	Trace("values",
		"big", big.NewInt(42),
		"u256", uint256.NewInt(7),
		"raw", []byte{0xab, 0xcd},
		"nilbig", (*big.Int)(nil),
	)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "trace", rec["lvl"])
	assert.Equal(t, "42", rec["big"])
	assert.Equal(t, "7", rec["u256"])
	assert.Equal(t, "0xabcd", rec["raw"])
	assert.Equal(t, "<nil>", rec["nilbig"])
}

func TestLegacyLevels(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, "crit", LevelString(FromLegacyLevel(0)))
	assert.Equal(t, "unknown", LevelString(LevelInfo+1))
}
