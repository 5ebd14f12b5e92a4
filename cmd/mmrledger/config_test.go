// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mmrledger/staking"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)
		params, err := cfg.Staking.params()
		require.NoError(t, err)
		assert.Equal(t, staking.DefaultParams(), params)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := loadConfig(writeConfig(t, `
staking:
  bonding-duration: 2
  max-unlocking-chunks: 4
  min-bond: "0x0a"
`))
		require.NoError(t, err)
		params, err := cfg.Staking.params()
		require.NoError(t, err)
		assert.Equal(t, uint32(2), params.BondingDuration)
		assert.Equal(t, uint32(4), params.MaxUnlockingChunks)
		assert.Equal(t, staking.DefaultParams().HistoryDepth, params.HistoryDepth)
		assert.Equal(t, big.NewInt(10), params.MinBond)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := loadConfig(writeConfig(t, "staking:\n  bonding-period: 2\n"))
		assert.Error(t, err)
	})

	t.Run("zero chunks", func(t *testing.T) {
		cfg, err := loadConfig(writeConfig(t, "staking:\n  max-unlocking-chunks: 0\n"))
		require.NoError(t, err)
		_, err = cfg.Staking.params()
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"1000", 1000, false},
		{"0x10", 16, false},
		{"1.5", 0, true},
		{"0xzz", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}

	_, err := parseAmount("0x1" + strings.Repeat("0", 64))
	assert.Error(t, err)
}
