// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"math/big"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/mmrledger/staking"
)

// config is the optional YAML config file. Unset fields keep their defaults.
type config struct {
	Staking stakingConfig `yaml:"staking"`
}

type stakingConfig struct {
	MaxUnlockingChunks *uint32 `yaml:"max-unlocking-chunks"`
	HistoryDepth       *uint32 `yaml:"history-depth"`
	BondingDuration    *uint32 `yaml:"bonding-duration"`
	MinBond            string  `yaml:"min-bond"`
}

func loadConfig(path string) (*config, error) {
	var cfg config
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %v", path)
	}
	return &cfg, nil
}

func (c *stakingConfig) params() (staking.Params, error) {
	params := staking.DefaultParams()
	if c.MaxUnlockingChunks != nil {
		params.MaxUnlockingChunks = *c.MaxUnlockingChunks
	}
	if c.HistoryDepth != nil {
		params.HistoryDepth = *c.HistoryDepth
	}
	if c.BondingDuration != nil {
		params.BondingDuration = *c.BondingDuration
	}
	if c.MinBond != "" {
		v, err := parseAmount(c.MinBond)
		if err != nil {
			return staking.Params{}, errors.WithMessage(err, "min-bond")
		}
		params.MinBond = v
	}
	if params.MaxUnlockingChunks == 0 {
		return staking.Params{}, errors.New("max-unlocking-chunks must be positive")
	}
	return params, nil
}

// parseAmount parses a decimal or 0x prefixed hex amount of at most 256 bits.
func parseAmount(s string) (*big.Int, error) {
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", s)
	}
	return v.ToBig(), nil
}
