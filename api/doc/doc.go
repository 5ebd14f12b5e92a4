// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package doc embeds the OpenAPI description of the HTTP API.
package doc

import (
	"embed"
	"sync"

	"gopkg.in/yaml.v3"
)

const specFile = "mmrledger.yaml"

// FS holds the OpenAPI document, served under /doc/.
//
//go:embed mmrledger.yaml
var FS embed.FS

// Version returns info.version of the embedded document.
var Version = sync.OnceValue(func() string {
	content, err := FS.ReadFile(specFile)
	if err != nil {
		panic(err)
	}
	var spec struct {
		Info struct {
			Version string `yaml:"version"`
		} `yaml:"info"`
	}
	if err := yaml.Unmarshal(content, &spec); err != nil {
		panic(err)
	}
	return spec.Info.Version
})
