// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package doc

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestVersion(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^\d+(\.\d+){2}$`), Version())
}

func TestDocumentedPaths(t *testing.T) {
	content, err := FS.ReadFile(specFile)
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(content, &doc))

	for path, methods := range map[string][]string{
		"/mmr/root":                   {"get"},
		"/mmr/leaves":                 {"post"},
		"/mmr/leaves/{index}":         {"get"},
		"/mmr/proof":                  {"post"},
		"/mmr/proof/verify":           {"post"},
		"/mmr/proof/verify-stateless": {"post"},
		"/mmr/ancestry":               {"get"},
		"/mmr/ancestry/verify":        {"post"},
		"/staking/ledgers/{account}":  {"get"},
	} {
		require.Contains(t, doc.Paths, path)
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, "%v %v", m, path)
		}
	}
}
