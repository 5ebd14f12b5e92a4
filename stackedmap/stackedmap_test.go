// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/mmrledger/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]string{"foo": "bar"}

	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", []any{"bar", true, nil}},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", []any{"baz", true, nil}},
		{func() {}, 2, "foo", "baz1", "foo", []any{"baz1", true, nil}},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", []any{"qux", true, nil}},
		{func() { sm.Pop() }, 2, "", "", "foo", []any{"baz1", true, nil}},
		{func() { sm.Pop() }, 1, "", "", "foo", []any{"bar", true, nil}},
		{func() {}, 1, "", "", "none", []any{"", false, nil}},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(test.getReturn, M(sm.Get(test.getKey)))
		}
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(key int) (int, bool, error) {
		return 0, false, nil
	})

	sm.Put(1, 10)
	cp := sm.Push()
	sm.Put(2, 20)
	sm.Put(1, 11)

	var keys, vals []int
	sm.Journal(func(k, v int) bool {
		keys = append(keys, k)
		vals = append(vals, v)
		return true
	})
	assert.Equal(t, []int{1, 2, 1}, keys)
	assert.Equal(t, []int{10, 20, 11}, vals)

	sm.PopTo(cp)
	keys = keys[:0]
	sm.Journal(func(k, _ int) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []int{1}, keys)

	v, ok, _ := sm.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestStackedMapSourceError(t *testing.T) {
	sm := stackedmap.New(func(key string) (string, bool, error) {
		return "", false, errors.New("broken")
	})
	_, _, err := sm.Get("x")
	assert.EqualError(t, err, "broken")

	sm.Put("x", "y")
	v, ok, err := sm.Get("x")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "y", v)
}
