// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/mmrledger/lvldb"
	"github.com/vechain/mmrledger/state"
	"github.com/vechain/mmrledger/thor"
)

type testStruct struct {
	Field1 uint64
	Addr1  thor.Address
	Amount *big.Int
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(thor.Address{1}, state.New(db, nil))
}

func TestMappingStruct(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[thor.Address, *testStruct](ctx, thor.Bytes32{1})
	key := thor.Address{0xaa}

	v, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, uint64(0), v.Field1)

	has, err := m.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	want := &testStruct{Field1: 100, Addr1: thor.Address{2}, Amount: big.NewInt(500)}
	require.NoError(t, m.Set(key, want))
	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, v)

	has, err = m.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	m.Delete(key)
	has, err = m.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMappingsAreIsolated(t *testing.T) {
	ctx := newTestContext(t)
	a := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{1})
	b := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{2})
	key := thor.Address{0xbb}

	require.NoError(t, a.Set(key, 1))
	require.NoError(t, b.Set(key, 2))

	va, err := a.Get(key)
	require.NoError(t, err)
	vb, err := b.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), va)
	assert.Equal(t, uint64(2), vb)
	assert.Equal(t, thor.Address{1}, ctx.Address())
}

func TestMappingCorruptedValue(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[thor.Address, *testStruct](ctx, thor.Bytes32{1})
	key := thor.Address{0xcc}

	ctx.State().SetRawStorage(ctx.Address(), m.position(key), []byte{0xff})
	_, err := m.Get(key)
	var stateErr *state.Error
	assert.ErrorAs(t, err, &stateErr)
}

func TestScalar(t *testing.T) {
	ctx := newTestContext(t)
	s := NewScalar[*big.Int](ctx, thor.Bytes32{9})

	v, err := s.Get()
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Set(big.NewInt(42)))
	v, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), v)
}
