package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsetSetGet(t *testing.T) {
	b := NewBitset(100)
	assert.False(t, b.Get(0))
	b.Set(0)
	b.Set(63)
	b.Set(64)
	b.Set(99)
	assert.True(t, b.Get(0))
	assert.True(t, b.Get(63))
	assert.True(t, b.Get(64))
	assert.True(t, b.Get(99))
	assert.False(t, b.Get(50))
	assert.Equal(t, 4, b.Cardinality())
}

func TestBitsetUnion(t *testing.T) {
	a := NewBitset(70)
	b := NewBitset(70)
	a.Set(1)
	a.Set(65)
	b.Set(1)
	b.Set(2)
	a.Union(b)
	assert.Equal(t, 3, a.Cardinality())
	assert.True(t, a.Get(2))
	// b is untouched
	assert.Equal(t, 2, b.Cardinality())
}

func TestBitsetIntersect(t *testing.T) {
	a := NewBitset(10)
	b := NewBitset(10)
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)
	a.Intersect(b)
	assert.Equal(t, 1, a.Cardinality())
	assert.True(t, a.Get(2))
}

func TestBitsetUnionCardinalityDoesNotMutate(t *testing.T) {
	a := NewBitset(130)
	b := NewBitset(130)
	a.Set(0)
	a.Set(128)
	b.Set(0)
	b.Set(1)
	b.Set(129)
	assert.Equal(t, 4, a.UnionCardinality(b))
	assert.Equal(t, 2, a.Cardinality())
	assert.Equal(t, 3, b.Cardinality())
}

func TestBitsetClone(t *testing.T) {
	a := NewBitset(10)
	a.Set(5)
	b := a.Clone()
	b.Set(6)
	assert.Equal(t, 1, a.Cardinality())
	assert.Equal(t, 2, b.Cardinality())
}

func TestBitsetBytesRoundTrip(t *testing.T) {
	a := NewBitset(77)
	for _, i := range []int{0, 7, 8, 63, 64, 76} {
		a.Set(i)
	}
	data := a.Bytes()
	require.Len(t, data, 10)
	b, err := BitsetFromBytes(77, data)
	require.NoError(t, err)
	assert.Equal(t, a.Cardinality(), b.Cardinality())
	for i := 0; i < 77; i++ {
		assert.Equal(t, a.Get(i), b.Get(i), "bit %d", i)
	}
}

func TestBitsetFromBytesBadLength(t *testing.T) {
	_, err := BitsetFromBytes(77, make([]byte, 9))
	assert.Error(t, err)
}

func TestBitsetMismatchedWidthsPanic(t *testing.T) {
	a := NewBitset(10)
	b := NewBitset(20)
	assert.Panics(t, func() { a.Union(b) })
	assert.Panics(t, func() { a.UnionCardinality(b) })
}

func TestZeroWidthBitset(t *testing.T) {
	b := NewBitset(0)
	assert.Equal(t, 0, b.Cardinality())
	assert.Empty(t, b.Bytes())
}
