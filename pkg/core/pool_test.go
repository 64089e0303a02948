package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocateFreeRoundTrip(t *testing.T) {
	p := NewOrderPool(4)
	require.Equal(t, 0, p.Len())

	h, err := p.Allocate()
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	require.NotNil(t, p.Get(h))

	p.Free(h)
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Get(h))
}

func TestPoolExhaustionReturnsErrPoolFull(t *testing.T) {
	p := NewOrderPool(2)

	_, err := p.Allocate()
	require.NoError(t, err)
	_, err = p.Allocate()
	require.NoError(t, err)

	_, err = p.Allocate()
	assert.ErrorIs(t, err, ErrPoolFull)
}

func TestPoolStaleHandleAfterFreeIsRejected(t *testing.T) {
	p := NewOrderPool(1)

	h, err := p.Allocate()
	require.NoError(t, err)
	p.Free(h)

	h2, err := p.Allocate()
	require.NoError(t, err)

	assert.NotEqual(t, h.Generation, h2.Generation)
	assert.Nil(t, p.Get(h))
	assert.NotNil(t, p.Get(h2))
}

func TestPoolFreeIsIdempotent(t *testing.T) {
	p := NewOrderPool(1)
	h, err := p.Allocate()
	require.NoError(t, err)

	p.Free(h)
	assert.NotPanics(t, func() { p.Free(h) })
	assert.Equal(t, 0, p.Len())
}

func TestPoolReuseAfterFreeRecyclesSlot(t *testing.T) {
	p := NewOrderPool(1)

	h1, err := p.Allocate()
	require.NoError(t, err)
	p.Free(h1)

	h2, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, h1.Index, h2.Index)
}
