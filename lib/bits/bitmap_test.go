package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewX32Bitmap(t *testing.T) {
	bm := NewX32Bitmap(10)
	originalOffsets := []uint64{9, 5, 7, 3, 2, 8, 1}
	expectedOffsets := []uint64{1, 2, 3, 5, 7, 8, 9}
	for _, offset := range originalOffsets {
		require.True(t, bm.SetBit(offset))
	}
	require.False(t, bm.SetBit(100))
	require.False(t, bm.UnsetBit(100))
	for _, offset := range expectedOffsets {
		require.True(t, bm.GetBit(offset))
	}
	require.False(t, bm.GetBit(4))
	require.False(t, bm.GetBit(100))

	require.True(t, bm.UnsetBit(9))
	require.False(t, bm.GetBit(9))
	require.True(t, bm.UnsetBit(4))
	require.False(t, bm.GetBit(4))
}

func TestX32Bitmap_WordBoundary(t *testing.T) {
	bm := NewX32Bitmap(65)
	for _, offset := range []uint64{0, 31, 32, 63, 64} {
		require.True(t, bm.SetBit(offset))
		require.True(t, bm.GetBit(offset))
	}
	require.False(t, bm.GetBit(30))
	require.False(t, bm.GetBit(33))
	require.False(t, bm.SetBit(65))
	require.True(t, bm.UnsetBit(32))
	require.False(t, bm.GetBit(32))
	require.True(t, bm.GetBit(31))
	require.True(t, bm.GetBit(63))
}
