package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	def "hush/definitions"
)

func TestPlan_CoversFileContiguously(t *testing.T) {
	tests := []struct {
		size, blockLen int64
		wantBlocks     int
	}{
		{size: 150, blockLen: 100, wantBlocks: 2},
		{size: 200, blockLen: 100, wantBlocks: 2},
		{size: 201, blockLen: 100, wantBlocks: 3},
		{size: 99, blockLen: 100, wantBlocks: 1},
		{size: 1, blockLen: 1, wantBlocks: 1},
		{size: 0, blockLen: 100, wantBlocks: 0},
		{size: 10 << 20, blockLen: 1 << 20, wantBlocks: 10},
		{size: 12345, blockLen: 7, wantBlocks: 1764},
	}

	for _, tt := range tests {
		blocks, err := Plan(tt.size, tt.blockLen)
		require.NoError(t, err, "Plan(%d, %d)", tt.size, tt.blockLen)
		require.Len(t, blocks, tt.wantBlocks, "Plan(%d, %d)", tt.size, tt.blockLen)

		var next, sum uint64
		for i, b := range blocks {
			assert.Equal(t, uint64(i), b.Index)
			assert.Equal(t, next, b.Start, "block %d start", i)
			if i < len(blocks)-1 {
				assert.Equal(t, uint64(tt.blockLen), b.Len(), "inner block %d", i)
			}
			assert.NotZero(t, b.Len())
			assert.LessOrEqual(t, b.Len(), uint64(tt.blockLen))
			assert.Empty(t, b.Digest)
			next = b.End
			sum += b.Len()
		}
		assert.Equal(t, uint64(tt.size), sum)
		assert.Equal(t, uint64(tt.size), next)
	}
}

func TestPlan_InvalidInput(t *testing.T) {
	_, err := Plan(10, 0)
	assert.Error(t, err, "zero block length")
	_, err = Plan(-1, 10)
	assert.Error(t, err, "negative size")
}

func TestPlan_ConcreteLayout(t *testing.T) {
	blocks, err := Plan(150, 100)
	require.NoError(t, err)
	assert.Equal(t, []def.Block{
		{Index: 0, Start: 0, End: 100},
		{Index: 1, Start: 100, End: 150},
	}, blocks)
}
