package strategy

import (
	"math"
	"testing"

	"github.com/arloliu/segsieve/types"
	"github.com/stretchr/testify/require"
)

func requireCovers(t *testing.T, parts []types.Partition, left, bound uint32) {
	t.Helper()

	require.Equal(t, left, parts[0].Lo)
	require.Equal(t, bound, parts[len(parts)-1].Hi)

	var total uint64
	for r, p := range parts {
		require.Equal(t, r, p.Rank)
		require.LessOrEqual(t, p.Lo, p.Hi)
		if r+1 < len(parts) {
			require.Equal(t, p.Hi, parts[r+1].Lo, "rank %d must end where rank %d starts", r, r+1)
		}
		total += uint64(p.Len())
	}
	require.Equal(t, uint64(bound-left), total)
}

func TestContiguous_PartitionAll(t *testing.T) {
	c := NewContiguous()

	t.Run("covers the range exactly once", func(t *testing.T) {
		for _, size := range []int{1, 2, 3, 5, 7, 16} {
			for _, rng := range [][2]uint32{{8, 31}, {128, 1_000_001}, {100, 100}, {3, 4}, {65536, 1_000_000_001}} {
				parts, err := c.PartitionAll(size, rng[0], rng[1])
				require.NoError(t, err)
				require.Len(t, parts, size)
				requireCovers(t, parts, rng[0], rng[1])
			}
		}
	})

	t.Run("splits evenly", func(t *testing.T) {
		parts, err := c.PartitionAll(4, 0, 100)
		require.NoError(t, err)

		require.Equal(t, []types.Partition{
			{Rank: 0, Lo: 0, Hi: 25},
			{Rank: 1, Lo: 25, Hi: 50},
			{Rank: 2, Lo: 50, Hi: 75},
			{Rank: 3, Lo: 75, Hi: 100},
		}, parts)
	})

	t.Run("last rank absorbs the remainder", func(t *testing.T) {
		parts, err := c.PartitionAll(3, 8, 31)
		require.NoError(t, err)

		require.Equal(t, "[8, 15)", parts[0].String())
		require.Equal(t, "[15, 23)", parts[1].String())
		require.Equal(t, "[23, 31)", parts[2].String())
	})

	t.Run("small ranges leave some ranks empty", func(t *testing.T) {
		parts, err := c.PartitionAll(5, 10, 12)
		require.NoError(t, err)
		requireCovers(t, parts, 10, 12)

		empty := 0
		for _, p := range parts {
			if p.Empty() {
				empty++
			}
		}
		require.Equal(t, 3, empty)
	})

	t.Run("does not overflow near the top of the domain", func(t *testing.T) {
		parts, err := c.PartitionAll(7, 0, math.MaxUint32)
		require.NoError(t, err)
		requireCovers(t, parts, 0, math.MaxUint32)
	})

	t.Run("rejects an invalid group size", func(t *testing.T) {
		_, err := c.PartitionAll(0, 8, 31)
		require.ErrorIs(t, err, types.ErrInvalidRange)
	})

	t.Run("rejects a bound before left", func(t *testing.T) {
		_, err := c.PartitionAll(2, 31, 8)
		require.ErrorIs(t, err, types.ErrInvalidRange)
		require.ErrorIs(t, err, ErrBoundBeforeLeft)
	})
}

func TestContiguous_Partition(t *testing.T) {
	c := NewContiguous()

	t.Run("matches PartitionAll for every rank", func(t *testing.T) {
		all, err := c.PartitionAll(5, 1000, 98_765)
		require.NoError(t, err)

		for r := range 5 {
			p, err := c.Partition(types.Group{Rank: r, Size: 5}, 1000, 98_765)
			require.NoError(t, err)
			require.Equal(t, all[r], p)
		}
	})

	t.Run("rejects ranks outside the group", func(t *testing.T) {
		for _, g := range []types.Group{{Rank: -1, Size: 2}, {Rank: 2, Size: 2}, {Rank: 0, Size: 0}} {
			_, err := c.Partition(g, 8, 31)
			require.ErrorIs(t, err, types.ErrInvalidRange)
			require.ErrorIs(t, err, types.ErrInvalidGroup)
		}
	})
}

func TestSafeBound(t *testing.T) {
	t.Run("limit wins once the prefix reaches the square root", func(t *testing.T) {
		require.Equal(t, uint32(31), SafeBound(7, 30, 8))
		require.Equal(t, uint32(101), SafeBound(13, 100, 16))
	})

	t.Run("square wins for a short prefix", func(t *testing.T) {
		require.Equal(t, uint32(49), SafeBound(7, 100, 8))
	})

	t.Run("never precedes left", func(t *testing.T) {
		require.Equal(t, uint32(11), SafeBound(7, 10, 11))
	})

	t.Run("saturates at the type maximum", func(t *testing.T) {
		require.Equal(t, uint32(math.MaxUint32), SafeBound(65537, math.MaxUint32, 3))
		require.Equal(t, uint32(1_000_000_001), SafeBound(65521, 1_000_000_000, 65536))
	})
}
