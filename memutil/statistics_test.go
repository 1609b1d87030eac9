package memutil_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arenautils/memarena/memutil"
)

func TestDetailedStatisticsAccumulate(t *testing.T) {
	var stats memutil.DetailedStatistics
	stats.Clear()

	require.Equal(t, math.MaxInt, stats.AllocationSizeMin)
	require.Equal(t, math.MaxInt, stats.FreeRangeSizeMin)

	stats.AddAllocation(10)
	stats.AddAllocation(40)
	stats.AddFreeRange(6)

	require.Equal(t, memutil.DetailedStatistics{
		Statistics: memutil.Statistics{
			AllocationCount: 2,
			AllocationBytes: 50,
			FreeRangeCount:  1,
			FreeBytes:       6,
		},
		AllocationSizeMin: 10,
		AllocationSizeMax: 40,
		FreeRangeSizeMin:  6,
		FreeRangeSizeMax:  6,
	}, stats)
}

func TestAddDetailedStatistics(t *testing.T) {
	var a, b memutil.DetailedStatistics
	a.Clear()
	b.Clear()

	a.AddAllocation(10)
	a.AddFreeRange(100)
	b.AddAllocation(3)
	b.AddFreeRange(200)

	a.AddDetailedStatistics(&b)

	require.Equal(t, memutil.DetailedStatistics{
		Statistics: memutil.Statistics{
			AllocationCount: 2,
			AllocationBytes: 13,
			FreeRangeCount:  2,
			FreeBytes:       300,
		},
		AllocationSizeMin: 3,
		AllocationSizeMax: 10,
		FreeRangeSizeMin:  100,
		FreeRangeSizeMax:  200,
	}, a)
}

func TestStatisticsClear(t *testing.T) {
	s := memutil.Statistics{
		AllocationCount: 4,
		AllocationBytes: 90,
		FreeRangeCount:  2,
		FreeBytes:       10,
	}
	s.Clear()
	require.Equal(t, memutil.Statistics{}, s)
}
