package memutil

import "math"

// Statistics describes the coarse occupancy of an arena: how many allocations
// and free ranges exist and how many bytes each side holds.
type Statistics struct {
	AllocationCount int
	AllocationBytes int
	FreeRangeCount  int
	FreeBytes       int
}

func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.AllocationBytes = 0
	s.FreeRangeCount = 0
	s.FreeBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.AllocationCount += other.AllocationCount
	s.AllocationBytes += other.AllocationBytes
	s.FreeRangeCount += other.FreeRangeCount
	s.FreeBytes += other.FreeBytes
}

// DetailedStatistics extends Statistics with minimum and maximum range sizes.
// Clear must be called before accumulating into it, since the minimums begin
// at math.MaxInt.
type DetailedStatistics struct {
	Statistics
	AllocationSizeMin int
	AllocationSizeMax int
	FreeRangeSizeMin  int
	FreeRangeSizeMax  int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeRangeSizeMin = math.MaxInt
	s.FreeRangeSizeMax = 0
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeRangeCount++
	s.FreeBytes += size

	if size < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = size
	}

	if size > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}

	if other.FreeRangeSizeMin < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = other.FreeRangeSizeMin
	}

	if other.FreeRangeSizeMax > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = other.FreeRangeSizeMax
	}
}
