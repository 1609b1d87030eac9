package arena

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slices"

	"github.com/arenautils/memarena/memutil"
)

// FreeRange describes one free block in a Listing.
type FreeRange struct {
	Offset int
	Size   int
}

// AllocatedBlock describes one live allocation in a Listing.
type AllocatedBlock struct {
	ID     BlockID
	Offset int
	Size   int
}

// Listing is a point-in-time report of every block in the arena, produced by
// Snapshot.
type Listing struct {
	Capacity  int
	Free      []FreeRange
	Allocated []AllocatedBlock
}

// Snapshot reports every free and allocated block without mutating the arena.
// Free ranges are ordered by size then offset, ascending; allocated blocks
// are ordered by id, ascending.
func (a *Arena) Snapshot() Listing {
	listing := Listing{
		Capacity:  len(a.memory),
		Free:      make([]FreeRange, 0, a.free.rangeCount),
		Allocated: make([]AllocatedBlock, 0, a.table.Count()),
	}

	a.free.visit(func(r blockRange) bool {
		listing.Free = append(listing.Free, FreeRange{Offset: r.offset, Size: r.size})
		return true
	})
	slices.SortFunc(listing.Free, func(x, y FreeRange) bool {
		if x.Size != y.Size {
			return x.Size < y.Size
		}
		return x.Offset < y.Offset
	})

	a.table.Iter(func(id BlockID, r blockRange) bool {
		listing.Allocated = append(listing.Allocated, AllocatedBlock{ID: id, Offset: r.offset, Size: r.size})
		return false
	})
	slices.SortFunc(listing.Allocated, func(x, y AllocatedBlock) bool {
		return x.ID < y.ID
	})

	return listing
}

// AddStatistics sums this arena's occupancy into the statistics currently
// present in the provided memutil.Statistics object.
func (a *Arena) AddStatistics(stats *memutil.Statistics) {
	stats.AllocationCount += a.table.Count()
	stats.AllocationBytes += len(a.memory) - a.free.freeBytes
	stats.FreeRangeCount += a.free.rangeCount
	stats.FreeBytes += a.free.freeBytes
}

// AddDetailedStatistics sums this arena's per-range statistics into the
// statistics currently present in the provided memutil.DetailedStatistics
// object.
func (a *Arena) AddDetailedStatistics(stats *memutil.DetailedStatistics) {
	a.free.visit(func(r blockRange) bool {
		stats.AddFreeRange(r.size)
		return true
	})
	a.table.Iter(func(id BlockID, r blockRange) bool {
		stats.AddAllocation(r.size)
		return false
	})
}

// PrintDetailedMap populates the provided json writer with the arena's
// capacity, occupancy statistics, and every free and allocated block.
func (a *Arena) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	listing := a.Snapshot()

	objState.Name("Capacity").Int(listing.Capacity)
	objState.Name("FreeBytes").Int(a.free.freeBytes)
	objState.Name("Allocations").Int(len(listing.Allocated))
	objState.Name("FreeRanges").Int(len(listing.Free))

	freeState := objState.Name("Free").Array()
	for _, r := range listing.Free {
		obj := freeState.Object()
		obj.Name("Offset").Int(r.Offset)
		obj.Name("Size").Int(r.Size)
		obj.End()
	}
	freeState.End()

	allocState := objState.Name("Allocated").Array()
	for _, b := range listing.Allocated {
		obj := allocState.Object()
		obj.Name("ID").Int(int(b.ID))
		obj.Name("Offset").Int(b.Offset)
		obj.Name("Size").Int(b.Size)
		obj.End()
	}
	allocState.End()
}

// BuildStatsString returns the PrintDetailedMap output as a JSON string.
func (a *Arena) BuildStatsString() string {
	writer := jwriter.NewWriter()
	a.PrintDetailedMap(&writer)
	return string(writer.Bytes())
}
