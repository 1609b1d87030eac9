package arena

import (
	"golang.org/x/exp/slices"

	"github.com/arenautils/memarena/memutil"
)

// Coalesce merges every run of adjacent free blocks into a single larger free
// block and returns the number of merges performed. No other operation ever
// coalesces: Release always leaves neighboring free blocks separate, so
// alternating allocate/release workloads accumulate fragmentation until a
// consumer explicitly asks for this pass. Allocated blocks are not moved.
func (a *Arena) Coalesce() int {
	ranges := make([]blockRange, 0, a.free.rangeCount)
	a.free.visit(func(r blockRange) bool {
		ranges = append(ranges, r)
		return true
	})
	if len(ranges) < 2 {
		return 0
	}

	slices.SortFunc(ranges, func(x, y blockRange) bool {
		return x.offset < y.offset
	})

	merged := ranges[:1]
	merges := 0
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if last.end() == r.offset {
			last.size += r.size
			merges++
			continue
		}
		merged = append(merged, r)
	}
	if merges == 0 {
		return 0
	}

	a.free = newFreeIndex()
	for _, r := range merged {
		a.free.insert(r)
	}

	memutil.DebugValidate(a)
	return merges
}
