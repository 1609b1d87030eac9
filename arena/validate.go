package arena

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Validate performs internal consistency checks on the arena: the free and
// allocated ranges must be pairwise disjoint and together cover every byte of
// the buffer exactly once, and the free index's bookkeeping must match the
// ranges it holds. When the implementation is functioning correctly, it
// should not be possible for this method to return an error.
//
// Validate walks every range and so costs O(n log n) in the number of blocks.
// It runs automatically around every mutating operation when built with the
// debug_mem_arena tag.
func (a *Arena) Validate() error {
	type span struct {
		offset int
		size   int
		free   bool
	}
	spans := make([]span, 0, a.free.rangeCount+a.table.Count())

	var classErr error
	var rangeCount, freeBytes int
	a.free.classes.Ascend(func(c *sizeClass) bool {
		if len(c.ranges) == 0 {
			classErr = errors.Errorf("size class %d is indexed but holds no ranges", c.size)
			return false
		}

		for _, r := range c.ranges {
			if r.size != c.size {
				classErr = errors.Errorf("free range at offset %d has size %d but is indexed under size class %d", r.offset, r.size, c.size)
				return false
			}
			spans = append(spans, span{offset: r.offset, size: r.size, free: true})
			rangeCount++
			freeBytes += r.size
		}
		return true
	})
	if classErr != nil {
		return classErr
	}

	if rangeCount != a.free.rangeCount {
		return errors.Errorf("the free index lists %d ranges, but its classes only added up to %d", a.free.rangeCount, rangeCount)
	}
	if freeBytes != a.free.freeBytes {
		return errors.Errorf("the free index lists %d free bytes, but its classes only added up to %d", a.free.freeBytes, freeBytes)
	}

	var idErr error
	a.table.Iter(func(id BlockID, r blockRange) bool {
		if id == 0 || id > a.nextID {
			idErr = errors.Errorf("allocated block has id %d, outside the issued range [1, %d]", id, a.nextID)
			return true
		}
		spans = append(spans, span{offset: r.offset, size: r.size})
		return false
	})
	if idErr != nil {
		return idErr
	}

	slices.SortFunc(spans, func(x, y span) bool {
		return x.offset < y.offset
	})

	next := 0
	for _, s := range spans {
		if s.size < 1 {
			return errors.Errorf("range at offset %d has invalid size %d", s.offset, s.size)
		}
		if s.offset < next {
			return errors.Errorf("range at offset %d overlaps the range ending at %d", s.offset, next)
		}
		if s.offset > next {
			return errors.Errorf("no range covers [%d, %d)", next, s.offset)
		}
		next += s.size
	}

	if next != len(a.memory) {
		return errors.Errorf("ranges cover %d bytes but the arena holds %d", next, len(a.memory))
	}

	return nil
}
