package arena

import (
	"github.com/google/btree"
)

// BlockID identifies a live allocation within an Arena. Ids are issued by
// Allocate in strictly increasing order starting at 1 and are never reused,
// so the zero value never refers to a live allocation.
type BlockID uint64

// blockRange is a contiguous sub-range of the arena.
type blockRange struct {
	offset int
	size   int
}

func (r blockRange) end() int {
	return r.offset + r.size
}

// sizeClass holds every free range with one exact size. The ranges slice is
// treated as a stack: insertions append, takeBestFit pops the tail.
type sizeClass struct {
	size   int
	ranges []blockRange
}

func lessSizeClass(a, b *sizeClass) bool {
	return a.size < b.size
}

const freeIndexDegree = 8

// freeIndex maps exact block sizes to the free ranges of that size, ordered
// by size so that the smallest size >= a request can be found in one ascend.
type freeIndex struct {
	classes    *btree.BTreeG[*sizeClass]
	rangeCount int
	freeBytes  int
}

func newFreeIndex() *freeIndex {
	return &freeIndex{
		classes: btree.NewG[*sizeClass](freeIndexDegree, lessSizeClass),
	}
}

func (f *freeIndex) insert(r blockRange) {
	class, ok := f.classes.Get(&sizeClass{size: r.size})
	if !ok {
		class = &sizeClass{size: r.size}
		f.classes.ReplaceOrInsert(class)
	}

	class.ranges = append(class.ranges, r)
	f.rangeCount++
	f.freeBytes += r.size
}

// takeBestFit removes and returns the most recently inserted free range of
// the smallest indexed size >= size. The second return is false when no
// indexed size is large enough.
func (f *freeIndex) takeBestFit(size int) (blockRange, bool) {
	var class *sizeClass
	f.classes.AscendGreaterOrEqual(&sizeClass{size: size}, func(c *sizeClass) bool {
		class = c
		return false
	})
	if class == nil {
		return blockRange{}, false
	}

	r := class.ranges[len(class.ranges)-1]
	class.ranges = class.ranges[:len(class.ranges)-1]
	if len(class.ranges) == 0 {
		f.classes.Delete(class)
	}

	f.rangeCount--
	f.freeBytes -= r.size
	return r, true
}

// visit calls fn once per free range, ascending by size. Within one size
// class, ranges are visited in insertion order. fn returning false stops the
// walk.
func (f *freeIndex) visit(fn func(r blockRange) bool) {
	f.classes.Ascend(func(c *sizeClass) bool {
		for _, r := range c.ranges {
			if !fn(r) {
				return false
			}
		}
		return true
	})
}
