// Package arena implements a fixed-capacity byte arena with best-fit
// allocation and an exact-size free-block index.
//
// An Arena hands out ids for variable-length byte payloads stored inside a
// single bounded buffer. At all times the free and allocated ranges form a
// partition of the buffer: they never overlap and together cover every byte.
// Release never merges adjacent free ranges; see Coalesce for the explicit
// opt-in pass.
//
// The Arena performs no locking of its own. If multiple goroutines share one,
// every operation must be serialized behind a single mutex, since the index
// mutations inside Allocate, Release, and Update are multi-step.
package arena

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"

	"github.com/arenautils/memarena/memutil"
)

// DefaultCapacity is the arena size in bytes used by consumers that do not
// choose their own.
const DefaultCapacity = 65535

// Arena owns a fixed-size byte buffer and the bookkeeping that partitions it
// into free and allocated blocks. Create one with New.
type Arena struct {
	memory []byte
	free   *freeIndex
	table  *swiss.Map[BlockID, blockRange]
	nextID BlockID
}

var _ memutil.Validatable = &Arena{}

// New creates an Arena managing capacity bytes, all of it initially a single
// free block. The capacity is fixed for the arena's lifetime.
func New(capacity int) (*Arena, error) {
	if capacity < 1 {
		return nil, errors.Errorf("invalid arena capacity: %d", capacity)
	}

	a := &Arena{
		memory: make([]byte, capacity),
		free:   newFreeIndex(),
		table:  swiss.NewMap[BlockID, blockRange](42),
	}
	a.free.insert(blockRange{offset: 0, size: capacity})

	return a, nil
}

// Capacity returns the fixed size of the arena in bytes.
func (a *Arena) Capacity() int {
	return len(a.memory)
}

// FreeBytes returns the number of bytes not held by any allocation. A request
// of this size can still fail with ErrOutOfMemory when the bytes are spread
// across multiple free blocks.
func (a *Arena) FreeBytes() int {
	return a.free.freeBytes
}

// FreeRangeCount returns the number of distinct free blocks.
func (a *Arena) FreeRangeCount() int {
	return a.free.rangeCount
}

// AllocationCount returns the number of live allocations.
func (a *Arena) AllocationCount() int {
	return a.table.Count()
}

// IsEmpty will return true if this arena has no live allocations
func (a *Arena) IsEmpty() bool {
	return a.table.Count() == 0
}

// Allocate places the first size bytes of data into the smallest free block
// that can hold them and returns the id of the new allocation. When the
// chosen block is larger than size, the remainder becomes a new free block
// immediately after the allocation.
//
// Among free blocks of the chosen size, the most recently freed one is used.
// That tie-break is an implementation detail and not part of the contract;
// callers must not rely on the offsets it produces.
//
// Allocate returns ErrOutOfMemory when no free block is large enough and
// ErrPayloadTooShort when len(data) < size. Neither failure mutates the
// arena.
func (a *Arena) Allocate(size int, data []byte) (BlockID, error) {
	if size < 1 {
		return 0, errors.Errorf("invalid allocation size: %d", size)
	}
	if len(data) < size {
		return 0, cerrors.Wrapf(ErrPayloadTooShort, "requested %d bytes but payload holds %d", size, len(data))
	}

	memutil.DebugValidate(a)

	block, ok := a.free.takeBestFit(size)
	if !ok {
		return 0, cerrors.Wrapf(ErrOutOfMemory, "requested %d bytes with %d free", size, a.free.freeBytes)
	}

	copy(a.memory[block.offset:block.offset+size], data[:size])

	a.nextID++
	id := a.nextID
	a.table.Put(id, blockRange{offset: block.offset, size: size})

	if block.size > size {
		a.free.insert(blockRange{offset: block.offset + size, size: block.size - size})
	}

	memutil.DebugValidate(a)
	return id, nil
}

// Release frees the allocation for id. Its range is reinserted as a free
// block of the same size; neighboring free blocks are left separate. Returns
// ErrNotFound, with no mutation, if id does not map to a live allocation.
func (a *Arena) Release(id BlockID) error {
	block, ok := a.table.Get(id)
	if !ok {
		return cerrors.Wrapf(ErrNotFound, "id %d", id)
	}

	memutil.DebugValidate(a)

	a.table.Delete(id)
	a.free.insert(block)

	memutil.DebugValidate(a)
	return nil
}

// Read returns a read-only view of the bytes held by the allocation for id.
// The view aliases the arena: it stays valid only until the next Update or
// Release on the same id, and callers must not write through it. Returns
// ErrNotFound if id does not map to a live allocation.
func (a *Arena) Read(id BlockID) ([]byte, error) {
	block, ok := a.table.Get(id)
	if !ok {
		return nil, cerrors.Wrapf(ErrNotFound, "id %d", id)
	}

	return a.memory[block.offset:block.end():block.end()], nil
}

// Update overwrites the leading len(data) bytes of the allocation for id. The
// block is never grown or relocated: when data is shorter than the block, the
// trailing bytes keep their previous contents, and a payload longer than the
// block is rejected whole with ErrTooLarge. Returns ErrNotFound if id does
// not map to a live allocation. Neither failure mutates the arena.
func (a *Arena) Update(id BlockID, data []byte) error {
	block, ok := a.table.Get(id)
	if !ok {
		return cerrors.Wrapf(ErrNotFound, "id %d", id)
	}
	if len(data) > block.size {
		return cerrors.Wrapf(ErrTooLarge, "payload is %d bytes but block %d holds %d", len(data), id, block.size)
	}

	copy(a.memory[block.offset:], data)
	return nil
}
