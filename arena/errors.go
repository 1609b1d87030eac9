package arena

import "github.com/pkg/errors"

// ErrOutOfMemory is the error returned from Allocate when no free block in the
// arena is large enough for the requested size
var ErrOutOfMemory error = errors.New("no free block is large enough for the requested size")

// ErrNotFound is the error returned from Release, Read, or Update when the
// provided id does not map to a live allocation
var ErrNotFound error = errors.New("no allocated block exists with the provided id")

// ErrTooLarge is the error returned from Update when the payload exceeds the
// size of the allocated block
var ErrTooLarge error = errors.New("payload does not fit in the allocated block")

// ErrPayloadTooShort is the error returned from Allocate when the payload
// holds fewer bytes than the requested size
var ErrPayloadTooShort error = errors.New("payload is shorter than the requested size")
