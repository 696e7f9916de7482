package alloc

import (
	"errors"
	"fmt"
)

// Errors reported by allocation strategies.
var (
	// ErrAllocationFailed is matched by every allocation failure.
	ErrAllocationFailed = errors.New("allocation failed")

	// ErrCapacityOverflow indicates a requested size does not fit in an int.
	ErrCapacityOverflow = errors.New("capacity overflow")

	// ErrBudgetExceeded indicates a Limited allocator has spent its budget.
	ErrBudgetExceeded = errors.New("allocation budget exceeded")
)

// maxRegion caps a single region. Requests above it fail instead of
// crashing the runtime in makeslice.
const maxRegion = 1 << 40

// Allocator acquires and releases byte regions.
type Allocator interface {
	// Allocate returns a region with length 0 and capacity of at least size.
	Allocate(size int) ([]byte, error)

	// Release hands a region obtained from Allocate back to the strategy.
	Release(buf []byte)

	// Clone returns a handle to the same allocation service.
	Clone() Allocator
}

// Error describes an allocation request that could not be satisfied.
type Error struct {
	// Requested is the capacity that was asked for.
	Requested int
	// Err is the specific cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("alloc: cannot allocate %d bytes: %v", e.Requested, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrAllocationFailed.
func (e *Error) Is(target error) bool {
	return target == ErrAllocationFailed
}

// Default returns the strategy used when no Allocator is supplied.
func Default() Allocator {
	return Heap{}
}

// OrDefault returns a, or the default strategy when a is nil.
func OrDefault(a Allocator) Allocator {
	if a == nil {
		return Default()
	}
	return a
}

// Heap allocates straight from the Go heap. Capacity equals the request
// exactly and Release is a no-op; the garbage collector reclaims regions.
type Heap struct{}

// Allocate implements Allocator.
func (Heap) Allocate(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return make([]byte, 0, size), nil
}

// Release implements Allocator.
func (Heap) Release([]byte) {}

// Clone implements Allocator.
func (h Heap) Clone() Allocator {
	return h
}

// String returns the strategy name.
func (Heap) String() string {
	return "heap"
}

func checkSize(size int) error {
	if size < 0 || size > maxRegion {
		return &Error{Requested: size, Err: ErrCapacityOverflow}
	}
	return nil
}
