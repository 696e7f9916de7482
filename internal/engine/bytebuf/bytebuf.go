// Package bytebuf provides a growable byte region bound to one allocation
// strategy.
//
// A Buffer knows nothing about text. It owns a single contiguous region
// obtained from its alloc.Allocator and moves to a larger or smaller region
// when asked. Every operation that needs a new region acquires it before
// touching the current one, so an allocation failure leaves the buffer exactly
// as it was.
//
// Methods named Try* return allocation failures. Their plain counterparts
// panic with the same *alloc.Error, following bytes.Buffer.
package bytebuf

import (
	"fmt"
	"math"

	"github.com/dshills/ustring/pkg/alloc"
)

// minGrowth is the smallest capacity an amortized grow produces.
const minGrowth = 16

// Buffer is a growable byte region. The zero value is an empty buffer that
// uses the default allocation strategy.
type Buffer struct {
	data  []byte // len(data) is the length, cap(data) the capacity
	alloc alloc.Allocator

	// foreign marks a region adopted from a caller rather than allocated.
	// Such regions are never handed back to the allocator.
	foreign bool
}

// New creates an empty buffer. A nil allocator means the default strategy.
func New(a alloc.Allocator) Buffer {
	return Buffer{alloc: alloc.OrDefault(a)}
}

// WithCapacity creates an empty buffer with room for at least n bytes.
func WithCapacity(n int, a alloc.Allocator) (Buffer, error) {
	b := New(a)
	if n > 0 {
		if err := b.TryReserveExact(n); err != nil {
			return Buffer{}, err
		}
	}
	return b, nil
}

// Adopt creates a buffer that takes ownership of p. The caller must not use p
// afterwards. The region is not returned to a when the buffer grows or is
// released, since a did not allocate it.
func Adopt(p []byte, a alloc.Allocator) Buffer {
	return Buffer{
		data:    p,
		alloc:   alloc.OrDefault(a),
		foreign: cap(p) > 0,
	}
}

// Allocator returns the strategy bound to the buffer.
func (b *Buffer) Allocator() alloc.Allocator {
	if b.alloc == nil {
		b.alloc = alloc.Default()
	}
	return b.alloc
}

// Bytes returns the buffer contents. The slice aliases the buffer and is
// valid only until the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes stored.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap returns the capacity of the current region.
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// TryReserve ensures room for at least additional more bytes, growing
// geometrically so repeated appends stay amortized O(1).
func (b *Buffer) TryReserve(additional int) error {
	old, err := b.grow(additional, false)
	if err != nil {
		return err
	}
	b.free(old)
	return nil
}

// TryReserveExact ensures room for at least additional more bytes without
// deliberate slack.
func (b *Buffer) TryReserveExact(additional int) error {
	old, err := b.grow(additional, true)
	if err != nil {
		return err
	}
	b.free(old)
	return nil
}

// Reserve is TryReserve that panics on allocation failure.
func (b *Buffer) Reserve(additional int) {
	must(b.TryReserve(additional))
}

// ReserveExact is TryReserveExact that panics on allocation failure.
func (b *Buffer) ReserveExact(additional int) {
	must(b.TryReserveExact(additional))
}

// ShrinkToFit moves the contents into a region sized to the length when the
// allocator can provide a smaller one. If it cannot, the capacity is left
// unchanged; the length is never affected.
func (b *Buffer) ShrinkToFit() {
	if cap(b.data) == len(b.data) {
		return
	}
	if len(b.data) == 0 {
		b.free(b.detachRegion())
		b.data = nil
		return
	}

	a := b.Allocator()
	region, err := a.Allocate(len(b.data))
	if err != nil {
		return
	}
	if cap(region) >= cap(b.data) {
		a.Release(region)
		return
	}

	region = append(region, b.data...)
	old := b.detachRegion()
	b.data = region
	b.free(old)
}

// Append appends p, growing the region if needed. p may alias the buffer.
func (b *Buffer) Append(p []byte) error {
	old, err := b.grow(len(p), false)
	if err != nil {
		return err
	}
	b.data = append(b.data, p...)
	b.free(old)
	return nil
}

// AppendString appends the bytes of s.
func (b *Buffer) AppendString(s string) error {
	old, err := b.grow(len(s), false)
	if err != nil {
		return err
	}
	b.data = append(b.data, s...)
	b.free(old)
	return nil
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) error {
	old, err := b.grow(1, false)
	if err != nil {
		return err
	}
	b.data = append(b.data, c)
	b.free(old)
	return nil
}

// Truncate shortens the buffer to n bytes. Capacity is unchanged.
// It panics if n is negative or greater than the length.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.data) {
		panic(fmt.Sprintf("bytebuf: truncation length %d out of range [0, %d]", n, len(b.data)))
	}
	b.data = b.data[:n]
}

// Splice replaces the bytes in [start, end) with repl, shifting the tail.
// It panics on an invalid range. repl must not alias the buffer.
func (b *Buffer) Splice(start, end int, repl []byte) error {
	b.checkRange(start, end)

	delta := len(repl) - (end - start)
	if delta <= 0 {
		n := copy(b.data[start:], repl)
		if delta < 0 {
			copy(b.data[start+n:], b.data[end:])
			b.data = b.data[:len(b.data)+delta]
		}
		return nil
	}

	old, err := b.grow(delta, false)
	if err != nil {
		return err
	}
	oldLen := len(b.data)
	b.data = b.data[:oldLen+delta]
	copy(b.data[end+delta:], b.data[end:oldLen])
	copy(b.data[start:], repl)
	b.free(old)
	return nil
}

// Drain removes the bytes in [start, end), shifting the tail left.
// It panics on an invalid range.
func (b *Buffer) Drain(start, end int) {
	b.checkRange(start, end)
	if start == end {
		return
	}
	n := copy(b.data[start:], b.data[end:])
	b.data = b.data[:start+n]
}

// SplitAt moves the bytes in [idx, len) into a new buffer bound to a clone of
// this buffer's allocator and keeps [0, idx). It panics if idx is out of range.
func (b *Buffer) SplitAt(idx int) (Buffer, error) {
	if idx < 0 || idx > len(b.data) {
		panic(fmt.Sprintf("bytebuf: split index %d out of range [0, %d]", idx, len(b.data)))
	}

	tail := New(b.Allocator().Clone())
	if n := len(b.data) - idx; n > 0 {
		if err := tail.TryReserveExact(n); err != nil {
			return Buffer{}, err
		}
		tail.data = append(tail.data, b.data[idx:]...)
	}
	b.data = b.data[:idx]
	return tail, nil
}

// Detach hands the region to the caller and leaves the buffer empty. The
// region is no longer tracked by the allocator.
func (b *Buffer) Detach() []byte {
	p := b.data
	b.data = nil
	b.foreign = false
	return p
}

// Release returns the region to the allocator and leaves the buffer empty.
func (b *Buffer) Release() {
	b.free(b.detachRegion())
	b.data = nil
}

// grow makes room for additional bytes. When the region has to move, the
// previous region is returned so the caller can release it after it has
// finished reading from it; nil means nothing needs releasing.
func (b *Buffer) grow(additional int, exact bool) ([]byte, error) {
	if additional < 0 {
		panic("bytebuf: negative count")
	}
	if additional <= cap(b.data)-len(b.data) {
		return nil, nil
	}
	if additional > math.MaxInt-len(b.data) {
		return nil, &alloc.Error{Requested: math.MaxInt, Err: alloc.ErrCapacityOverflow}
	}

	need := len(b.data) + additional
	newCap := need
	if !exact {
		newCap = max(need, minGrowth)
		if c := cap(b.data); c <= math.MaxInt/2 {
			newCap = max(newCap, 2*c)
		}
	}

	region, err := b.Allocator().Allocate(newCap)
	if err != nil {
		return nil, err
	}
	region = append(region, b.data...)
	old := b.detachRegion()
	b.data = region
	return old, nil
}

// detachRegion returns the current region if it should go back to the
// allocator, clearing the foreign mark either way.
func (b *Buffer) detachRegion() []byte {
	old := b.data
	if b.foreign {
		old = nil
	}
	b.foreign = false
	return old
}

func (b *Buffer) free(region []byte) {
	if cap(region) > 0 {
		b.Allocator().Release(region[:0])
	}
}

func (b *Buffer) checkRange(start, end int) {
	if start < 0 || start > end || end > len(b.data) {
		panic(fmt.Sprintf("bytebuf: range [%d, %d) out of range [0, %d]", start, end, len(b.data)))
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
