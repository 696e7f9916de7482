// Package alloc defines the allocation strategies that back ustring storage.
//
// An Allocator is a handle to a memory service, not the memory itself. Handles
// are cheap to copy and Clone returns a handle to the same service, so a string
// split into two halves keeps drawing from one pool or one budget.
//
// Three strategies are provided:
//
//   - Heap: plain Go heap allocation, exact sizing, never pooled. This is the
//     default used wherever a nil Allocator is passed.
//   - Pool: power-of-two size classes recycled through sync.Pool.
//   - Limited: wraps another strategy and fails once a byte budget is spent.
//
// Basic usage:
//
//	pool := alloc.NewPool(alloc.WithMaxPooled(16 << 10))
//	buf, err := pool.Allocate(100) // len 0, cap 128
//	...
//	pool.Release(buf)
//
// Regions handed out by Allocate have length zero. Callers extend them with
// append up to their capacity and must not touch a region after releasing it.
package alloc
