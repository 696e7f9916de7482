package alloc

import (
	"fmt"
	"sync/atomic"
)

// budget is shared by a Limited allocator and all of its clones.
type budget struct {
	limit int64
	used  atomic.Int64
}

// Limited enforces a byte budget on top of another strategy.
// Capacity is charged when a region is allocated and credited when it is
// released. A Limited allocator is safe for concurrent use.
type Limited struct {
	parent Allocator
	budget *budget
}

// NewLimited creates an allocator that refuses to hold more than limit bytes
// at once. A nil parent means the default strategy.
func NewLimited(limit int64, parent Allocator) *Limited {
	return &Limited{
		parent: OrDefault(parent),
		budget: &budget{limit: limit},
	}
}

// Allocate implements Allocator.
func (l *Limited) Allocate(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if int64(size) > l.Remaining() {
		return nil, &Error{Requested: size, Err: ErrBudgetExceeded}
	}

	buf, err := l.parent.Allocate(size)
	if err != nil {
		return nil, err
	}

	// The parent may round up, so charge what was actually handed out.
	charge := int64(cap(buf))
	for {
		used := l.budget.used.Load()
		if used+charge > l.budget.limit {
			l.parent.Release(buf)
			return nil, &Error{Requested: size, Err: ErrBudgetExceeded}
		}
		if l.budget.used.CompareAndSwap(used, used+charge) {
			return buf, nil
		}
	}
}

// Release implements Allocator.
func (l *Limited) Release(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	l.budget.used.Add(-int64(cap(buf)))
	l.parent.Release(buf)
}

// Clone implements Allocator. The clone shares this allocator's budget.
func (l *Limited) Clone() Allocator {
	return &Limited{parent: l.parent.Clone(), budget: l.budget}
}

// Limit returns the configured budget in bytes.
func (l *Limited) Limit() int64 {
	return l.budget.limit
}

// Used returns the bytes currently charged against the budget.
func (l *Limited) Used() int64 {
	return l.budget.used.Load()
}

// Remaining returns the bytes still available.
func (l *Limited) Remaining() int64 {
	return l.budget.limit - l.budget.used.Load()
}

// String returns the strategy name.
func (l *Limited) String() string {
	return fmt.Sprintf("limited(%d, %v)", l.budget.limit, l.parent)
}
