package alloc

import (
	"fmt"
	"math/bits"
	"sync"
)

// Size class bounds for Pool.
const (
	// MinClass is the smallest region a Pool hands out.
	MinClass = 64

	// DefaultMaxPooled is the largest region a Pool recycles by default.
	DefaultMaxPooled = 64 * 1024
)

// Pool recycles regions through per-size-class sync.Pools.
// Requests are rounded up to the next power of two between MinClass and the
// pool's maximum; larger requests are served from the heap at their exact size
// and are dropped on release.
//
// A Pool is safe for concurrent use. Clones share the same classes.
type Pool struct {
	maxPooled int
	classes   []sync.Pool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMaxPooled sets the largest region size kept for reuse.
// The value is rounded up to a power of two and never below MinClass.
func WithMaxPooled(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.maxPooled = roundClass(n)
		}
	}
}

// DefaultPool is a shared pool for callers that do not need their own.
var DefaultPool = NewPool()

// NewPool creates a pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{maxPooled: DefaultMaxPooled}
	for _, opt := range opts {
		opt(p)
	}

	n := classIndex(p.maxPooled) + 1
	p.classes = make([]sync.Pool, n)
	for i := range p.classes {
		size := MinClass << i
		p.classes[i].New = func() any {
			buf := make([]byte, 0, size)
			return &buf
		}
	}
	return p
}

// MaxPooled returns the largest pooled region size.
func (p *Pool) MaxPooled() int {
	return p.maxPooled
}

// Allocate implements Allocator.
func (p *Pool) Allocate(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if size > p.maxPooled {
		return make([]byte, 0, size), nil
	}

	bp := p.classes[classIndex(size)].Get().(*[]byte)
	buf := (*bp)[:0]
	return buf, nil
}

// Release implements Allocator. Regions whose capacity is not exactly a size
// class of this pool are left to the garbage collector.
func (p *Pool) Release(buf []byte) {
	c := cap(buf)
	if c < MinClass || c > p.maxPooled || c&(c-1) != 0 {
		return
	}
	buf = buf[:0]
	p.classes[classIndex(c)].Put(&buf)
}

// Clone implements Allocator.
func (p *Pool) Clone() Allocator {
	return p
}

// String returns the strategy name.
func (p *Pool) String() string {
	return fmt.Sprintf("pool(max=%d)", p.maxPooled)
}

// roundClass rounds n up to a power of two.
func roundClass(n int) int {
	if n <= MinClass {
		return MinClass
	}
	return 1 << bits.Len(uint(n-1))
}

// classIndex maps a size to the index of the smallest class holding it.
func classIndex(size int) int {
	return bits.Len(uint(roundClass(size))) - bits.Len(uint(MinClass))
}
