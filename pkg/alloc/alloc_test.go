package alloc

import (
	"errors"
	"sync"
	"testing"
)

func TestHeapAllocateExact(t *testing.T) {
	for _, size := range []int{0, 1, 7, 100, 4096} {
		buf, err := Heap{}.Allocate(size)
		if err != nil {
			t.Fatalf("Allocate(%d) failed: %v", size, err)
		}
		if len(buf) != 0 {
			t.Errorf("Allocate(%d) len = %d, want 0", size, len(buf))
		}
		if cap(buf) != size {
			t.Errorf("Allocate(%d) cap = %d, want %d", size, cap(buf), size)
		}
	}
}

func TestHeapAllocateOverflow(t *testing.T) {
	for _, size := range []int{-1, maxRegion + 1} {
		_, err := Heap{}.Allocate(size)
		if !errors.Is(err, ErrAllocationFailed) {
			t.Errorf("Allocate(%d) error = %v, want ErrAllocationFailed", size, err)
		}
		if !errors.Is(err, ErrCapacityOverflow) {
			t.Errorf("Allocate(%d) error = %v, want ErrCapacityOverflow", size, err)
		}
	}
}

func TestDefault(t *testing.T) {
	if _, ok := Default().(Heap); !ok {
		t.Errorf("Default() = %T, want Heap", Default())
	}
	if _, ok := OrDefault(nil).(Heap); !ok {
		t.Errorf("OrDefault(nil) = %T, want Heap", OrDefault(nil))
	}
	p := NewPool()
	if OrDefault(p) != Allocator(p) {
		t.Error("OrDefault should return a non-nil allocator unchanged")
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Requested: 42, Err: ErrBudgetExceeded}
	want := "alloc: cannot allocate 42 bytes: allocation budget exceeded"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestPoolRoundsToClass(t *testing.T) {
	pool := NewPool()
	tests := []struct {
		size int
		cap  int
	}{
		{0, 64},
		{1, 64},
		{64, 64},
		{65, 128},
		{1000, 1024},
		{DefaultMaxPooled, DefaultMaxPooled},
		{DefaultMaxPooled + 1, DefaultMaxPooled + 1},
	}
	for _, tt := range tests {
		buf, err := pool.Allocate(tt.size)
		if err != nil {
			t.Fatalf("Allocate(%d) failed: %v", tt.size, err)
		}
		if cap(buf) != tt.cap {
			t.Errorf("Allocate(%d) cap = %d, want %d", tt.size, cap(buf), tt.cap)
		}
		if len(buf) != 0 {
			t.Errorf("Allocate(%d) len = %d, want 0", tt.size, len(buf))
		}
		pool.Release(buf)
	}
}

func TestPoolReleaseResetsLength(t *testing.T) {
	pool := NewPool(WithMaxPooled(128))

	buf, _ := pool.Allocate(100)
	buf = append(buf, "some data"...)
	pool.Release(buf)

	again, _ := pool.Allocate(100)
	if len(again) != 0 {
		t.Errorf("reused region len = %d, want 0", len(again))
	}
}

func TestPoolIgnoresForeignRegions(t *testing.T) {
	pool := NewPool()
	// Neither call may panic.
	pool.Release(make([]byte, 10, 100))
	pool.Release(nil)
}

func TestWithMaxPooled(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, MinClass},
		{1000, 1024},
		{4096, 4096},
		{0, DefaultMaxPooled},
		{-5, DefaultMaxPooled},
	}
	for _, tt := range tests {
		if got := NewPool(WithMaxPooled(tt.n)).MaxPooled(); got != tt.want {
			t.Errorf("WithMaxPooled(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestPoolCloneSharesClasses(t *testing.T) {
	pool := NewPool()
	if pool.Clone() != Allocator(pool) {
		t.Error("Clone should return a handle to the same pool")
	}
}

func TestPoolConcurrent(t *testing.T) {
	pool := NewPool()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				buf, err := pool.Allocate(i*50 + j)
				if err != nil {
					t.Errorf("Allocate failed: %v", err)
					return
				}
				buf = append(buf, byte(j))
				pool.Release(buf)
			}
		}(i)
	}
	wg.Wait()
}

func TestLimitedBudget(t *testing.T) {
	l := NewLimited(100, nil)

	a, err := l.Allocate(60)
	if err != nil {
		t.Fatalf("Allocate(60) failed: %v", err)
	}
	if l.Used() != 60 {
		t.Errorf("Used() = %d, want 60", l.Used())
	}

	_, err = l.Allocate(50)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Allocate(50) error = %v, want ErrBudgetExceeded", err)
	}
	if l.Used() != 60 {
		t.Errorf("failed allocation changed Used() to %d", l.Used())
	}

	l.Release(a)
	if l.Used() != 0 {
		t.Errorf("Used() after release = %d, want 0", l.Used())
	}
	if l.Remaining() != 100 {
		t.Errorf("Remaining() = %d, want 100", l.Remaining())
	}

	if _, err := l.Allocate(100); err != nil {
		t.Errorf("Allocate(100) after release failed: %v", err)
	}
}

func TestLimitedChargesParentRounding(t *testing.T) {
	l := NewLimited(1000, NewPool())

	buf, err := l.Allocate(65)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if l.Used() != int64(cap(buf)) {
		t.Errorf("Used() = %d, want cap %d", l.Used(), cap(buf))
	}

	// 1000 - 128 left, but the pool would hand out 1024 for 900.
	if _, err := l.Allocate(900); !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("Allocate(900) error = %v, want ErrBudgetExceeded", err)
	}
	if l.Used() != int64(cap(buf)) {
		t.Errorf("rejected allocation leaked budget: Used() = %d", l.Used())
	}
}

func TestLimitedCloneSharesBudget(t *testing.T) {
	l := NewLimited(100, nil)
	c := l.Clone().(*Limited)

	if _, err := c.Allocate(80); err != nil {
		t.Fatalf("clone Allocate failed: %v", err)
	}
	if l.Used() != 80 {
		t.Errorf("original Used() = %d, want 80", l.Used())
	}
	if _, err := l.Allocate(30); !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("original Allocate(30) error = %v, want ErrBudgetExceeded", err)
	}
}

func TestLimitedConcurrent(t *testing.T) {
	l := NewLimited(10*64, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var held [][]byte
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf, err := l.Allocate(64)
			if err != nil {
				return
			}
			mu.Lock()
			held = append(held, buf)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(held) != 10 {
		t.Errorf("granted %d regions, want 10", len(held))
	}
	if l.Used() != 10*64 {
		t.Errorf("Used() = %d, want %d", l.Used(), 10*64)
	}
}
