package loomlib

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestCloneDropConcurrent verifies that under concurrent clone/drop
// traffic the destructor still runs exactly once, after the last drop.
func TestCloneDropConcurrent(t *testing.T) {
	iterations := 200
	goroutines := 8
	if testing.Short() {
		iterations = 20
		goroutines = 4
	}

	for i := 0; i < iterations; i++ {
		var destroyed atomic.Int32
		v, err := Wrap(&counterBlob{}, typeCounter, "CounterState", func(any) {
			destroyed.Add(1)
		})
		if err != nil {
			t.Fatalf("Wrap failed: %v", err)
		}

		clones := make([]*Value, goroutines)
		for g := range clones {
			clones[g] = v.Clone()
		}

		var wg sync.WaitGroup
		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func(c *Value) {
				defer wg.Done()
				if ref, err := c.Borrow(typeCounter); err == nil {
					_ = ref.Data()
					_ = ref.Release()
				}
				_ = c.Drop()
			}(clones[g])
		}
		wg.Wait()

		if destroyed.Load() != 0 {
			t.Fatal("destructor ran while the original handle was still live")
		}
		if err := v.Drop(); err != nil {
			t.Fatalf("final drop: %v", err)
		}
		if got := destroyed.Load(); got != 1 {
			t.Fatalf("destructor ran %d times, want 1", got)
		}
	}
}

// TestBorrowAcrossThreads mimics the writeback pattern: the owning
// goroutine takes exclusive borrows while a worker takes shared borrows
// of the same value. Neither side may observe the other mid-access.
func TestBorrowAcrossThreads(t *testing.T) {
	iterations := 500
	if testing.Short() {
		iterations = 50
	}

	v, err := Wrap(&counterBlob{}, typeCounter, "CounterState", func(any) {})
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	worker := v.Clone()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			mut, err := v.BorrowMut(typeCounter)
			if err != nil {
				continue
			}
			blob := mut.Data().(*counterBlob)
			blob.n++
			_ = mut.Release()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			ref, err := worker.Borrow(typeCounter)
			if err != nil {
				continue
			}
			_ = ref.Data().(*counterBlob).n
			_ = ref.Release()
		}
	}()
	wg.Wait()

	if err := worker.Drop(); err != nil {
		t.Fatalf("drop worker clone: %v", err)
	}
	if err := v.Drop(); err != nil {
		t.Fatalf("drop original: %v", err)
	}
	// No panic and no race = success
}
