package loomlib

import (
	"testing"
)

const (
	typeCounter uint64 = 7001
	typeLabel   uint64 = 7002
)

type counterBlob struct {
	n int
}

// newCounterValue is a helper building a wrapped counter blob and a
// pointer to the destructor invocation count.
func newCounterValue(t *testing.T) (*Value, *int) {
	t.Helper()
	destroyed := 0
	v, err := Wrap(&counterBlob{}, typeCounter, "CounterState", func(any) {
		destroyed++
	})
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	return v, &destroyed
}

func TestWrapRequiresDestructor(t *testing.T) {
	_, err := Wrap(&counterBlob{}, typeCounter, "CounterState", nil)
	if err != ErrNilDestructor {
		t.Fatalf("Wrap without destructor: got %v, want ErrNilDestructor", err)
	}
}

func TestDestructorRunsExactlyOnceAfterLastDrop(t *testing.T) {
	v, destroyed := newCounterValue(t)

	c1 := v.Clone()
	c2 := v.Clone()
	if got := v.RefCount(); got != 3 {
		t.Fatalf("refcount after two clones: got %d, want 3", got)
	}

	if err := c1.Drop(); err != nil {
		t.Fatalf("drop clone 1: %v", err)
	}
	if *destroyed != 0 {
		t.Fatal("destructor ran before last drop")
	}
	if err := v.Drop(); err != nil {
		t.Fatalf("drop original: %v", err)
	}
	if *destroyed != 0 {
		t.Fatal("destructor ran before last drop")
	}
	if err := c2.Drop(); err != nil {
		t.Fatalf("drop clone 2: %v", err)
	}
	if *destroyed != 1 {
		t.Fatalf("destructor ran %d times, want 1", *destroyed)
	}
}

func TestDoubleDrop(t *testing.T) {
	v, _ := newCounterValue(t)
	if err := v.Drop(); err != nil {
		t.Fatalf("first drop: %v", err)
	}
	if err := v.Drop(); err != ErrValueDropped {
		t.Fatalf("second drop: got %v, want ErrValueDropped", err)
	}
	if v.Clone() != nil {
		t.Fatal("clone of dropped handle should be nil")
	}
}

func TestIsType(t *testing.T) {
	v, _ := newCounterValue(t)
	defer v.Drop()

	if !v.IsType(typeCounter) {
		t.Error("IsType rejected the value's own tag")
	}
	if v.IsType(typeLabel) {
		t.Error("IsType accepted a foreign tag")
	}
	if v.TypeName() != "CounterState" {
		t.Errorf("TypeName: got %q", v.TypeName())
	}
}

func TestBorrowTypeMismatchRollsBack(t *testing.T) {
	v, _ := newCounterValue(t)
	defer v.Drop()

	if _, err := v.Borrow(typeLabel); err != ErrTypeMismatch {
		t.Fatalf("borrow with wrong tag: got %v, want ErrTypeMismatch", err)
	}

	// The failed borrow must not leave a shared borrow behind, so an
	// exclusive borrow has to succeed now.
	ref, err := v.BorrowMut(typeCounter)
	if err != nil {
		t.Fatalf("exclusive borrow after failed typed borrow: %v", err)
	}
	if err := ref.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestBorrowConflicts(t *testing.T) {
	v, _ := newCounterValue(t)
	defer v.Drop()

	shared, err := v.Borrow(typeCounter)
	if err != nil {
		t.Fatalf("shared borrow: %v", err)
	}
	if _, err := v.BorrowMut(typeCounter); err != ErrValueBorrowed {
		t.Fatalf("exclusive during shared: got %v, want ErrValueBorrowed", err)
	}
	if err := shared.Release(); err != nil {
		t.Fatalf("release shared: %v", err)
	}

	mut, err := v.BorrowMut(typeCounter)
	if err != nil {
		t.Fatalf("exclusive borrow: %v", err)
	}
	if _, err := v.Borrow(typeCounter); err != ErrValueBorrowedMut {
		t.Fatalf("shared during exclusive: got %v, want ErrValueBorrowedMut", err)
	}
	if err := mut.Release(); err != nil {
		t.Fatalf("release exclusive: %v", err)
	}
}

func TestBorrowSeesClonesState(t *testing.T) {
	v, _ := newCounterValue(t)
	clone := v.Clone()
	defer v.Drop()

	mut, err := v.BorrowMut(typeCounter)
	if err != nil {
		t.Fatalf("exclusive borrow: %v", err)
	}
	// Borrow state is shared across clones, not per handle.
	if _, err := clone.Borrow(typeCounter); err != ErrValueBorrowedMut {
		t.Fatalf("borrow through clone during exclusive: got %v, want ErrValueBorrowedMut", err)
	}
	if err := mut.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := clone.Drop(); err != nil {
		t.Fatalf("drop clone: %v", err)
	}
}

func TestMutationThroughExclusiveBorrow(t *testing.T) {
	v, _ := newCounterValue(t)
	defer v.Drop()

	mut, err := v.BorrowMut(typeCounter)
	if err != nil {
		t.Fatalf("exclusive borrow: %v", err)
	}
	state := mut.Data().(*counterBlob)
	state.n = 41
	mut.SetData(&counterBlob{n: state.n + 1})
	if err := mut.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	ref, err := v.Borrow(typeCounter)
	if err != nil {
		t.Fatalf("shared borrow: %v", err)
	}
	if got := ref.Data().(*counterBlob).n; got != 42 {
		t.Errorf("payload after SetData: got %d, want 42", got)
	}
	if err := ref.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestDropWithOutstandingBorrow(t *testing.T) {
	v, _ := newCounterValue(t)

	ref, err := v.Borrow(typeCounter)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if err := v.Drop(); err != ErrBorrowOutstanding {
		t.Fatalf("drop with live borrow: got %v, want ErrBorrowOutstanding", err)
	}
	if err := ref.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := v.Drop(); err != nil {
		t.Fatalf("drop after release: %v", err)
	}
}

func TestReleaseTwice(t *testing.T) {
	v, _ := newCounterValue(t)
	defer v.Drop()

	ref, err := v.Borrow(typeCounter)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if err := ref.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := ref.Release(); err != ErrBorrowNotHeld {
		t.Fatalf("second release: got %v, want ErrBorrowNotHeld", err)
	}
}

func TestSwap(t *testing.T) {
	v, _ := newCounterValue(t)
	defer v.Drop()

	if err := v.Swap(&counterBlob{n: 9}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	ref, err := v.Borrow(typeCounter)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if got := ref.Data().(*counterBlob).n; got != 9 {
		t.Errorf("payload after swap: got %d, want 9", got)
	}
	if err := ref.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestSwapRefusedWhileBorrowed(t *testing.T) {
	v, _ := newCounterValue(t)
	defer v.Drop()

	ref, err := v.Borrow(typeCounter)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if err := v.Swap(&counterBlob{}); err != ErrValueBorrowed {
		t.Fatalf("swap during borrow: got %v, want ErrValueBorrowed", err)
	}
	if err := ref.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}
