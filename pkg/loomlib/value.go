package loomlib

import (
	"sync"
	"sync/atomic"
)

// Destructor reclaims the payload of a Value. It runs exactly once, when
// the last handle of the value is dropped.
type Destructor func(data any)

// Value is a handle to a type-erased, reference-counted payload shared
// between the UI thread and background tasks. Clones of a Value alias
// the same allocation and the same borrow bookkeeping; each clone is an
// independently droppable handle. Access to the payload goes through
// Borrow/BorrowMut, which enforce the shared-xor-exclusive discipline at
// runtime and refuse with an error instead of corrupting state.
type Value struct {
	inner   *sharedInner
	borrows atomic.Int64
	dropped atomic.Bool
}

type sharedInner struct {
	typeID     uint64
	typeName   string
	destructor Destructor
	copies     atomic.Int64
	borrow     borrowState

	dataMu sync.Mutex
	data   any
}

// Wrap takes ownership of blob and returns the first handle to it.
// A destructor is mandatory: without one there is no defined reclamation
// policy, so construction is refused.
func Wrap(blob any, typeID uint64, typeName string, destructor Destructor) (*Value, error) {
	if destructor == nil {
		return nil, ErrNilDestructor
	}
	inner := &sharedInner{
		typeID:     typeID,
		typeName:   typeName,
		destructor: destructor,
		data:       blob,
	}
	inner.copies.Store(1)
	return &Value{inner: inner}, nil
}

// Clone returns a new handle aliasing the same payload. The only side
// effect is the strong-count increment. Cloning a dropped handle returns
// nil.
func (v *Value) Clone() *Value {
	if v.dropped.Load() {
		return nil
	}
	v.inner.copies.Add(1)
	return &Value{inner: v.inner}
}

// IsType reports whether the value carries the given type tag. No borrow
// is required.
func (v *Value) IsType(typeID uint64) bool {
	return v.inner.typeID == typeID
}

func (v *Value) TypeID() uint64   { return v.inner.typeID }
func (v *Value) TypeName() string { return v.inner.typeName }

// RefCount returns the current strong count across all handles.
func (v *Value) RefCount() int64 {
	return v.inner.copies.Load()
}

// Borrowed reports the live borrow counters. Diagnostic only; the result
// is stale the moment it returns.
func (v *Value) Borrowed() (shared int, exclusive bool) {
	return v.inner.borrow.snapshot()
}

// Borrow acquires an immutable borrow and checks the type tag. On a tag
// mismatch the acquired borrow is rolled back before ErrTypeMismatch is
// returned.
func (v *Value) Borrow(typeID uint64) (*Ref, error) {
	if v.dropped.Load() {
		return nil, ErrValueDropped
	}
	if err := v.inner.borrow.tryAcquireShared(); err != nil {
		return nil, err
	}
	if v.inner.typeID != typeID {
		_ = v.inner.borrow.releaseShared()
		return nil, ErrTypeMismatch
	}
	v.borrows.Add(1)
	return &Ref{v: v}, nil
}

// BorrowMut acquires the exclusive borrow and checks the type tag.
func (v *Value) BorrowMut(typeID uint64) (*RefMut, error) {
	if v.dropped.Load() {
		return nil, ErrValueDropped
	}
	if err := v.inner.borrow.tryAcquireExclusive(); err != nil {
		return nil, err
	}
	if v.inner.typeID != typeID {
		_ = v.inner.borrow.releaseExclusive()
		return nil, ErrTypeMismatch
	}
	v.borrows.Add(1)
	return &RefMut{v: v}, nil
}

// Swap replaces the payload behind a transient exclusive borrow. It
// fails with ErrValueBorrowed while any borrow is live.
func (v *Value) Swap(blob any) error {
	if v.dropped.Load() {
		return ErrValueDropped
	}
	if err := v.inner.borrow.tryAcquireExclusive(); err != nil {
		return err
	}
	v.inner.storeData(blob)
	return v.inner.borrow.releaseExclusive()
}

// Drop releases this handle. The last drop runs the destructor exactly
// once. Dropping while a borrow taken through this handle is still
// unreleased is a caller error and is refused.
func (v *Value) Drop() error {
	if v.borrows.Load() > 0 {
		return ErrBorrowOutstanding
	}
	if !v.dropped.CompareAndSwap(false, true) {
		return ErrValueDropped
	}
	if v.inner.copies.Add(-1) == 0 {
		data := v.inner.loadData()
		v.inner.storeData(nil)
		v.inner.destructor(data)
	}
	return nil
}

func (si *sharedInner) loadData() any {
	si.dataMu.Lock()
	defer si.dataMu.Unlock()
	return si.data
}

func (si *sharedInner) storeData(blob any) {
	si.dataMu.Lock()
	defer si.dataMu.Unlock()
	si.data = blob
}

// Ref is a live immutable borrow. It must be released exactly once.
type Ref struct {
	v        *Value
	released atomic.Bool
}

// Data returns the borrowed payload.
func (r *Ref) Data() any {
	return r.v.inner.loadData()
}

func (r *Ref) Release() error {
	if !r.released.CompareAndSwap(false, true) {
		return ErrBorrowNotHeld
	}
	r.v.borrows.Add(-1)
	return r.v.inner.borrow.releaseShared()
}

// RefMut is the live exclusive borrow. It must be released exactly once.
type RefMut struct {
	v        *Value
	released atomic.Bool
}

func (r *RefMut) Data() any {
	return r.v.inner.loadData()
}

// SetData replaces the payload in place.
func (r *RefMut) SetData(blob any) {
	r.v.inner.storeData(blob)
}

func (r *RefMut) Release() error {
	if !r.released.CompareAndSwap(false, true) {
		return ErrBorrowNotHeld
	}
	r.v.borrows.Add(-1)
	return r.v.inner.borrow.releaseExclusive()
}
