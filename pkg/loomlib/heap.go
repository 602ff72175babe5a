package loomlib

import (
	"container/heap"
	"time"
)

// dueEntry pairs a timer with its next due time for wake-up queries.
type dueEntry struct {
	id TimerID
	at time.Time
}

// dueHeap implements container/heap.Interface for dueEntry,
// sorted by at, earliest first (min-heap).
type dueHeap []dueEntry

func (h dueHeap) Len() int           { return len(h) }
func (h dueHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h dueHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *dueHeap) Push(x any) {
	*h = append(*h, x.(dueEntry))
}

func (h *dueHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPush adds a dueEntry to the heap, maintaining the heap invariant.
func heapPush(h *dueHeap, e dueEntry) {
	heap.Push(h, e)
}

// heapRemoveByID removes the first dueEntry with the given timer id.
// Returns true if the entry was found and removed, false otherwise.
func heapRemoveByID(h *dueHeap, id TimerID) bool {
	for i, e := range *h {
		if e.id == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
