// Package loomlib is the concurrency core of the loom toolkit: a
// type-erased, reference-counted, runtime-borrow-checked value container
// (Value) together with the message pipes, timers, background tasks and
// the per-tick scheduler that drive callbacks against it.
//
// Two execution domains exist. A single cooperative UI goroutine owns
// the Scheduler and runs timer firings and channel drains strictly
// sequentially; background tasks each run on their own goroutine and
// talk to the owner exclusively through message pipes. The only state
// shared across domains is a Value, and every access to one is gated by
// its runtime borrow state.
//
// Nothing in this package blocks the ticking goroutine, and no failure
// here is fatal to the process: borrow conflicts, type mismatches and
// disconnected channels are all reported through return values, and
// panics in user callbacks are contained.
package loomlib
