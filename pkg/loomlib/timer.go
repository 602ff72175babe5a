package loomlib

import (
	"sync/atomic"
	"time"

	"github.com/adhocore/gronx"
)

// TimerID identifies a registered timer.
type TimerID uint64

var lastTimerID atomic.Uint64

// NewTimerID allocates a process-unique timer id.
func NewTimerID() TimerID {
	return TimerID(lastTimerID.Add(1))
}

// TimerAction is a timer callback's verdict on its own future.
type TimerAction uint8

const (
	TimerContinue TimerAction = iota
	TimerStop
)

// TimerInfo is passed to a timer callback on every firing.
type TimerInfo struct {
	Now      time.Time
	Created  time.Time
	LastRun  time.Time
	RunCount uint64
	// NodeID is the DOM node the timer is attached to, or -1.
	NodeID int64
	// AboutToFinish is set when the timeout will expire before the next
	// scheduled firing, so this invocation is the last one.
	AboutToFinish bool
}

// TimerCallback runs synchronously on the ticking goroutine. It must
// return promptly; that goroutine is shared with every other due timer
// and with the host's event processing.
type TimerCallback func(data *Value, info TimerInfo) TimerAction

// Timer is a unit of work fired at computed due times. Without an
// interval or cron expression it fires once, at created+delay. With an
// interval the first firing lands at created+delay+interval and then
// every interval while the callback keeps returning TimerContinue. A
// timeout is an authoritative deadline measured from creation: the
// scheduler removes the timer once it elapses, regardless of the
// callback's verdict.
type Timer struct {
	id       TimerID
	data     *Value
	callback TimerCallback

	created  time.Time
	lastRun  time.Time
	runCount uint64

	delay    time.Duration
	interval time.Duration
	timeout  time.Duration

	cron     string
	cronNext time.Time

	nodeID int64
}

// NewTimer builds a one-shot timer due immediately. The caller supplies
// the creation timestamp so hosts with a frame clock stay deterministic.
// The caller keeps ownership of the data handle: the scheduler never
// drops it, not even when the timer is removed, so the caller drops its
// handle once the timer is gone. Tasks differ; see SpawnTask.
func NewTimer(data *Value, cb TimerCallback, now time.Time) *Timer {
	return &Timer{
		id:       NewTimerID(),
		data:     data,
		callback: cb,
		created:  now,
		nodeID:   -1,
	}
}

func (t *Timer) ID() TimerID    { return t.id }
func (t *Timer) Data() *Value   { return t.data }
func (t *Timer) NodeID() int64  { return t.nodeID }
func (t *Timer) RunCount() uint64 { return t.runCount }

func (t *Timer) WithDelay(d time.Duration) *Timer {
	t.delay = d
	return t
}

func (t *Timer) WithInterval(d time.Duration) *Timer {
	t.interval = d
	return t
}

func (t *Timer) WithTimeout(d time.Duration) *Timer {
	t.timeout = d
	return t
}

// WithNode attaches the timer to a DOM node so its callback receives the
// node context.
func (t *Timer) WithNode(id int64) *Timer {
	t.nodeID = id
	return t
}

// WithCron re-arms the timer on a wall-clock cron schedule instead of a
// fixed interval.
func (t *Timer) WithCron(expr string) (*Timer, error) {
	next, err := gronx.NextTickAfter(expr, t.created, false)
	if err != nil {
		return nil, ErrBadCronExpr
	}
	t.cron = expr
	t.cronNext = next
	return t, nil
}

// due reports whether the timer should fire at now.
func (t *Timer) due(now time.Time) bool {
	if t.cron != "" {
		return !now.Before(t.cronNext)
	}
	if t.interval > 0 {
		base := t.lastRun
		if t.runCount == 0 {
			base = t.created.Add(t.delay)
		}
		return !now.Before(base.Add(t.interval))
	}
	if t.runCount > 0 {
		return false
	}
	return !now.Before(t.created.Add(t.delay))
}

// expired reports whether the authoritative timeout has elapsed.
func (t *Timer) expired(now time.Time) bool {
	return t.timeout > 0 && now.Sub(t.created) >= t.timeout
}

// aboutToFinish reports whether the timeout lands before the firing
// after this one.
func (t *Timer) aboutToFinish(now time.Time) bool {
	if t.timeout <= 0 {
		return false
	}
	return now.Sub(t.created)+t.interval >= t.timeout
}

// recurring reports whether a TimerContinue verdict re-arms the timer.
func (t *Timer) recurring() bool {
	return t.interval > 0 || t.cron != ""
}

// nextDueTime answers "when should the host wake up for this timer".
// The second result is false once the timer has no further firing.
func (t *Timer) nextDueTime() (time.Time, bool) {
	if t.cron != "" {
		return t.cronNext, true
	}
	if t.interval > 0 {
		base := t.lastRun
		if t.runCount == 0 {
			base = t.created.Add(t.delay)
		}
		return base.Add(t.interval), true
	}
	if t.runCount > 0 {
		return time.Time{}, false
	}
	return t.created.Add(t.delay), true
}

// beginInvoke advances the run bookkeeping for a firing at now and
// returns the info handed to the callback. The scheduler owns the
// due/expired gating and calls this under its lock so snapshot readers
// never observe a half-updated timer.
func (t *Timer) beginInvoke(now time.Time) TimerInfo {
	info := TimerInfo{
		Now:           now,
		Created:       t.created,
		LastRun:       t.lastRun,
		RunCount:      t.runCount,
		NodeID:        t.nodeID,
		AboutToFinish: t.aboutToFinish(now),
	}
	t.lastRun = now
	t.runCount++
	if t.cron != "" {
		if next, err := gronx.NextTickAfter(t.cron, now, false); err == nil {
			t.cronNext = next
		}
	}
	return info
}
