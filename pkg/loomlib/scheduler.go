package loomlib

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// TickReport summarizes one drain-and-fire pass.
type TickReport struct {
	Now             time.Time
	TimersFired     int
	TimersRemoved   int
	MessagesDrained int
	TasksFinished   int
	Repaint         Repaint
	Duration        time.Duration
}

// SchedulerStats is a point-in-time view of the registries.
type SchedulerStats struct {
	Timers   int
	Tasks    int
	Ticks    uint64
	LastTick time.Time
}

// TimerSnapshot is a read-only view of a registered timer.
type TimerSnapshot struct {
	ID       TimerID
	RunCount uint64
	Created  time.Time
	LastRun  time.Time
	Delay    time.Duration
	Interval time.Duration
	Timeout  time.Duration
	Cron     string
	NodeID   int64
}

// TaskSnapshot is a read-only view of a registered task.
type TaskSnapshot struct {
	ID       TaskID
	Finished bool
	Pending  int // messages queued on the task-to-owner pipe
}

// Scheduler is the registry and per-tick driver for all live timers and
// background tasks. It is owned by the host's event loop: Tick must be
// called from a single goroutine, with the caller supplying the
// timestamp. Registration and removal may come from any goroutine; when
// they land during a running tick they are deferred and applied after
// the pass, so the set being iterated is never mutated mid-pass.
type Scheduler struct {
	l        *log.Logger
	handlers *Handlers

	timerByID VMap[TimerID, *Timer]
	taskByID  VMap[TaskID, *Task]

	mu        sync.Mutex
	timers    []*Timer // insertion order, authoritative for firing
	taskOrder []TaskID
	due       dueHeap
	ticking   bool
	deferred  []func()
	closed    bool
	ticks     uint64
	lastTick  time.Time
}

// NewScheduler creates a scheduler. handlers may be nil; missing hooks
// become no-ops.
func NewScheduler(l *log.Logger, handlers *Handlers) *Scheduler {
	if handlers == nil {
		handlers = &Handlers{}
	}
	handlers.setDefault(l)
	return &Scheduler{
		l:         l,
		handlers:  handlers,
		timerByID: NewVMap[TimerID, *Timer](),
		taskByID:  NewVMap[TaskID, *Task](),
	}
}

// AddTimer registers a timer. During a tick the registration is deferred
// to the end of the pass, so the timer cannot fire on the tick that
// registered it.
func (s *Scheduler) AddTimer(t *Timer) (TimerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSchedulerClosed
	}
	if s.ticking {
		s.deferred = append(s.deferred, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.closed {
				s.addTimerLocked(t)
			}
		})
		return t.id, nil
	}
	s.addTimerLocked(t)
	return t.id, nil
}

func (s *Scheduler) addTimerLocked(t *Timer) {
	s.timers = append(s.timers, t)
	s.timerByID.Set(t.id, t)
	if at, ok := t.nextDueTime(); ok {
		heapPush(&s.due, dueEntry{id: t.id, at: at})
	}
}

// RemoveTimer deregisters a timer. Unknown ids are an error except
// during a tick, where the removal is deferred and resolved later.
// The timer's data handle stays with the caller; see NewTimer.
func (s *Scheduler) RemoveTimer(id TimerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSchedulerClosed
	}
	if s.ticking {
		s.deferred = append(s.deferred, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.removeTimerLocked(id) {
				s.handlers.TimerRemovedHandler(id)
			}
		})
		return nil
	}
	if !s.removeTimerLocked(id) {
		return ErrTimerNotFound
	}
	s.handlers.TimerRemovedHandler(id)
	return nil
}

func (s *Scheduler) removeTimerLocked(id TimerID) bool {
	if _, ok := s.timerByID.GetOk(id); !ok {
		return false
	}
	s.timerByID.Delete(id)
	heapRemoveByID(&s.due, id)
	for i, t := range s.timers {
		if t.id == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			break
		}
	}
	return true
}

// SpawnTask starts a background task and registers it. The scheduler
// drains its messages and applies writebacks on every tick until the
// task finishes.
func (s *Scheduler) SpawnTask(initial, writeback *Value, cb TaskCallback) (TaskID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSchedulerClosed
	}
	t := SpawnTask(s.l, initial, writeback, cb)
	if s.ticking {
		s.deferred = append(s.deferred, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed {
				t.Stop()
				return
			}
			s.addTaskLocked(t)
		})
		return t.id, nil
	}
	s.addTaskLocked(t)
	return t.id, nil
}

func (s *Scheduler) addTaskLocked(t *Task) {
	s.taskOrder = append(s.taskOrder, t.id)
	s.taskByID.Set(t.id, t)
}

// RemoveTask sends the terminate directive to a task and drops it from
// the registry. The task goroutine keeps running until it honors the
// stop request; there is no forced termination.
func (s *Scheduler) RemoveTask(id TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSchedulerClosed
	}
	if s.ticking {
		s.deferred = append(s.deferred, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.removeTaskLocked(id, true)
		})
		return nil
	}
	if !s.removeTaskLocked(id, true) {
		return ErrTaskNotFound
	}
	return nil
}

func (s *Scheduler) removeTaskLocked(id TaskID, stop bool) bool {
	t, ok := s.taskByID.GetOk(id)
	if !ok {
		return false
	}
	s.taskByID.Delete(id)
	for i, tid := range s.taskOrder {
		if tid == id {
			s.taskOrder = append(s.taskOrder[:i], s.taskOrder[i+1:]...)
			break
		}
	}
	if stop {
		t.Stop()
	}
	t.shutdown()
	return true
}

// Tick runs one drain-and-fire pass: task channels are drained and
// writebacks applied, finished tasks are removed, due timers fire in
// insertion order, and mutations requested during the pass are applied
// at the end. Nothing here blocks.
func (s *Scheduler) Tick(now time.Time) TickReport {
	started := time.Now()
	report := TickReport{Now: now}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return report
	}
	s.ticking = true
	timers := append([]*Timer(nil), s.timers...)
	tasks := make([]*Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		if t, ok := s.taskByID.GetOk(id); ok {
			tasks = append(tasks, t)
		}
	}
	s.mu.Unlock()

	s.drainTasks(tasks, &report)
	s.fireTimers(timers, now, &report)

	s.mu.Lock()
	s.ticking = false
	deferred := s.deferred
	s.deferred = nil
	s.ticks++
	s.lastTick = now
	s.mu.Unlock()

	for _, apply := range deferred {
		apply()
	}

	report.Duration = time.Since(started)
	s.handlers.TickHandler(report)
	return report
}

func (s *Scheduler) drainTasks(tasks []*Task, report *TickReport) {
	var finished []TaskID
	for _, t := range tasks {
		t.Send(CtrlMsg{Kind: CtrlTick})
		for {
			msg, ok := t.TryRecv()
			if !ok {
				break
			}
			report.MessagesDrained++
			switch msg.Kind {
			case TaskMsgWriteBack:
				s.applyWriteBack(t, msg, report)
			case TaskMsgUpdate:
				if msg.Repaint > report.Repaint {
					report.Repaint = msg.Repaint
				}
			}
		}
		if t.IsFinished() {
			finished = append(finished, t.id)
		}
	}
	if len(finished) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range finished {
		s.removeTaskLocked(id, false)
	}
	s.mu.Unlock()
	for _, id := range finished {
		report.TasksFinished++
		s.handlers.TaskFinishedHandler(id)
	}
}

func (s *Scheduler) applyWriteBack(t *Task, msg TaskMsg, report *TickReport) {
	defer func() {
		if msg.Data != nil {
			_ = msg.Data.Drop()
		}
		if r := recover(); r != nil {
			s.handlers.PanicHandler(fmt.Sprintf("task %d writeback", t.id), r)
		}
	}()
	if msg.WriteBack == nil {
		return
	}
	repaint := msg.WriteBack(t.writeback, msg.Data)
	if repaint > report.Repaint {
		report.Repaint = repaint
	}
	s.handlers.WriteBackHandler(t.id)
}

func (s *Scheduler) fireTimers(timers []*Timer, now time.Time, report *TickReport) {
	var removed []TimerID
	for _, t := range timers {
		expired := t.expired(now)
		if !t.due(now) {
			if expired {
				removed = append(removed, t.id)
			}
			continue
		}
		action := s.fireTimer(t, now, report)
		if action == TimerStop || expired || t.expired(now) || !t.recurring() {
			removed = append(removed, t.id)
			continue
		}
		s.mu.Lock()
		heapRemoveByID(&s.due, t.id)
		if at, ok := t.nextDueTime(); ok {
			heapPush(&s.due, dueEntry{id: t.id, at: at})
		}
		s.mu.Unlock()
	}
	if len(removed) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range removed {
		s.removeTimerLocked(id)
	}
	s.mu.Unlock()
	for _, id := range removed {
		report.TimersRemoved++
		s.handlers.TimerRemovedHandler(id)
	}
}

// fireTimer invokes one due timer, containing callback panics. A panic
// counts as a TimerStop verdict.
func (s *Scheduler) fireTimer(t *Timer, now time.Time, report *TickReport) (action TimerAction) {
	s.mu.Lock()
	info := t.beginInvoke(now)
	runCount := t.runCount
	s.mu.Unlock()

	action = TimerStop
	defer func() {
		if r := recover(); r != nil {
			s.handlers.PanicHandler(fmt.Sprintf("timer %d", t.id), r)
			return
		}
		report.TimersFired++
		s.handlers.TimerFiredHandler(t.id, runCount, action)
	}()
	action = t.callback(t.data, info)
	return action
}

// NextDue returns the earliest upcoming timer deadline, so a host that
// has nothing else to do can sleep until then instead of polling.
func (s *Scheduler) NextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.due) == 0 {
		return time.Time{}, false
	}
	return s.due[0].at, true
}

// Timers returns snapshots of all registered timers in insertion order.
func (s *Scheduler) Timers() []TimerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TimerSnapshot, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, TimerSnapshot{
			ID:       t.id,
			RunCount: t.runCount,
			Created:  t.created,
			LastRun:  t.lastRun,
			Delay:    t.delay,
			Interval: t.interval,
			Timeout:  t.timeout,
			Cron:     t.cron,
			NodeID:   t.nodeID,
		})
	}
	return out
}

// Tasks returns snapshots of all registered tasks in insertion order.
func (s *Scheduler) Tasks() []TaskSnapshot {
	s.mu.Lock()
	order := append([]TaskID(nil), s.taskOrder...)
	s.mu.Unlock()
	out := make([]TaskSnapshot, 0, len(order))
	for _, id := range order {
		if t, ok := s.taskByID.GetOk(id); ok {
			out = append(out, TaskSnapshot{
				ID:       id,
				Finished: t.IsFinished(),
				Pending:  t.receiver.Len(),
			})
		}
	}
	return out
}

// Stats reports registry sizes and tick progress.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStats{
		Timers:   len(s.timers),
		Tasks:    len(s.taskOrder),
		Ticks:    s.ticks,
		LastTick: s.lastTick,
	}
}

// Close stops accepting registrations, asks every live task to
// terminate and clears both registries. Task goroutines exit at their
// own pace.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSchedulerClosed
	}
	s.closed = true
	for _, id := range s.taskOrder {
		if t, ok := s.taskByID.GetOk(id); ok {
			t.Stop()
			t.shutdown()
		}
	}
	s.taskOrder = nil
	s.taskByID.Make()
	s.timers = nil
	s.timerByID.Make()
	s.due = nil
	return nil
}
