package loomlib

import (
	"fmt"
	"log"
	"sync/atomic"
)

// TaskID identifies a registered background task.
type TaskID uint64

var lastTaskID atomic.Uint64

// NewTaskID allocates a process-unique task id.
func NewTaskID() TaskID {
	return TaskID(lastTaskID.Add(1))
}

// TaskContext is everything a background task callback gets to work
// with: exclusive ownership of its initial data plus both ends of its
// communication with the owner.
type TaskContext struct {
	// Data is the task-local state. The task owns it outright and should
	// drop it before returning.
	Data *Value
	// Sender feeds progress and writeback messages to the owner.
	Sender *Sender[TaskMsg]
	// Receiver carries control messages from the owner.
	Receiver *Receiver[CtrlMsg]
}

// ShouldStop drains pending control messages and reports whether a
// terminate directive arrived. Non-terminate messages are consumed.
func (c *TaskContext) ShouldStop() bool {
	stop := false
	for {
		msg, ok := c.Receiver.TryRecv()
		if !ok {
			return stop
		}
		if msg.Kind == CtrlTerminate {
			stop = true
		}
	}
}

// TaskCallback is the body of a background task. It runs on its own
// goroutine and may block freely; cancellation is cooperative via the
// context's receiver.
type TaskCallback func(ctx *TaskContext)

// Task is the owner-side handle of a background task.
type Task struct {
	id        TaskID
	writeback *Value
	sender    *Sender[CtrlMsg]
	receiver  *Receiver[TaskMsg]
	done      chan struct{}
}

// SpawnTask starts cb on a dedicated goroutine. The task takes ownership
// of initial; writeback stays owner-side and may be borrowed
// concurrently (subject to its borrow state) while the task runs.
func SpawnTask(l *log.Logger, initial, writeback *Value, cb TaskCallback) *Task {
	outSend, outRecv := NewPipe[TaskMsg]()
	inSend, inRecv := NewPipe[CtrlMsg]()
	t := &Task{
		id:        NewTaskID(),
		writeback: writeback,
		sender:    inSend,
		receiver:  outRecv,
		done:      make(chan struct{}),
	}
	ctx := &TaskContext{
		Data:     initial,
		Sender:   outSend,
		Receiver: inRecv,
	}
	safeGo(l, nil, fmt.Sprintf("task %d", t.id), nil, func() {
		defer close(t.done)
		defer inRecv.Close()
		cb(ctx)
	})
	return t
}

func (t *Task) ID() TaskID { return t.id }

// Writeback returns the value the task reports progress into.
func (t *Task) Writeback() *Value { return t.writeback }

// Send delivers a control message to the task. False once the task's
// receiving end is gone.
func (t *Task) Send(msg CtrlMsg) bool {
	return t.sender.Send(msg)
}

// TryRecv polls the task's outbound messages without blocking.
func (t *Task) TryRecv() (TaskMsg, bool) {
	return t.receiver.TryRecv()
}

// Stop sends the terminate directive. The task decides when to honor it;
// there is no forced termination.
func (t *Task) Stop() bool {
	return t.Send(CtrlMsg{Kind: CtrlTerminate})
}

// IsFinished reports whether the task goroutine has returned.
func (t *Task) IsFinished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// shutdown detaches the owner side after the task has been removed from
// the scheduler. Remaining queued messages are discarded and the task's
// writeback handle is dropped.
func (t *Task) shutdown() {
	t.receiver.Close()
	if t.writeback != nil {
		_ = t.writeback.Drop()
		t.writeback = nil
	}
}
