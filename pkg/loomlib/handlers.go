package loomlib

import "log"

type (
	// TimerFiredHandlerFunc is called after each timer firing with the
	// timer's id, its run count after the firing and the callback's verdict.
	TimerFiredHandlerFunc func(id TimerID, runCount uint64, action TimerAction)
	// TimerRemovedHandlerFunc is called once a timer has been removed from
	// the scheduler, whatever the reason (stop verdict, timeout, one-shot).
	TimerRemovedHandlerFunc func(id TimerID)
	// TaskFinishedHandlerFunc is called when a finished task has been
	// removed from the scheduler.
	TaskFinishedHandlerFunc func(id TaskID)
	// WriteBackHandlerFunc is called after a task's writeback message has
	// been applied to its writeback value.
	WriteBackHandlerFunc func(id TaskID)
	// PanicHandlerFunc is called with the recovered value when a user
	// callback panics during a tick.
	PanicHandlerFunc func(context string, v any)
	// TickHandlerFunc is called at the end of every tick pass.
	TickHandlerFunc func(report TickReport)
)

// Handlers are the scheduler's observer hooks. All fields are optional;
// missing ones are replaced with no-ops.
type Handlers struct {
	TimerFiredHandler   TimerFiredHandlerFunc
	TimerRemovedHandler TimerRemovedHandlerFunc
	TaskFinishedHandler TaskFinishedHandlerFunc
	WriteBackHandler    WriteBackHandlerFunc
	PanicHandler        PanicHandlerFunc
	TickHandler         TickHandlerFunc
}

func (h *Handlers) setDefault(l *log.Logger) {
	if h.TimerFiredHandler == nil {
		h.TimerFiredHandler = func(id TimerID, runCount uint64, action TimerAction) {}
	}
	if h.TimerRemovedHandler == nil {
		h.TimerRemovedHandler = func(id TimerID) {}
	}
	if h.TaskFinishedHandler == nil {
		h.TaskFinishedHandler = func(id TaskID) {}
	}
	if h.WriteBackHandler == nil {
		h.WriteBackHandler = func(id TaskID) {}
	}
	if h.PanicHandler == nil {
		h.PanicHandler = func(context string, v any) {
			logf(l, "%s: panic: %v", context, v)
		}
	} else {
		panicHandler := h.PanicHandler
		h.PanicHandler = func(context string, v any) {
			logf(l, "%s: panic: %v", context, v)
			panicHandler(context, v)
		}
	}
	if h.TickHandler == nil {
		h.TickHandler = func(report TickReport) {}
	}
}

func logf(l *log.Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.Printf(format, args...)
}
