package loomlib

// Repaint is the screen refresh a message or callback requests from the
// host after its side effects have been applied.
type Repaint uint8

const (
	RepaintNone Repaint = iota
	RepaintDom
)

// WriteBackFunc merges a task's progress payload into its writeback
// value. It runs on the ticking goroutine; data is dropped by the
// scheduler after the call returns.
type WriteBackFunc func(target, data *Value) Repaint

// TaskMsgKind discriminates the closed set of task-to-owner messages.
type TaskMsgKind uint8

const (
	// TaskMsgWriteBack carries a payload plus the function that applies
	// it to the task's writeback value.
	TaskMsgWriteBack TaskMsgKind = iota
	// TaskMsgUpdate requests a repaint without carrying data.
	TaskMsgUpdate
)

// TaskMsg is a message from a background task to its owner.
type TaskMsg struct {
	Kind      TaskMsgKind
	Data      *Value
	WriteBack WriteBackFunc
	Repaint   Repaint
}

// CtrlMsgKind discriminates the closed set of owner-to-task messages.
type CtrlMsgKind uint8

const (
	// CtrlTerminate asks the task to exit. Cooperative only; the task
	// observes it at its own pace.
	CtrlTerminate CtrlMsgKind = iota
	// CtrlTick tells the task the owner completed another tick.
	CtrlTick
	// CtrlCustom carries an application-defined payload.
	CtrlCustom
)

// CtrlMsg is a control message from the owner to a background task.
type CtrlMsg struct {
	Kind CtrlMsgKind
	Data *Value
}
