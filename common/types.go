package common

import "time"

// VersionResult describes the daemon build reported by runtime.version.
type VersionResult struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// StatsResult is a point-in-time summary of the scheduler registries.
type StatsResult struct {
	Timers   int       `json:"timers"`
	Tasks    int       `json:"tasks"`
	Ticks    uint64    `json:"ticks"`
	LastTick time.Time `json:"last_tick,omitempty"`
}

// TimerRow describes one registered timer.
type TimerRow struct {
	Id        int64     `json:"id"`
	NodeId    int64     `json:"node_id"`
	RunCount  uint64    `json:"run_count"`
	Created   time.Time `json:"created"`
	LastRun   time.Time `json:"last_run,omitempty"`
	Recurring bool      `json:"recurring"`
	Cron      string    `json:"cron,omitempty"`
}

// ListTimersResult is the response of scheduler.listTimers.
type ListTimersResult struct {
	Timers []TimerRow `json:"timers"`
}

// TaskRow describes one registered background task.
type TaskRow struct {
	Id       int64 `json:"id"`
	Finished bool  `json:"finished"`
	Pending  int   `json:"pending"`
}

// ListTasksResult is the response of scheduler.listTasks.
type ListTasksResult struct {
	Tasks []TaskRow `json:"tasks"`
}

// StopParams identifies the timer or task to remove.
type StopParams struct {
	Id int64 `json:"id"`
}

// StopResult reports whether the target existed and was removed.
type StopResult struct {
	Stopped bool `json:"stopped"`
}

// TraceParams bounds how many recorded ticks trace.recent returns.
type TraceParams struct {
	Limit int `json:"limit,omitempty"`
}

// TraceRow is one recorded tick from the trace store.
type TraceRow struct {
	At              time.Time `json:"at"`
	TimersFired     int       `json:"timers_fired"`
	TimersRemoved   int       `json:"timers_removed"`
	MessagesDrained int       `json:"messages_drained"`
	TasksFinished   int       `json:"tasks_finished"`
	Repaint         string    `json:"repaint"`
	DurationMicros  int64     `json:"duration_micros"`
}

// TraceResult is the response of trace.recent, newest tick first.
type TraceResult struct {
	Ticks []TraceRow `json:"ticks"`
}
