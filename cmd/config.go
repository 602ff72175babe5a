package cmd

const DESCRIPTION = `
Loom is a cooperative timer and background-task runtime. Its daemon
drives a scheduler tick loop for delayed, repeating and cron timers
plus message-passing background tasks, and exposes everything for
inspection over a local socket.
`

const (
	DaemonDescription = `The daemon command starts the loom scheduler in the
foreground. It drives the tick loop, loads timer scripts and serves the
inspection API on the platform socket.

Example:
        loom daemon

`
	StatusDescription = `The status command prints the daemon build and a
summary of the scheduler registries.

Example:
        loom status

`
	TimersDescription = `The timers command lists every registered timer with
its id, node binding, schedule kind and run count.

Example:
        loom timers

`
	TasksDescription = `The tasks command lists every registered background
task with its id, state and pending message count.

Example:
        loom tasks

`
	StopTimerDescription = `The stop-timer command removes a timer by id. The
id can be retrieved with "loom timers".

Example:
        loom stop-timer <id>

`
	StopTaskDescription = `The stop-task command requests cooperative
termination of a background task by id. The task decides when to honor
the request; it is never killed.

Example:
        loom stop-task <id>

`
	TraceDescription = `The trace command prints recently recorded scheduler
ticks, newest first. Requires tracing to be enabled in loom.yaml.

Example:
        loom trace --limit 20

`
	DemoDescription = `The demo command runs an in-process scheduler with a
few background tasks reporting progress, rendering one progress bar per
task. Useful for a quick look at the runtime without a daemon.

Example:
        loom demo

`
)
