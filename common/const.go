package common

import "time"

// TCPHost is the host used for TCP fallback connections.
// Loopback only; the daemon is a local-machine service.
const TCPHost = "localhost"

// DefaultTCPPort is the TCP port used when a platform socket is unavailable.
const DefaultTCPPort = 4617

// DefaultDialTimeout bounds how long a client waits for the daemon socket.
const DefaultDialTimeout = 5 * time.Second

// Method names exposed by the daemon's inspection RPC surface.
const (
	MethodVersion     = "runtime.version"
	MethodStats       = "scheduler.stats"
	MethodListTimers  = "scheduler.listTimers"
	MethodListTasks   = "scheduler.listTasks"
	MethodStopTimer   = "scheduler.stopTimer"
	MethodStopTask    = "scheduler.stopTask"
	MethodTraceRecent = "trace.recent"
)
