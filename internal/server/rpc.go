// Package server exposes the daemon's scheduler over JSON-RPC 2.0.
// Clients reach it over the platform socket (Unix socket or Windows
// named pipe, with TCP fallback) or over the optional HTTP/WebSocket
// endpoint.
package server

import (
	"context"
	"runtime"
	"sort"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/loomui/loom/common"
	"github.com/loomui/loom/pkg/loomlib"
)

// Custom JSON-RPC error codes for scheduler operations.
const (
	codeTimerNotFound = jrpc2.Code(-32001)
	codeTaskNotFound  = jrpc2.Code(-32002)
	codeTraceDisabled = jrpc2.Code(-32003)
)

// TraceSource provides recorded ticks for trace.recent.
// Nil means tracing is disabled.
type TraceSource interface {
	Recent(limit int) ([]common.TraceRow, error)
}

// RPCConfig holds configuration for the JSON-RPC surface.
type RPCConfig struct {
	Secret  string // Auth token for the web endpoint (empty means web RPC disabled)
	Version string // Daemon version
}

// RPCServer manages the JSON-RPC method handlers and the HTTP bridge.
type RPCServer struct {
	bridge  jhttp.Bridge
	methods handler.Map
	secret  string
	version string
	sched   *loomlib.Scheduler
	traces  TraceSource
}

// NewRPCServer creates an RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, sched *loomlib.Scheduler, traces TraceSource) *RPCServer {
	rs := &RPCServer{
		secret:  cfg.Secret,
		version: cfg.Version,
		sched:   sched,
		traces:  traces,
	}

	rs.methods = handler.Map{
		common.MethodVersion:     handler.New(rs.runtimeVersion),
		common.MethodStats:       handler.New(rs.schedulerStats),
		common.MethodListTimers:  handler.New(rs.schedulerListTimers),
		common.MethodListTasks:   handler.New(rs.schedulerListTasks),
		common.MethodStopTimer:   handler.New(rs.schedulerStopTimer),
		common.MethodStopTask:    handler.New(rs.schedulerStopTask),
		common.MethodTraceRecent: handler.New(rs.traceRecent),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) runtimeVersion(_ context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   rs.version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}, nil
}

func (rs *RPCServer) schedulerStats(_ context.Context) (*common.StatsResult, error) {
	stats := rs.sched.Stats()
	return &common.StatsResult{
		Timers:   stats.Timers,
		Tasks:    stats.Tasks,
		Ticks:    stats.Ticks,
		LastTick: stats.LastTick,
	}, nil
}

func (rs *RPCServer) schedulerListTimers(_ context.Context) (*common.ListTimersResult, error) {
	snapshots := rs.sched.Timers()
	rows := make([]common.TimerRow, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, common.TimerRow{
			Id:        int64(s.ID),
			NodeId:    s.NodeID,
			RunCount:  s.RunCount,
			Created:   s.Created,
			LastRun:   s.LastRun,
			Recurring: s.Interval > 0 || s.Cron != "",
			Cron:      s.Cron,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Id < rows[j].Id })
	return &common.ListTimersResult{Timers: rows}, nil
}

func (rs *RPCServer) schedulerListTasks(_ context.Context) (*common.ListTasksResult, error) {
	snapshots := rs.sched.Tasks()
	rows := make([]common.TaskRow, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, common.TaskRow{
			Id:       int64(s.ID),
			Finished: s.Finished,
			Pending:  s.Pending,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Id < rows[j].Id })
	return &common.ListTasksResult{Tasks: rows}, nil
}

func (rs *RPCServer) schedulerStopTimer(_ context.Context, p *common.StopParams) (*common.StopResult, error) {
	if err := rs.sched.RemoveTimer(loomlib.TimerID(p.Id)); err != nil {
		return nil, &jrpc2.Error{Code: codeTimerNotFound, Message: err.Error()}
	}
	return &common.StopResult{Stopped: true}, nil
}

func (rs *RPCServer) schedulerStopTask(_ context.Context, p *common.StopParams) (*common.StopResult, error) {
	if err := rs.sched.RemoveTask(loomlib.TaskID(p.Id)); err != nil {
		return nil, &jrpc2.Error{Code: codeTaskNotFound, Message: err.Error()}
	}
	return &common.StopResult{Stopped: true}, nil
}

func (rs *RPCServer) traceRecent(_ context.Context, p *common.TraceParams) (*common.TraceResult, error) {
	if rs.traces == nil {
		return nil, &jrpc2.Error{Code: codeTraceDisabled, Message: "tick tracing is disabled"}
	}
	rows, err := rs.traces.Recent(p.Limit)
	if err != nil {
		return nil, err
	}
	return &common.TraceResult{Ticks: rows}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
