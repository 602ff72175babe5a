// Package daemon runs the loom scheduler as a long-lived process: it
// drives the tick loop, records tick traces, loads timer scripts and
// serves the inspection RPC surface.
package daemon

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/loomui/loom/internal/config"
	"github.com/loomui/loom/internal/script"
	"github.com/loomui/loom/internal/server"
	"github.com/loomui/loom/internal/trace"
	"github.com/loomui/loom/pkg/loomlib"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running daemon.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned when Shutdown() is called on a stopped daemon.
	ErrNotRunning = errors.New("daemon is not running")
)

// Runner owns the scheduler and everything wired around it.
type Runner struct {
	cfg     *config.Resolved
	version string
	log     *log.Logger

	sched  *loomlib.Scheduler
	traces *trace.Store
	rpc    *server.RPCServer
	srv    *server.Server

	running bool
	cancel  context.CancelFunc
	mu      sync.Mutex
}

// New assembles a runner from resolved configuration: scheduler, trace
// store (when enabled), timer scripts from the script directory, and
// the RPC server.
func New(l *log.Logger, cfg *config.Resolved, version string) (*Runner, error) {
	r := &Runner{
		cfg:     cfg,
		version: version,
		log:     l,
	}

	if cfg.TraceEnabled {
		store, err := trace.Open(cfg.TraceDBPath, cfg.TraceKeep)
		if err != nil {
			return nil, err
		}
		r.traces = store
	}

	handlers := &loomlib.Handlers{
		TickHandler: r.recordTick,
	}
	r.sched = loomlib.NewScheduler(l, handlers)

	if cfg.ScriptDir != "" {
		scripts, err := script.LoadDir(l, cfg.ScriptDir)
		if err != nil {
			r.closeStores()
			return nil, err
		}
		now := time.Now()
		for _, s := range scripts {
			timer, err := s.Timer(now)
			if err != nil {
				r.closeStores()
				return nil, err
			}
			if _, err := r.sched.AddTimer(timer); err != nil {
				r.closeStores()
				return nil, err
			}
			l.Printf("loaded timer script %s", s.Name)
		}
	}

	var traceSource server.TraceSource
	if r.traces != nil {
		traceSource = r.traces
	}
	r.rpc = server.NewRPCServer(&server.RPCConfig{
		Secret:  cfg.RPCSecret,
		Version: version,
	}, r.sched, traceSource)
	r.srv = server.NewServer(l, r.rpc, cfg.SocketPath, cfg.TCPPort, cfg.HTTPPort)

	return r, nil
}

// Scheduler exposes the runner's scheduler for host integration.
func (r *Runner) Scheduler() *loomlib.Scheduler {
	return r.sched
}

// recordTick persists the report when tracing is enabled.
// Empty ticks are skipped to keep the store focused on activity.
func (r *Runner) recordTick(report loomlib.TickReport) {
	if r.traces == nil {
		return
	}
	if report.TimersFired == 0 && report.TimersRemoved == 0 &&
		report.MessagesDrained == 0 && report.TasksFinished == 0 {
		return
	}
	if err := r.traces.Record(report); err != nil {
		r.log.Printf("trace record failed: %v", err)
	}
}

// Start runs the tick loop and the RPC server, blocking until the
// context is canceled. Returns ErrAlreadyRunning on reentry.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	loopDone := make(chan struct{})
	go r.tickLoop(ctx, loopDone)

	err := r.srv.Start(ctx)

	<-loopDone
	r.cleanup()
	return err
}

// tickLoop drives the scheduler at the configured cadence. All Tick
// calls happen on this goroutine.
func (r *Runner) tickLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.sched.Tick(now)
		}
	}
}

// Shutdown cancels the running daemon.
// Returns ErrNotRunning when the daemon is not started.
func (r *Runner) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return ErrNotRunning
	}
	r.cancel()
	return nil
}

func (r *Runner) cleanup() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	if err := r.sched.Close(); err != nil {
		r.log.Printf("scheduler close: %v", err)
	}
	r.rpc.Close()
	r.closeStores()
	r.log.Println("Daemon stopped")
}

func (r *Runner) closeStores() {
	if r.traces != nil {
		if err := r.traces.Close(); err != nil {
			r.log.Printf("trace store close: %v", err)
		}
		r.traces = nil
	}
}
