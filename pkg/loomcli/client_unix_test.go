//go:build !windows

package loomcli

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"

	"github.com/loomui/loom/common"
)

// startFakeDaemon serves a stub method map on a unix socket and points
// the client env at it.
func startFakeDaemon(t *testing.T, methods handler.Map) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "loomd.sock")
	t.Setenv(common.SocketPathEnv, socket)
	t.Setenv(common.ForceTCPEnv, "")

	l, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			srv := jrpc2.NewServer(methods, nil)
			srv.Start(channel.Line(conn, conn))
			go func() {
				_ = srv.Wait()
				conn.Close()
			}()
		}
	}()
}

func TestClientVersion(t *testing.T) {
	startFakeDaemon(t, handler.Map{
		common.MethodVersion: handler.New(func(context.Context) (*common.VersionResult, error) {
			return &common.VersionResult{Version: "9.9.9", Platform: "test/amd64"}, nil
		}),
	})

	client, err := NewClient()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	res, err := client.Version()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if res.Version != "9.9.9" {
		t.Errorf("version: %q", res.Version)
	}
}

func TestClientStopTimerPropagatesError(t *testing.T) {
	startFakeDaemon(t, handler.Map{
		common.MethodStopTimer: handler.New(func(_ context.Context, p *common.StopParams) (*common.StopResult, error) {
			return nil, &jrpc2.Error{Code: jrpc2.Code(-32001), Message: "timer not found"}
		}),
	})

	client, err := NewClient()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if _, err := client.StopTimer(12); err == nil {
		t.Fatal("daemon error not propagated")
	}
}

func TestClientTraceRecent(t *testing.T) {
	var gotLimit int
	startFakeDaemon(t, handler.Map{
		common.MethodTraceRecent: handler.New(func(_ context.Context, p *common.TraceParams) (*common.TraceResult, error) {
			gotLimit = p.Limit
			return &common.TraceResult{Ticks: []common.TraceRow{{TimersFired: 5}}}, nil
		}),
	})

	client, err := NewClient()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	res, err := client.TraceRecent(7)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if gotLimit != 7 {
		t.Errorf("limit sent: %d", gotLimit)
	}
	if len(res.Ticks) != 1 || res.Ticks[0].TimersFired != 5 {
		t.Errorf("ticks: %+v", res.Ticks)
	}
}

func TestClientConnectFailure(t *testing.T) {
	t.Setenv(common.SocketPathEnv, filepath.Join(t.TempDir(), "absent.sock"))
	t.Setenv(common.TCPPortEnv, "1") // nothing listens on port 1
	t.Setenv(common.ForceTCPEnv, "")

	if _, err := NewClient(); err == nil {
		t.Fatal("connection to absent daemon succeeded")
	}
}

func TestTCPPortEnv(t *testing.T) {
	t.Setenv(common.TCPPortEnv, "")
	if got := tcpPort(); got != common.DefaultTCPPort {
		t.Errorf("default port: %d", got)
	}

	t.Setenv(common.TCPPortEnv, "9001")
	if got := tcpPort(); got != 9001 {
		t.Errorf("env port: %d", got)
	}

	t.Setenv(common.TCPPortEnv, "99999")
	if got := tcpPort(); got != common.DefaultTCPPort {
		t.Errorf("out-of-range port accepted: %d", got)
	}
}
