package cmd

import (
	"testing"
	"time"

	"github.com/loomui/loom/common"
)

func testBuildArgs() BuildArgs {
	return BuildArgs{
		Version:   "0.0.1",
		BuildType: "test",
		Date:      "2026-01-01",
		Commit:    "deadbeef",
	}
}

func TestExecuteVersion(t *testing.T) {
	if err := Execute([]string{"loom", "version"}, testBuildArgs()); err != nil {
		t.Fatalf("version: %v", err)
	}
}

func TestExecuteUnknownDaemon(t *testing.T) {
	// With no daemon listening every client command reports the error
	// and exits cleanly.
	t.Setenv(common.SocketPathEnv, "/nonexistent/loomd.sock")
	t.Setenv(common.TCPPortEnv, "1")
	for _, args := range [][]string{
		{"loom", "status"},
		{"loom", "timers"},
		{"loom", "tasks"},
		{"loom", "stop-timer", "1"},
		{"loom", "trace"},
	} {
		if err := Execute(args, testBuildArgs()); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
}

func TestExecuteStopTimerBadId(t *testing.T) {
	if err := Execute([]string{"loom", "stop-timer", "abc"}, testBuildArgs()); err != nil {
		t.Fatalf("bad id: %v", err)
	}
}

func TestBeaut(t *testing.T) {
	if got := beaut("ab", 6); len(got) != 6 {
		t.Errorf("beaut width: %q", got)
	}
	if got := beaut("abc", 6); len(got) != 6 {
		t.Errorf("beaut odd width: %q", got)
	}
}

func TestScheduleLabel(t *testing.T) {
	if got := scheduleLabel(common.TimerRow{Cron: "* * * * *"}); got != "* * * * *" {
		t.Errorf("cron label: %q", got)
	}
	if got := scheduleLabel(common.TimerRow{Recurring: true}); got != "interval" {
		t.Errorf("interval label: %q", got)
	}
	if got := scheduleLabel(common.TimerRow{Created: time.Now()}); got != "one-shot" {
		t.Errorf("one-shot label: %q", got)
	}
}
