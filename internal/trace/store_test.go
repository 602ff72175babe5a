package trace

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/loomui/loom/pkg/loomlib"
)

func openTestStore(t *testing.T, keep int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "trace.db"), keep)
	if err != nil {
		t.Fatalf("open trace store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(at time.Time, fired int) loomlib.TickReport {
	return loomlib.TickReport{
		Now:             at,
		TimersFired:     fired,
		TimersRemoved:   1,
		MessagesDrained: 2,
		TasksFinished:   0,
		Repaint:         loomlib.RepaintDom,
		Duration:        250 * time.Microsecond,
	}
}

func TestStoreRecordAndRecent(t *testing.T) {
	store := openTestStore(t, 100)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := store.Record(sampleReport(base.Add(time.Duration(i)*time.Second), i)); err != nil {
			t.Fatalf("record tick %d: %v", i, err)
		}
	}

	rows, err := store.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count: got %d, want 3", len(rows))
	}
	// Newest first.
	if rows[0].TimersFired != 2 || rows[2].TimersFired != 0 {
		t.Errorf("ordering: fired=%d,%d,%d", rows[0].TimersFired, rows[1].TimersFired, rows[2].TimersFired)
	}
	if !rows[0].At.Equal(base.Add(2 * time.Second)) {
		t.Errorf("timestamp: got %v", rows[0].At)
	}
	if rows[0].Repaint != "dom" {
		t.Errorf("repaint label: %q", rows[0].Repaint)
	}
	if rows[0].DurationMicros != 250 {
		t.Errorf("duration micros: %d", rows[0].DurationMicros)
	}
}

func TestStoreRecentLimit(t *testing.T) {
	store := openTestStore(t, 100)
	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		if err := store.Record(sampleReport(base, i)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	rows, err := store.Recent(4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("limit not applied: got %d rows", len(rows))
	}
}

func TestStorePrunesBeyondRetention(t *testing.T) {
	store := openTestStore(t, 5)
	base := time.Now().UTC()
	for i := 0; i < 20; i++ {
		if err := store.Record(sampleReport(base, i)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	rows, err := store.Recent(100)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("retention: got %d rows, want 5", len(rows))
	}
	// The newest rows survive the prune.
	if rows[0].TimersFired != 19 {
		t.Errorf("newest row fired=%d, want 19", rows[0].TimersFired)
	}
}

func TestStoreReopenSeesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	store, err := Open(path, 100)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Record(sampleReport(time.Now().UTC(), 7)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path, 100)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	rows, err := reopened.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 1 || rows[0].TimersFired != 7 {
		t.Fatalf("persisted rows: %+v", rows)
	}
}
