// Package trace persists per-tick scheduler reports to a local SQLite
// database so the CLI can inspect recent daemon activity after the fact.
package trace

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/loomui/loom/common"
	"github.com/loomui/loom/pkg/loomlib"
)

// Store records tick reports in a SQLite database.
// All methods are safe for concurrent use; database/sql serializes access.
type Store struct {
	db   *sql.DB
	keep int
}

const schema = `CREATE TABLE IF NOT EXISTS ticks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at INTEGER NOT NULL,
	timers_fired INTEGER NOT NULL,
	timers_removed INTEGER NOT NULL,
	messages_drained INTEGER NOT NULL,
	tasks_finished INTEGER NOT NULL,
	repaint TEXT NOT NULL,
	duration_micros INTEGER NOT NULL
)`

// Open opens (creating if necessary) the trace database at path.
// keep bounds how many rows are retained; older rows are pruned on insert.
func Open(path string, keep int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open trace database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error: cannot create ticks table: %w", err)
	}
	if keep <= 0 {
		keep = 1
	}
	return &Store{db: db, keep: keep}, nil
}

// Record inserts one tick report and prunes rows beyond the retention bound.
func (s *Store) Record(report loomlib.TickReport) error {
	_, err := s.db.Exec(`INSERT INTO ticks
		(at, timers_fired, timers_removed, messages_drained, tasks_finished, repaint, duration_micros)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Now.UnixMicro(),
		report.TimersFired,
		report.TimersRemoved,
		report.MessagesDrained,
		report.TasksFinished,
		repaintLabel(report.Repaint),
		report.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("error: failed to record tick: %w", err)
	}
	_, err = s.db.Exec(`DELETE FROM ticks WHERE id <= (
		SELECT id FROM ticks ORDER BY id DESC LIMIT 1 OFFSET ?)`, s.keep)
	if err != nil {
		return fmt.Errorf("error: failed to prune ticks: %w", err)
	}
	return nil
}

// Recent returns up to limit recorded ticks, newest first.
func (s *Store) Recent(limit int) ([]common.TraceRow, error) {
	if limit <= 0 {
		limit = 32
	}
	rows, err := s.db.Query(`
		SELECT at, timers_fired, timers_removed, messages_drained, tasks_finished, repaint, duration_micros
		FROM ticks
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error: failed to query ticks: %w", err)
	}
	defer rows.Close()

	var out []common.TraceRow
	for rows.Next() {
		var (
			at  int64
			row common.TraceRow
		)
		if err := rows.Scan(&at, &row.TimersFired, &row.TimersRemoved,
			&row.MessagesDrained, &row.TasksFinished, &row.Repaint, &row.DurationMicros); err != nil {
			return nil, fmt.Errorf("error: failed to scan tick row: %w", err)
		}
		row.At = time.UnixMicro(at).UTC()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error: failed to iterate tick rows: %w", err)
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func repaintLabel(r loomlib.Repaint) string {
	if r == loomlib.RepaintDom {
		return "dom"
	}
	return "none"
}
