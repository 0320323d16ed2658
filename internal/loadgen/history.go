package loadgen

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History persists one summary row per run into a local sqlite file.
// Best-effort: callers log and continue if persistence fails.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history database: %w", err)
	}
	h := &History{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		target TEXT NOT NULL,
		duration_seconds REAL NOT NULL,
		concurrency INTEGER NOT NULL,
		target_rps INTEGER NOT NULL,
		total_requests INTEGER NOT NULL,
		successful_requests INTEGER NOT NULL,
		failed_requests INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		actual_rps REAL NOT NULL,
		min_ms REAL NOT NULL,
		mean_ms REAL NOT NULL,
		max_ms REAL NOT NULL,
		p50_ms REAL NOT NULL,
		p95_ms REAL NOT NULL,
		p99_ms REAL NOT NULL,
		passed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("init history schema: %w", err)
	}
	return nil
}

func (h *History) Save(s Summary, passed bool) error {
	query := `
		INSERT INTO runs (
			timestamp, target, duration_seconds, concurrency, target_rps,
			total_requests, successful_requests, failed_requests,
			success_rate, actual_rps, min_ms, mean_ms, max_ms,
			p50_ms, p95_ms, p99_ms, passed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := h.db.Exec(query,
		time.Now().UTC().Format("2006-01-02 15:04:05"),
		s.Target,
		s.Duration.Seconds(),
		s.Concurrency,
		s.TargetRPS,
		s.Total,
		s.Success,
		s.Failed,
		s.SuccessRate,
		s.ActualRPS,
		s.MinMs,
		s.MeanMs,
		s.MaxMs,
		s.P50Ms,
		s.P95Ms,
		s.P99Ms,
		passed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (h *History) Close() error {
	return h.db.Close()
}
