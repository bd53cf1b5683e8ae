// Package telemetry persists gateway activity in a local sqlite
// database: an audit row per forwarded daemon request, plus the plot
// completion counters reported by farm hosts. Telemetry is advisory —
// a failed insert is logged and never fails the request that caused it.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS forward_log (
	id          TEXT PRIMARY KEY,
	tenant      TEXT NOT NULL,
	method      TEXT NOT NULL,
	path        TEXT NOT NULL,
	status      INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	remote_ip   TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_forward_log_tenant ON forward_log(tenant);

CREATE TABLE IF NOT EXISTS plot_complete_info (
	data_id     TEXT PRIMARY KEY,
	from_ip     TEXT NOT NULL,
	plot_count  INTEGER NOT NULL,
	create_time TEXT NOT NULL
);
`

// Store wraps the telemetry database. Safe for concurrent use; the
// underlying *sql.DB serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and
// bootstraps the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure telemetry directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap telemetry schema: %w", err)
	}

	log.Debug("Telemetry store opened", "path", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ForwardEntry is one audit row for a request relayed to a daemon.
type ForwardEntry struct {
	Tenant   string
	Method   string
	Path     string
	Status   int
	Duration time.Duration
	RemoteIP string
}

// RecordForward inserts an audit row for a forwarded request.
func (s *Store) RecordForward(ctx context.Context, e ForwardEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO forward_log (id, tenant, method, path, status, duration_ms, remote_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), e.Tenant, e.Method, e.Path, e.Status,
		e.Duration.Milliseconds(), e.RemoteIP, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record forward: %w", err)
	}
	return nil
}

// RecordPlot inserts a plot completion report from a farm host.
func (s *Store) RecordPlot(ctx context.Context, fromIP string, count int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plot_complete_info (data_id, from_ip, plot_count, create_time)
		 VALUES (?, ?, ?, ?)`,
		uuid.NewString(), fromIP, count, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record plot completion: %w", err)
	}
	return nil
}

// TenantCounts returns the number of forwarded requests per tenant.
func (s *Store) TenantCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tenant, COUNT(*) FROM forward_log GROUP BY tenant`)
	if err != nil {
		return nil, fmt.Errorf("failed to query forward counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tenant string
		var n int
		if err := rows.Scan(&tenant, &n); err != nil {
			return nil, fmt.Errorf("failed to scan forward count: %w", err)
		}
		counts[tenant] = n
	}
	return counts, rows.Err()
}
