// Package store persists the bridge's observability data: distinct
// callers and the append-only call record log. The default DSN is
// :memory:, so the data lives exactly as long as the process.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

// SQLiteStore implements the observability store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			client_id TEXT PRIMARY KEY,
			connected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			requests_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS call_records (
			call_id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			tool_name TEXT NOT NULL,
			outcome TEXT NOT NULL,
			error_code TEXT,
			started_at DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_call_records_client ON call_records(client_id, started_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// TouchClient registers a caller on first sight and increments its
// request counter on every subsequent request.
func (s *SQLiteStore) TouchClient(ctx context.Context, clientID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (client_id, requests_count) VALUES (?, 1)
		ON CONFLICT(client_id) DO UPDATE SET requests_count = requests_count + 1`,
		clientID)
	if err != nil {
		return fmt.Errorf("failed to touch client: %w", err)
	}
	return nil
}

// RecordCall appends a call record.
func (s *SQLiteStore) RecordCall(ctx context.Context, rec *domain.CallRecord) error {
	var errorCode sql.NullString
	if rec.ErrorCode != "" {
		errorCode = sql.NullString{String: rec.ErrorCode, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_records (call_id, client_id, tool_name, outcome, error_code, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.CallID, rec.ClientID, rec.ToolName, string(rec.Outcome), errorCode, rec.StartedAt, rec.DurationMs)
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

// ListClients returns every distinct caller seen so far.
func (s *SQLiteStore) ListClients(ctx context.Context) ([]domain.ClientSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, connected_at, requests_count FROM clients ORDER BY connected_at, client_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ClientSession
	for rows.Next() {
		var cs domain.ClientSession
		if err := rows.Scan(&cs.ClientID, &cs.ConnectedAt, &cs.RequestsCount); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}

// ListCalls returns the call records for one caller, oldest first.
func (s *SQLiteStore) ListCalls(ctx context.Context, clientID string) ([]domain.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_id, client_id, tool_name, outcome, error_code, started_at, duration_ms
		FROM call_records WHERE client_id = ? ORDER BY started_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	var records []domain.CallRecord
	for rows.Next() {
		var rec domain.CallRecord
		var errorCode sql.NullString
		var outcome string
		if err := rows.Scan(&rec.CallID, &rec.ClientID, &rec.ToolName, &outcome, &errorCode, &rec.StartedAt, &rec.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan call record: %w", err)
		}
		rec.Outcome = domain.CallOutcome(outcome)
		rec.ErrorCode = errorCode.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats returns aggregate counters for the monitoring surface.
func (s *SQLiteStore) Stats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN outcome = 'succeeded' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN outcome = 'failed' THEN 1 ELSE 0 END), 0)
		FROM call_records`).Scan(&stats.TotalCalls, &stats.SucceededCalls, &stats.FailedCalls)
	if err != nil {
		return nil, fmt.Errorf("failed to count calls: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&stats.ConnectedClients); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	return stats, nil
}
