// Package history keeps a local audit of customer edits in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/taxdesk/internal/config"
	"github.com/studiowebux/taxdesk/internal/migrations"
	"github.com/studiowebux/taxdesk/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// Recorder is what the edit workflow needs from the history store
type Recorder interface {
	Save(ctx context.Context, before, after types.TaxRecord, baseURL string) error
}

type Manager struct {
	db  *sql.DB
	now func() time.Time
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, now: time.Now}, nil
}

// Save records one successful edit
func (m *Manager) Save(ctx context.Context, before, after types.TaxRecord, baseURL string) error {
	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	afterJSON, err := json.Marshal(after)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = m.db.ExecContext(ctx,
		`INSERT INTO edit_history (timestamp, record_id, before_json, after_json, base_url) VALUES (?, ?, ?, ?, ?)`,
		m.now().Local().Format(timestampLayout),
		after.ID,
		string(beforeJSON),
		string(afterJSON),
		baseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

// List returns the newest entries first. A limit <= 0 returns everything.
func (m *Manager) List(ctx context.Context, limit int) ([]types.EditEntry, error) {
	query := `
		SELECT id, timestamp, record_id, before_json, after_json, base_url
		FROM edit_history
		ORDER BY timestamp DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListForRecord returns the edits of a single record, newest first
func (m *Manager) ListForRecord(ctx context.Context, recordID string) ([]types.EditEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, timestamp, record_id, before_json, after_json, base_url
		FROM edit_history
		WHERE record_id = ?
		ORDER BY timestamp DESC, id DESC
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for record: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Clear removes every entry
func (m *Manager) Clear(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM edit_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func scanEntries(rows *sql.Rows) ([]types.EditEntry, error) {
	entries := []types.EditEntry{}

	for rows.Next() {
		var entry types.EditEntry
		var timestamp string

		if err := rows.Scan(&entry.ID, &timestamp, &entry.RecordID, &entry.Before, &entry.After, &entry.BaseURL); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		// Stored as local wall-clock time
		parsed, err := time.ParseInLocation(timestampLayout, timestamp, time.Local)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, timestamp)
		}
		if err == nil {
			timestamp = parsed.Format(time.RFC3339)
		}
		entry.Timestamp = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return entries, nil
}
