// Package auditlog provides audit store adapters.
// Clean Architecture: Adapter implementing ports.AuditStore.
// Records hold intents, routes and evidence notes only; raw text is never stored.
package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

// SQLiteStore implements ports.AuditStore with SQLite persistence.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the audit database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("audit database path is empty")
	}

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		intent TEXT NOT NULL,
		route TEXT NOT NULL,
		used_cloud INTEGER NOT NULL,
		sensitive INTEGER NOT NULL,
		evidence TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_records(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one record.
func (s *SQLiteStore) Append(ctx context.Context, rec entities.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	evidenceJSON, err := json.Marshal(rec.Evidence)
	if err != nil {
		return fmt.Errorf("encoding evidence: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_records (id, created_at, intent, route, used_cloud, sensitive, evidence)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(rec.Intent),
		string(rec.Route),
		rec.UsedCloud,
		rec.Sensitive,
		string(evidenceJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]entities.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, intent, route, used_cloud, sensitive, evidence
		FROM audit_records
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()

	records := []entities.AuditRecord{}
	for rows.Next() {
		var (
			rec          entities.AuditRecord
			createdAt    string
			intent       string
			route        string
			evidenceJSON string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &intent, &route, &rec.UsedCloud, &rec.Sensitive, &evidenceJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec.Intent = entities.Intent(intent)
		rec.Route = entities.Route(route)
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		if err := json.Unmarshal([]byte(evidenceJSON), &rec.Evidence); err != nil {
			return nil, fmt.Errorf("decoding evidence: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
