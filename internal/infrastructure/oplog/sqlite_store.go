package oplog

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/redeyesdontcry/redeyes-go/internal/domain"
)

// SQLiteStore persists operation records in a SQLite database shared by all
// runs under one results root; each record is stamped with the run it came
// from. It is a best-effort mirror of the in-memory log; a store that failed
// to open silently drops writes.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	runID string
	mu    sync.Mutex
}

// NewSQLiteStore creates (or opens) <dir>/operations.db. Writes are
// attributed to runID; reads span every run recorded in the database.
func NewSQLiteStore(dir, runID string) *SQLiteStore {
	path := filepath.Join(dir, "operations.db")
	_ = os.MkdirAll(dir, domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, runID: runID}
	}
	store := &SQLiteStore{db: db, path: path, runID: runID}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path, runID: runID}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		phase TEXT,
		command TEXT,
		target TEXT,
		timestamp TEXT,
		duration_ms INTEGER,
		success INTEGER,
		output_bytes INTEGER,
		error TEXT,
		ai_plan TEXT
	);`)
	return err
}

// Save inserts one record.
func (s *SQLiteStore) Save(record domain.OperationRecord) error {
	if s.db == nil {
		return os.ErrInvalid
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	success := 0
	if record.Succeeded() {
		success = 1
	}
	runID := record.RunID
	if runID == "" {
		runID = s.runID
	}
	_, err := s.db.Exec(`INSERT INTO operations
		(run_id, phase, command, target, timestamp, duration_ms, success, output_bytes, error, ai_plan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		string(record.Phase),
		record.Command,
		record.Target,
		record.Timestamp.Format(time.RFC3339),
		record.Duration.Milliseconds(),
		success,
		record.OutputBytes,
		record.Error,
		record.AIPlan,
	)
	return err
}

// Records returns persisted entries, newest first (limit/search optional).
func (s *SQLiteStore) Records(limit int, search string) ([]domain.OperationRecord, error) {
	if s.db == nil {
		return nil, os.ErrInvalid
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT run_id, phase, command, target, timestamp, duration_ms, success, output_bytes, error, ai_plan FROM operations")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE command LIKE ? OR target LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.OperationRecord
	for rows.Next() {
		var rec domain.OperationRecord
		var phase, ts string
		var durationMS int64
		var success int
		if err := rows.Scan(&rec.RunID, &phase, &rec.Command, &rec.Target, &ts, &durationMS, &success, &rec.OutputBytes, &rec.Error, &rec.AIPlan); err != nil {
			return nil, err
		}
		rec.Phase = domain.Phase(phase)
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		ok := success == 1
		rec.Success = &ok
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ExportJSON writes the operations table to a jsonl file.
func (s *SQLiteStore) ExportJSON(dest string) error {
	records, err := s.Records(0, "")
	if err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}
