package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/noteorg/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no run matches an ID or prefix
var ErrNotFound = errors.New("run not found")

// Store is the run ledger: every pipeline run and its audit records
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its records in one transaction. A missing run
// ID is filled in.
func (s *Store) SaveRun(run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.NumRecords = len(run.Records)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO runs (id, input_dir, output_dir, started_at, audit_path, num_records) VALUES (?, ?, ?, ?, ?, ?)",
		run.ID, run.InputDir, run.OutputDir, run.StartedAt, run.AuditPath, run.NumRecords,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO records (run_id, seq, filename, decision, explanation, tags, num_tokens) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Records {
		_, err := stmt.Exec(run.ID, i, r.Filename, string(r.Decision), r.Explanation, strings.Join(r.Tags, ","), r.NumTokens)
		if err != nil {
			return fmt.Errorf("insert record %s: %w", r.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns runs newest first, without their records
func (s *Store) ListRuns(limit, offset int) ([]domain.Run, error) {
	rows, err := s.db.Query(
		"SELECT id, input_dir, output_dir, started_at, audit_path, num_records FROM runs ORDER BY started_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(&r.ID, &r.InputDir, &r.OutputDir, &r.StartedAt, &r.AuditPath, &r.NumRecords); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRun retrieves a run by ID with its records in insertion order
func (s *Store) GetRun(id string) (*domain.Run, error) {
	var run domain.Run
	err := s.db.QueryRow(
		"SELECT id, input_dir, output_dir, started_at, audit_path, num_records FROM runs WHERE id = ?",
		id,
	).Scan(&run.ID, &run.InputDir, &run.OutputDir, &run.StartedAt, &run.AuditPath, &run.NumRecords)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	records, err := s.GetRecords(id)
	if err != nil {
		return nil, err
	}
	run.Records = records

	return &run, nil
}

// GetRecords returns the audit records of a run
func (s *Store) GetRecords(runID string) ([]domain.AuditRecord, error) {
	rows, err := s.db.Query(
		"SELECT filename, decision, explanation, tags, num_tokens FROM records WHERE run_id = ? ORDER BY seq",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var r domain.AuditRecord
		var decision, tags string
		if err := rows.Scan(&r.Filename, &decision, &r.Explanation, &tags, &r.NumTokens); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Decision = domain.Decision(decision)
		if tags != "" {
			r.Tags = strings.Split(tags, ",")
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// ResolveRun finds the single run whose ID starts with prefix
func (s *Store) ResolveRun(prefix string) (*domain.Run, error) {
	if prefix == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.Query("SELECT id FROM runs WHERE id LIKE ? LIMIT 2", prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("resolve run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve run: %w", err)
	}

	switch len(ids) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return s.GetRun(ids[0])
	}
	return nil, fmt.Errorf("run prefix %q is ambiguous", prefix)
}
