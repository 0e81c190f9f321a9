package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	meta TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx INTEGER NOT NULL,
	lambda REAL NOT NULL,
	chart TEXT NOT NULL,
	state TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);`

// SQLiteStore keeps the run catalog and samples in a single database file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &SQLiteStore{sqlDB: sqlDB}
	if err := s.Init(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Init() error {
	if _, err := s.sqlDB.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) Save(meta RunMetadata, samples Samples) (string, error) {
	if meta.ID == "" {
		meta.ID = newRunID(meta)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	tx, err := s.sqlDB.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO runs (id, created_at, meta) VALUES (?, ?, ?)`,
		meta.ID, meta.Timestamp.UTC().UnixMilli(), string(metaJSON)); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO samples (run_id, idx, lambda, chart, state) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for i, st := range samples.States {
		state, err := json.Marshal(st)
		if err != nil {
			return "", err
		}
		if _, err := stmt.Exec(meta.ID, i, samples.Lambdas[i], samples.Charts[i], string(state)); err != nil {
			return "", fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return meta.ID, nil
}

func (s *SQLiteStore) List() ([]RunMetadata, error) {
	rows, err := s.sqlDB.Query(`SELECT meta FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var meta RunMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(runID string) (*RunMetadata, error) {
	var raw string
	err := s.sqlDB.QueryRow(`SELECT meta FROM runs WHERE id = ?`, runID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *SQLiteStore) LoadStates(runID string) (*Samples, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.Query(`SELECT lambda, chart, state FROM samples WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}
	defer rows.Close()

	samples := &Samples{Lambdas: []float64{}, Charts: []string{}, States: [][]float64{}}
	for rows.Next() {
		var (
			lambda float64
			chart  string
			raw    string
		)
		if err := rows.Scan(&lambda, &chart, &raw); err != nil {
			return nil, err
		}
		var state []float64
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, err
		}
		samples.Lambdas = append(samples.Lambdas, lambda)
		samples.Charts = append(samples.Charts, chart)
		samples.States = append(samples.States, state)
	}
	return samples, rows.Err()
}

// Prune deletes runs created before cutoff and returns how many were removed.
func (s *SQLiteStore) Prune(cutoff time.Time) (int64, error) {
	res, err := s.sqlDB.Exec(`DELETE FROM runs WHERE created_at < ?`, cutoff.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
