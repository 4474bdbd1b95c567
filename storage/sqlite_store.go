package storage

import (
	"database/sql"
	"errors"
	"fleetcheck/outcome"
	"fleetcheck/report"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var ErrRunNotFound = errors.New("run not found")

// timestampLayout is fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunRecord is the stored header of one finished run.
type RunRecord struct {
	ID              string
	Source          string
	Fingerprint     string
	HeaderRow       int
	ErrorCount      int
	CorrectionCount int
	StartedAt       time.Time
	FinishedAt      time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	header_row INTEGER NOT NULL CHECK(header_row >= 1),
	error_count INTEGER NOT NULL CHECK(error_count >= 0),
	correction_count INTEGER NOT NULL CHECK(correction_count >= 0),
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_outcomes (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	sheet_row INTEGER NOT NULL,
	sheet_column INTEGER NOT NULL,
	label TEXT NOT NULL,
	original TEXT NOT NULL,
	new_value TEXT NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(run_id, seq)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := s.ensureFingerprintColumn(); err != nil {
		return err
	}

	return nil
}

// ensureFingerprintColumn upgrades history files created before input
// fingerprints were recorded.
func (s *SQLiteStore) ensureFingerprintColumn() error {
	rows, err := s.db.Query(`PRAGMA table_info(runs);`)
	if err != nil {
		return fmt.Errorf("query table info: %w", err)
	}
	defer rows.Close()

	hasFingerprint := false
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		if strings.EqualFold(name, "fingerprint") {
			hasFingerprint = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}

	if hasFingerprint {
		return nil
	}

	if _, err := s.db.Exec(`ALTER TABLE runs ADD COLUMN fingerprint TEXT NOT NULL DEFAULT '';`); err != nil {
		return fmt.Errorf("add fingerprint column: %w", err)
	}

	return nil
}

// InsertRun stores the run header together with its errored and corrected
// cells. Unchanged cells are not kept.
func (s *SQLiteStore) InsertRun(summary *report.Summary) error {
	if strings.TrimSpace(summary.RunID) == "" {
		return fmt.Errorf("run id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	const insertRun = `
INSERT INTO runs (
	id,
	source,
	fingerprint,
	header_row,
	error_count,
	correction_count,
	started_at,
	finished_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	if _, err := tx.Exec(
		insertRun,
		summary.RunID,
		summary.Source,
		summary.Fingerprint,
		summary.HeaderRow,
		summary.ErrorCount(),
		summary.CorrectionCount(),
		summary.StartedAt.UTC().Format(timestampLayout),
		summary.FinishedAt.UTC().Format(timestampLayout),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert run %s: %w", summary.RunID, err)
	}

	const insertOutcome = `
INSERT INTO run_outcomes (
	run_id,
	seq,
	sheet_row,
	sheet_column,
	label,
	original,
	new_value,
	status,
	reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	stmt, err := tx.Prepare(insertOutcome)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare outcome statement: %w", err)
	}
	defer stmt.Close()

	seq := 0
	for _, cell := range summary.Outcomes() {
		if cell.Status == outcome.Unchanged {
			continue
		}
		seq++
		if _, err := stmt.Exec(
			summary.RunID,
			seq,
			cell.Row,
			cell.Column,
			cell.Label,
			cell.Original,
			cell.New,
			cell.Status.String(),
			cell.Reason,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert outcome for row %d: %w", cell.Row, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectRuns = `
SELECT
	id,
	source,
	fingerprint,
	header_row,
	error_count,
	correction_count,
	started_at,
	finished_at
FROM runs`

// ListRuns returns all runs, newest first.
func (s *SQLiteStore) ListRuns() ([]RunRecord, error) {
	return s.queryRuns(selectRuns + ` ORDER BY started_at DESC, id;`)
}

// ListRunsByFingerprint returns earlier runs over identical input bytes.
func (s *SQLiteStore) ListRunsByFingerprint(fingerprint string) ([]RunRecord, error) {
	if strings.TrimSpace(fingerprint) == "" {
		return []RunRecord{}, nil
	}
	return s.queryRuns(selectRuns+` WHERE fingerprint = ? ORDER BY started_at DESC, id;`, fingerprint)
}

func (s *SQLiteStore) queryRuns(query string, args ...any) ([]RunRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	records := make([]RunRecord, 0, 32)
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return records, nil
}

// GetRun returns one run by ID or ErrRunNotFound.
func (s *SQLiteStore) GetRun(id string) (RunRecord, error) {
	record, err := scanRun(s.db.QueryRow(selectRuns+` WHERE id = ?;`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return RunRecord{}, err
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		record      RunRecord
		startedRaw  string
		finishedRaw string
	)
	if err := row.Scan(
		&record.ID,
		&record.Source,
		&record.Fingerprint,
		&record.HeaderRow,
		&record.ErrorCount,
		&record.CorrectionCount,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	record.StartedAt, err = time.Parse(timestampLayout, startedRaw)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
	}
	record.FinishedAt, err = time.Parse(timestampLayout, finishedRaw)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse finished_at %q: %w", finishedRaw, err)
	}
	return record, nil
}

// ListRunOutcomes returns the stored cells of a run in traversal order.
func (s *SQLiteStore) ListRunOutcomes(id string) ([]outcome.Cell, error) {
	if _, err := s.GetRun(id); err != nil {
		return nil, err
	}

	const query = `
SELECT
	sheet_row,
	sheet_column,
	label,
	original,
	new_value,
	status,
	reason
FROM run_outcomes
WHERE run_id = ?
ORDER BY seq;
`

	rows, err := s.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("query outcomes of run %s: %w", id, err)
	}
	defer rows.Close()

	cells := make([]outcome.Cell, 0, 64)
	for rows.Next() {
		var (
			cell      outcome.Cell
			statusRaw string
		)
		if err := rows.Scan(
			&cell.Row,
			&cell.Column,
			&cell.Label,
			&cell.Original,
			&cell.New,
			&statusRaw,
			&cell.Reason,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		status, ok := outcome.ParseStatus(statusRaw)
		if !ok {
			return nil, fmt.Errorf("unknown outcome status %q", statusRaw)
		}
		cell.Status = status
		cells = append(cells, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return cells, nil
}

// DeleteRun removes a run and its outcomes.
func (s *SQLiteStore) DeleteRun(id string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM run_outcomes WHERE run_id = ?;`, id); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("delete outcomes of run %s: %w", id, err)
	}
	res, err := tx.Exec(`DELETE FROM runs WHERE id = ?;`, id)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("delete run %s: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *SQLiteStore) DeleteAllRuns() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM run_outcomes;`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete outcomes: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM runs;`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete runs: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return rows, nil
}
