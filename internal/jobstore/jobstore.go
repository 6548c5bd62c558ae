// Package jobstore persists the JobExecutionRecord the master reads and
// mutates on every start attempt. It is adapted from the teacher's
// internal/daemon/db package: same modernc.org/sqlite driver, same
// Open/migrate/WAL shape, with the "runs" table replaced by the
// coordinator's own record.
package jobstore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Record mirrors spec.md's JobExecutionRecord exactly.
type Record struct {
	JobID                       string
	QuorumSize                  int
	SnapshotID                  int64 // -1 if none
	OngoingSnapshotID           int64
	Suspended                   bool
	SuccessfulSnapshotDataMapName string
	LastExecutionID             uint64
	Executed                    bool
}

// ErrNotFound is returned by Get when no record exists for a job.
var ErrNotFound = errors.New("jobstore: record not found")

// Store wraps the SQLite connection used to persist Records.
type Store struct {
	conn *sql.DB
}

// Open creates or opens a SQLite database at path, enabling WAL mode and
// running migrations, exactly as the teacher's db.Open does.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("jobstore: failed to open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("jobstore: failed to enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("jobstore: failed to enable foreign keys: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("jobstore: failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS job_execution_records (
    job_id                             TEXT PRIMARY KEY,
    quorum_size                        INTEGER NOT NULL,
    snapshot_id                        INTEGER NOT NULL DEFAULT -1,
    ongoing_snapshot_id                INTEGER NOT NULL DEFAULT -1,
    suspended                          INTEGER NOT NULL DEFAULT 0,
    successful_snapshot_data_map_name  TEXT,
    last_execution_id                  INTEGER NOT NULL DEFAULT 0,
    executed                           INTEGER NOT NULL DEFAULT 0
);
`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.conn.Close() }

// Get reads a job's record, returning ErrNotFound if none exists.
func (s *Store) Get(jobID string) (*Record, error) {
	row := s.conn.QueryRow(`
		SELECT job_id, quorum_size, snapshot_id, ongoing_snapshot_id, suspended,
		       successful_snapshot_data_map_name, last_execution_id, executed
		FROM job_execution_records WHERE job_id = ?`, jobID)

	r := &Record{}
	var suspended, executed int
	err := row.Scan(&r.JobID, &r.QuorumSize, &r.SnapshotID, &r.OngoingSnapshotID,
		&suspended, &r.SuccessfulSnapshotDataMapName, &r.LastExecutionID, &executed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("jobstore: get %s: %w", jobID, err)
	}
	r.Suspended = suspended != 0
	r.Executed = executed != 0
	return r, nil
}

// Put creates or replaces a job's record (the spec's "persist the
// record, create if missing").
func (s *Store) Put(r *Record) error {
	_, err := s.conn.Exec(`
		INSERT INTO job_execution_records (
			job_id, quorum_size, snapshot_id, ongoing_snapshot_id, suspended,
			successful_snapshot_data_map_name, last_execution_id, executed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			quorum_size = excluded.quorum_size,
			snapshot_id = excluded.snapshot_id,
			ongoing_snapshot_id = excluded.ongoing_snapshot_id,
			suspended = excluded.suspended,
			successful_snapshot_data_map_name = excluded.successful_snapshot_data_map_name,
			last_execution_id = excluded.last_execution_id,
			executed = excluded.executed`,
		r.JobID, r.QuorumSize, r.SnapshotID, r.OngoingSnapshotID,
		boolToInt(r.Suspended), r.SuccessfulSnapshotDataMapName, r.LastExecutionID, boolToInt(r.Executed))
	if err != nil {
		return fmt.Errorf("jobstore: put %s: %w", r.JobID, err)
	}
	return nil
}

// SetSuspended updates only the suspended flag, mirroring the finalizer's
// "persist suspended = true" step without rewriting the whole record.
func (s *Store) SetSuspended(jobID string, suspended bool) error {
	_, err := s.conn.Exec(`UPDATE job_execution_records SET suspended = ? WHERE job_id = ?`,
		boolToInt(suspended), jobID)
	if err != nil {
		return fmt.Errorf("jobstore: set suspended %s: %w", jobID, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
