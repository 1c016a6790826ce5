// Package history keeps a SQLite log of finished livebuild runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/livebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/livebuild/internal/pipeline"
)

// Stage is the persisted summary of one executed stage.
type Stage struct {
	Name       string `json:"name"`
	Result     string `json:"result"`
	DurationMS int64  `json:"duration_ms"`
	ExitCode   int    `json:"exit_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Run is one row of the history table.
type Run struct {
	ID       string
	Mode     string
	Special  bool
	Outcome  string
	Commit   string
	Branch   string
	Started  time.Time
	Duration time.Duration
	Artifact string // sha256 of the deployed library, empty when nothing was deployed
	Stages   []Stage
}

// FromReport converts a finished pipeline report into a history row.
func FromReport(r *pipeline.Report) Run {
	run := Run{
		ID:       r.RunID,
		Mode:     string(r.Mode),
		Special:  r.Special,
		Outcome:  string(r.Outcome),
		Commit:   r.Commit,
		Branch:   r.Branch,
		Started:  r.Start,
		Duration: r.Duration(),
		Stages:   make([]Stage, 0, len(r.Stages)),
	}
	if r.Deployment != nil {
		run.Artifact = r.Deployment.SHA256
	}
	for _, s := range r.Stages {
		run.Stages = append(run.Stages, Stage{
			Name:       string(s.Name),
			Result:     string(s.Result),
			DurationMS: s.Duration.Milliseconds(),
			ExitCode:   s.ExitCode,
			Error:      s.Error,
		})
	}
	return run
}

// Store persists runs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the history database at path.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "create history directory").
				WithContext("path", path).Build()
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "open history database").
			WithContext("path", path).Build()
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "initialize history schema").
			WithContext("path", path).Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL,
		special INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		git_commit TEXT,
		git_branch TEXT,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		artifact_sha256 TEXT,
		stages TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends run to the history.
func (s *Store) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stages, err := json.Marshal(run.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, mode, special, outcome, git_commit, git_branch, started, duration_ms, artifact_sha256, stages)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Special, run.Outcome, run.Commit, run.Branch,
		run.Started.UnixMilli(), run.Duration.Milliseconds(), run.Artifact, string(stages),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "insert run").
			WithContext("run_id", run.ID).Build()
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, mode, special, outcome, git_commit, git_branch, started, duration_ms, artifact_sha256, stages
		 FROM runs ORDER BY started DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "query runs").Build()
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run                   Run
			commit, branch        sql.NullString
			artifact              sql.NullString
			startedMS, durationMS int64
			stagesJSON            string
		)
		if err := rows.Scan(&run.ID, &run.Mode, &run.Special, &run.Outcome, &commit, &branch,
			&startedMS, &durationMS, &artifact, &stagesJSON); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Commit = commit.String
		run.Branch = branch.String
		run.Artifact = artifact.String
		run.Started = time.UnixMilli(startedMS)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal([]byte(stagesJSON), &run.Stages); err != nil {
			return nil, fmt.Errorf("unmarshal stages for %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
