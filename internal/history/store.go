// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history persists a ledger of engine runs.
//
// Every run gets a START row when it begins and a FINISH or CRASH row update
// when it ends. The ledger lives in <workspace>/log/runs.db next to the
// per-run log files, so a workspace carries its own execution history.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/drovertools/drover/pkg/engine"
	"github.com/drovertools/drover/pkg/errors"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses recorded in the ledger.
const (
	StatusStart  = "START"
	StatusFinish = "FINISH"
	StatusCrash  = "CRASH"
)

// Run is one ledger row.
type Run struct {
	// ID is the ledger row identifier (UUID).
	ID string

	// Timestamp is the run timestamp (YYYYMMDDHHMMSS).
	Timestamp int64

	// Status is START while running, FINISH or CRASH afterwards.
	Status string

	// Targets is the space-joined expanded target list.
	Targets string

	// Params is the run context serialized as JSON.
	Params string

	// StartedAt and FinishedAt bracket the run in wall-clock time.
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store is a SQLite-backed run ledger.
//
// WAL mode keeps concurrent runs sharing a workspace from blocking each
// other on ledger writes.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database for a workspace.
func Open(workspace string) (*Store, error) {
	dir := filepath.Join(workspace, "log")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating log directory")
	}

	connStr := filepath.Join(dir, "runs.db") +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "opening run ledger")
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrating run ledger")
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		run_ts INTEGER NOT NULL,
		status TEXT NOT NULL,
		targets TEXT NOT NULL,
		params TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT
	)`)
	return err
}

// ReportStart records the beginning of a run and returns the ledger row id.
func (s *Store) ReportStart(ctx context.Context, timestamp int64, targets []int, params engine.Context) (string, error) {
	id := uuid.NewString()

	encoded, err := json.Marshal(params)
	if err != nil {
		// Context values are caller-supplied; fall back to their count.
		encoded = []byte(fmt.Sprintf(`{"items":%d}`, len(params)))
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, run_ts, status, targets, params, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, timestamp, StatusStart, joinTargets(targets), string(encoded),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	return id, nil
}

// ReportFinish marks a run FINISH on success or CRASH on failure.
func (s *Store) ReportFinish(ctx context.Context, id string, success bool) error {
	status := StatusFinish
	if !success {
		status = StatusCrash
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_ts, status, targets, params, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.ID, &run.Timestamp, &run.Status, &run.Targets, &run.Params, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			run.StartedAt = t
		}
		if finishedAt.Valid {
			if t, err := time.Parse(time.RFC3339, finishedAt.String); err == nil {
				run.FinishedAt = &t
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func joinTargets(targets []int) string {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, " ")
}
