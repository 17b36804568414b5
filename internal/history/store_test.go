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

package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/drovertools/drover/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	workspace := t.TempDir()
	store, err := Open(workspace)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, workspace
}

func TestOpenCreatesLedgerUnderLogDir(t *testing.T) {
	_, workspace := openStore(t)

	_, err := os.Stat(filepath.Join(workspace, "log", "runs.db"))
	assert.NoError(t, err)
}

func TestOpenEnablesWALJournalMode(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	var journalMode string
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var busyTimeout int
	require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busyTimeout))
	assert.Equal(t, 5000, busyTimeout)
}

func TestReportStartRecordsRun(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.ReportStart(ctx, 20200101000000, []int{1000, 2000}, engine.Context{"task.key": "v"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, StatusStart, runs[0].Status)
	assert.Equal(t, int64(20200101000000), runs[0].Timestamp)
	assert.Equal(t, "1000 2000", runs[0].Targets)
	assert.JSONEq(t, `{"task.key":"v"}`, runs[0].Params)
	assert.False(t, runs[0].StartedAt.IsZero())
	assert.Nil(t, runs[0].FinishedAt)
}

func TestReportFinishMarksOutcome(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	good, err := store.ReportStart(ctx, 20200101000000, []int{1000}, nil)
	require.NoError(t, err)
	bad, err := store.ReportStart(ctx, 20200101000001, []int{2000}, nil)
	require.NoError(t, err)

	require.NoError(t, store.ReportFinish(ctx, good, true))
	require.NoError(t, store.ReportFinish(ctx, bad, false))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byID := map[string]Run{}
	for _, run := range runs {
		byID[run.ID] = run
	}
	assert.Equal(t, StatusFinish, byID[good].Status)
	assert.Equal(t, StatusCrash, byID[bad].Status)
	assert.NotNil(t, byID[good].FinishedAt)
}

func TestListRunsHonorsLimit(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.ReportStart(ctx, int64(20200101000000+i), []int{1000}, nil)
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestLedgerSurvivesReopen(t *testing.T) {
	workspace := t.TempDir()

	store, err := Open(workspace)
	require.NoError(t, err)
	id, err := store.ReportStart(context.Background(), 20200101000000, []int{1000}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(workspace)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}
