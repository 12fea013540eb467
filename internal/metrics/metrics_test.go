package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weekly-planner/internal/database"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db.SQL)
	require.NoError(t, store.Record(ctx, OperationMetric{Operation: "swap", UserID: "u", LatencyMS: 10}))
	require.NoError(t, store.Record(ctx, OperationMetric{Operation: "swap", UserID: "u", Outcome: OutcomeWarning, LatencyMS: 30}))
	require.NoError(t, store.Track(ctx, "new_week", "u", OutcomeOK, time.Now()))
	require.NoError(t, store.Record(ctx, OperationMetric{
		Operation: "swap",
		UserID:    "u",
		Outcome:   OutcomeError,
		Timestamp: time.Now().AddDate(0, 0, -40),
	}))

	usage, err := store.GetUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "new_week", usage[0].Operation)
	assert.Equal(t, OperationUsage{Operation: "swap", Count: 2, Warnings: 1, AvgLatencyMS: 20}, usage[1])

	removed, err := store.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 2048), 0644))

	h := GetSysHealth(dir)
	assert.Equal(t, "2.0 KiB", h.DataDiskSize)
	assert.Positive(t, h.Goroutines)
	assert.NotEmpty(t, h.Alloc)

	assert.Equal(t, "0 B", GetSysHealth(filepath.Join(dir, "missing")).DataDiskSize)
}
