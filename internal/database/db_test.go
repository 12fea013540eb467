package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "planner.db")
	logger := zaptest.NewLogger(t)

	db, err := NewDB(path, logger)
	require.NoError(t, err)

	for _, table := range []string{"meal_plans", "kv_records", "operation_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
	require.NoError(t, db.Close())

	t.Run("ReopenIsIdempotent", func(t *testing.T) {
		again, err := NewDB(path, logger)
		require.NoError(t, err)
		assert.NoError(t, again.Close())
	})
}
