package planner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weekly-planner/internal/database"
	"weekly-planner/internal/meal"
)

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "plans.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer db.Close()

	repo := NewPlanRepository(db.SQL)
	p := newTestPlanner(20)

	t.Run("Latest-Empty", func(t *testing.T) {
		stored, err := repo.Latest(ctx, "ana")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	plan, _ := p.NewWeek(monday, NewProteinFilter("leite"))

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "ana", plan.ToRecord()))

		stored, err := repo.Latest(ctx, "ana")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "ana", stored.UserID)

		restored := p.Restore(stored.Record)
		assert.Equal(t, plan.Days(), restored.Days())
		assert.True(t, restored.WeekStart.Equal(monday))
		assert.True(t, restored.Filter.Has("leite"))
	})

	t.Run("SaveReplacesSameWeek", func(t *testing.T) {
		swapped, err := p.Assign(plan, meal.Breakfast, 0, "Omelete")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, "ana", swapped.ToRecord()))

		plans, err := repo.ListRecentByUserID(ctx, "ana", 10)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, "Omelete", plans[0].Record.Slots[meal.Breakfast][0])
	})

	t.Run("ExistsForWeek", func(t *testing.T) {
		exists, err := repo.ExistsForWeek(ctx, "ana", monday)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsForWeek(ctx, "ana", GetNextMonday(monday))
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsForWeek(ctx, "bruno", monday)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("LatestPrefersMostRecentWeek", func(t *testing.T) {
		next, _ := p.NewWeek(GetNextMonday(monday), ProteinFilter{})
		require.NoError(t, repo.Save(ctx, "ana", next.ToRecord()))

		stored, err := repo.Latest(ctx, "ana")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, stored.Record.WeekStart.Equal(GetNextMonday(monday)))
	})
}
