package app

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weekly-planner/internal/database"
	"weekly-planner/internal/fuel"
	"weekly-planner/internal/ghost"
	"weekly-planner/internal/meal"
	"weekly-planner/internal/metrics"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/storage"
)

var sunday = time.Date(2026, time.October, 18, 15, 0, 0, 0, time.UTC)

func structured(name string, qty float64, unit string) meal.Ingredient {
	return meal.Ingredient{Name: name, Quantity: qty, Unit: unit, Structured: true}
}

func testCatalog() *meal.Catalog {
	return meal.NewCatalog(map[meal.Type][]meal.Option{
		meal.Breakfast: {
			{Name: "Omelete", Ingredients: []meal.Ingredient{structured("Ovo", 2, "un")}, Proteins: []string{"ovo"}},
			{Name: "Mingau de Aveia", Ingredients: []meal.Ingredient{structured("Aveia", 40, "g")}, Proteins: []string{"leite"}},
		},
		meal.Lunch: {
			{Name: "Grilled Chicken", Ingredients: []meal.Ingredient{structured("Chicken", 200, "g")}, Proteins: []string{"chicken"}},
			{Name: "Beans Bowl", Ingredients: []meal.Ingredient{structured("Beans", 1, "cup")}, Proteins: []string{"legume"}},
		},
		meal.Snack: {
			{Name: "Iogurte", Ingredients: []meal.Ingredient{structured("Iogurte", 1, "pote")}, Proteins: []string{"leite"}},
			{Name: "Fruta", Ingredients: []meal.Ingredient{{Name: "Banana"}}},
		},
	}, meal.Settings{
		CategoryKeywords: meal.KeywordTable{
			{Category: meal.Proteins, Keywords: []string{"chicken", "ovo"}},
			{Category: meal.Grains, Keywords: []string{"beans", "aveia"}},
		},
		ProteinLabels: map[string]string{"chicken": "Frango", "leite": "Laticínios"},
	})
}

type fakeGhost struct {
	title   string
	html    string
	publish bool
	err     error
}

func (f *fakeGhost) CreatePost(_ context.Context, title, html string, publish bool) (*ghost.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.title, f.html, f.publish = title, html, publish
	return &ghost.Post{ID: "post-1", Title: title, Status: "draft"}, nil
}

type fixture struct {
	app     *App
	metrics *metrics.Store
	ghost   *fakeGhost
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	db, err := database.NewDB(filepath.Join(t.TempDir(), "app.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mealPlanner := planner.NewPlanner(testCatalog(), rand.New(rand.NewPCG(7, 8)))
	prefs := storage.NewPreferences(storage.NewStore(db.SQL), logger)
	metricsStore := metrics.NewStore(db.SQL)
	gh := &fakeGhost{}

	a := NewApp(mealPlanner, planner.NewPlanRepository(db.SQL), prefs, metricsStore, gh, logger)
	a.now = func() time.Time { return sunday }
	return fixture{app: a, metrics: metricsStore, ghost: gh}
}

func mealAt(view PlanView, t meal.Type, day int) string {
	for _, d := range view.Days {
		if d.MealType == t && d.Day == day {
			return d.Meal
		}
	}
	return ""
}

func TestPlanIsCreatedOnceAndPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.app.Plan(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", first.WeekStart)
	assert.Len(t, first.Days, len(meal.Types)*meal.DaysPerWeek)
	assert.Equal(t, noProteinsSelected, first.ProteinSummary)
	for _, d := range first.Days {
		assert.NotEmpty(t, d.Meal)
	}

	again, err := f.app.Plan(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.Days, again.Days)
}

func TestSwapWithoutAlternativeKeepsPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.app.SetProtein(ctx, "u", "chicken", true)
	require.NoError(t, err)
	assert.Equal(t, "Frango", view.ProteinSummary)
	require.Len(t, view.Warnings, 2, "breakfast and snack have no chicken option")
	assert.Equal(t, "Grilled Chicken", mealAt(view, meal.Lunch, 3))

	swapped, err := f.app.Swap(ctx, "u", meal.Lunch, 3)
	require.ErrorIs(t, err, planner.ErrNoEligibleOption)
	require.Len(t, swapped.Warnings, 1)
	assert.Equal(t, "Não temos opção de Almoço com as proteínas selecionadas.", swapped.Warnings[0].Message)
	assert.Equal(t, "Grilled Chicken", mealAt(swapped, meal.Lunch, 3))

	current, err := f.app.Plan(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, view.Days, current.Days)
}

func TestSwapAndAssign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	before, err := f.app.Plan(ctx, "u")
	require.NoError(t, err)

	after, err := f.app.Swap(ctx, "u", meal.Breakfast, 0)
	require.NoError(t, err)
	assert.NotEqual(t, mealAt(before, meal.Breakfast, 0), mealAt(after, meal.Breakfast, 0))

	assigned, err := f.app.Assign(ctx, "u", meal.Snack, 6, "Fruta")
	require.NoError(t, err)
	assert.Equal(t, "Fruta", mealAt(assigned, meal.Snack, 6))

	_, err = f.app.Assign(ctx, "u", meal.Snack, 6, "Grilled Chicken")
	assert.ErrorIs(t, err, planner.ErrForeignOption)

	_, err = f.app.Swap(ctx, "u", meal.Lunch, 7)
	assert.ErrorIs(t, err, planner.ErrInvalidDay)
}

func TestToggleProtein(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view, err := f.app.ToggleProtein(ctx, "u", "leite")
	require.NoError(t, err)
	assert.Equal(t, "Laticínios", view.ProteinSummary)
	assert.Equal(t, "Mingau de Aveia", mealAt(view, meal.Breakfast, 0))

	var active []string
	for _, o := range view.ProteinOptions {
		if o.Active {
			active = append(active, o.Tag)
		}
	}
	assert.Equal(t, []string{"leite"}, active)

	view, err = f.app.ToggleProtein(ctx, "u", "leite")
	require.NoError(t, err)
	assert.Equal(t, noProteinsSelected, view.ProteinSummary)

	_, err = f.app.ToggleProtein(ctx, "u", "tofu")
	assert.ErrorIs(t, err, ErrUnknownProtein)
}

func TestNewWeekKeepsFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.app.SetProtein(ctx, "u", "legume", true)
	require.NoError(t, err)

	view, err := f.app.NewWeek(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "legume", view.ProteinSummary, "tags without a label are shown as is")
	assert.Equal(t, "Beans Bowl", mealAt(view, meal.Lunch, 0))
}

func TestShoppingListFollowsPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for day := 0; day < meal.DaysPerWeek; day++ {
		_, err := f.app.Assign(ctx, "u", meal.Lunch, day, "Grilled Chicken")
		require.NoError(t, err)
	}

	list, err := f.app.ShoppingList(ctx, "u")
	require.NoError(t, err)
	line, ok := list.Find("Chicken", "g")
	require.True(t, ok)
	assert.InDelta(t, 1400, line.Quantity, 1e-9)
	assert.Len(t, list.Sections, len(meal.Categories))
}

func TestSeedFromHTML(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	page := `<div class="meal-section" data-meal-type="lunch">
		<div class="day-card"><span class="day-meal">beans</span></div>
	</div>`
	view, err := f.app.SeedFromHTML(ctx, "u", strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Beans Bowl", mealAt(view, meal.Lunch, 0))
}

func TestConcurrentSwapsAreSerialized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.app.Plan(ctx, "u")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := f.app.Swap(ctx, "u", meal.Breakfast, day%meal.DaysPerWeek)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	usage, err := f.metrics.GetUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 8, usage[0].Count)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.app.Assign(ctx, "u", meal.Lunch, 0, "Beans Bowl")
	require.NoError(t, err)

	post, err := f.app.Publish(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "Cardápio da semana de 19/10/2026", f.ghost.title)
	assert.False(t, f.ghost.publish)
	assert.Contains(t, f.ghost.html, "<strong>Segunda</strong>: Beans Bowl")
	assert.Contains(t, f.ghost.html, "<h3>Proteínas</h3>")

	f.ghost.err = errors.New("boom")
	_, err = f.app.Publish(ctx, "u")
	assert.ErrorContains(t, err, "failed to publish plan")

	f.app.ghostClient = nil
	_, err = f.app.Publish(ctx, "u")
	assert.ErrorIs(t, err, ErrPublishingDisabled)
}

func TestFuelHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cmp := f.app.CompareFuels(ctx, "u", fuel.CompareInput{
		Distance: 100,
		Quotes: []fuel.Quote{
			{Fuel: fuel.Gasoline, Price: 6, Consumption: 12},
			{Fuel: fuel.Ethanol, Price: 4, Consumption: 8.4},
		},
	})
	assert.Equal(t, fuel.Ethanol, cmp.Best)

	trip := f.app.Trip(ctx, "u", fuel.Gasoline, fuel.TripInput{Distance: 120, Consumption: 12, Price: 6})
	assert.InDelta(t, 60, trip.Cost, 1e-9)

	f.app.Economy(ctx, "u", fuel.EconomyInput{Distance: 420, Liters: 35, Price: 6})

	h := f.app.History(ctx, "u")
	require.Len(t, h, 3)
	assert.Equal(t, fuel.EntryEconomy, h[0].Type)
	assert.Equal(t, "Etanol", h[2].BestOption)
	assert.Equal(t, "18/10/2026", h[2].Date)

	var buf bytes.Buffer
	require.NoError(t, f.app.ExportHistory(ctx, "u", FormatCSV, &buf))

	f.app.ClearHistory(ctx, "u")
	assert.Empty(t, f.app.History(ctx, "u"))

	n, err := f.app.ImportHistory(ctx, "u", &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	imported := f.app.History(ctx, "u")
	require.Len(t, imported, 3)
	for i := range h {
		assert.Equal(t, h[i].Type, imported[i].Type)
		assert.InDelta(t, h[i].Cost, imported[i].Cost, 0.001)
	}

	remaining := f.app.RemoveHistoryEntry(ctx, "u", imported[0].ID)
	assert.Len(t, remaining, 2)

	assert.Error(t, f.app.ExportHistory(ctx, "u", "pdf", &buf))
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.app.SaveTheme(ctx, "u", storage.ThemeDark)
	assert.Equal(t, storage.ThemeDark, f.app.Theme(ctx, "u"))

	f.app.SaveFuelTypes(ctx, "u", []fuel.Type{fuel.Diesel})
	assert.Equal(t, []fuel.Type{fuel.Diesel}, f.app.FuelTypes(ctx, "u"))

	require.NoError(t, f.app.SaveInputs(ctx, "u", storage.KeyComparison, []byte(`{"distance":"100"}`)))
	form, err := f.app.Inputs(ctx, "u", storage.KeyComparison)
	require.NoError(t, err)
	assert.JSONEq(t, `{"distance":"100"}`, string(form))

	_, err = f.app.Inputs(ctx, "u", storage.KeyTheme)
	assert.Error(t, err)
}
