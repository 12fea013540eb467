package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"weekly-planner/internal/ghost"
	"weekly-planner/internal/meal"
	"weekly-planner/internal/metrics"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/shopping"
	"weekly-planner/internal/storage"
)

// DefaultUserID is used when a caller does not identify itself.
const DefaultUserID = "default"

const noProteinsSelected = "Selecione as proteínas desejadas"

// ErrPublishingDisabled is returned by Publish when no Ghost client is set.
var ErrPublishingDisabled = errors.New("publishing is not configured")

// ErrUnknownProtein is returned when toggling a tag no option carries.
var ErrUnknownProtein = errors.New("unknown protein")

// App holds the application's dependencies. Every load-modify-save cycle on a
// user's plan or history runs under one lock.
type App struct {
	mealPlanner  *planner.Planner
	planRepo     *planner.PlanRepository
	prefs        *storage.Preferences
	metricsStore *metrics.Store
	ghostClient  ghost.Client
	logger       *zap.Logger
	now          func() time.Time

	mu sync.Mutex
}

// NewApp creates and initializes a new App instance. metricsStore and
// ghostClient may be nil.
func NewApp(
	mealPlanner *planner.Planner,
	planRepo *planner.PlanRepository,
	prefs *storage.Preferences,
	metricsStore *metrics.Store,
	ghostClient ghost.Client,
	logger *zap.Logger,
) *App {
	return &App{
		mealPlanner:  mealPlanner,
		planRepo:     planRepo,
		prefs:        prefs,
		metricsStore: metricsStore,
		ghostClient:  ghostClient,
		logger:       logger,
		now:          time.Now,
	}
}

// ProteinOption is one entry of the protein selector.
type ProteinOption struct {
	Tag    string `json:"tag"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// PlanView is the presentation form of a user's plan.
type PlanView struct {
	UserID         string            `json:"user_id"`
	WeekStart      string            `json:"week_start"`
	Days           []planner.DayPlan `json:"days"`
	Proteins       []string          `json:"proteins"`
	ProteinSummary string            `json:"protein_summary"`
	ProteinOptions []ProteinOption   `json:"protein_options"`
	Warnings       []planner.Warning `json:"warnings,omitempty"`
}

// Plan returns the user's current plan, creating one for next week when the
// user has none.
func (a *App) Plan(ctx context.Context, userID string) (PlanView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	plan, err := a.loadOrCreate(ctx, userID)
	if err != nil {
		return PlanView{}, err
	}
	return a.view(userID, plan, nil), nil
}

// NewWeek draws a fresh plan for next week, keeping the user's protein filter.
func (a *App) NewWeek(ctx context.Context, userID string) (PlanView, error) {
	start := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()

	filter := planner.NewProteinFilter()
	if current, err := a.load(ctx, userID); err != nil {
		return PlanView{}, err
	} else if current != nil {
		filter = current.Filter
	}

	plan, warnings := a.mealPlanner.NewWeek(planner.GetNextMonday(a.now()), filter)
	if err := a.save(ctx, userID, plan); err != nil {
		return PlanView{}, err
	}
	a.track(ctx, "new_week", userID, warnings, nil, start)
	return a.view(userID, plan, warnings), nil
}

// Swap replaces one slot with another eligible option. When no alternative
// exists the returned view carries the warning, the plan is left unchanged and
// the error matches planner.ErrNoEligibleOption.
func (a *App) Swap(ctx context.Context, userID string, t meal.Type, day int) (PlanView, error) {
	start := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()

	plan, err := a.loadOrCreate(ctx, userID)
	if err != nil {
		return PlanView{}, err
	}

	next, err := a.mealPlanner.Swap(plan, t, day)
	if err != nil {
		a.track(ctx, "swap", userID, nil, err, start)
		if w, ok := planner.WarningFor(err); ok {
			return a.view(userID, plan, []planner.Warning{w}), err
		}
		return PlanView{}, err
	}
	if err := a.save(ctx, userID, next); err != nil {
		return PlanView{}, err
	}
	a.track(ctx, "swap", userID, nil, nil, start)
	return a.view(userID, next, nil), nil
}

// Assign puts a named option into a slot.
func (a *App) Assign(ctx context.Context, userID string, t meal.Type, day int, name string) (PlanView, error) {
	start := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()

	plan, err := a.loadOrCreate(ctx, userID)
	if err != nil {
		return PlanView{}, err
	}
	next, err := a.mealPlanner.Assign(plan, t, day, name)
	if err != nil {
		a.track(ctx, "assign", userID, nil, err, start)
		return PlanView{}, err
	}
	if err := a.save(ctx, userID, next); err != nil {
		return PlanView{}, err
	}
	a.track(ctx, "assign", userID, nil, nil, start)
	return a.view(userID, next, nil), nil
}

// SetProtein enables or disables a protein tag and revalidates the plan.
func (a *App) SetProtein(ctx context.Context, userID, tag string, enabled bool) (PlanView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setProtein(ctx, userID, tag, func(bool) bool { return enabled })
}

// ToggleProtein flips a protein tag and revalidates the plan.
func (a *App) ToggleProtein(ctx context.Context, userID, tag string) (PlanView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setProtein(ctx, userID, tag, func(active bool) bool { return !active })
}

func (a *App) setProtein(ctx context.Context, userID, tag string, decide func(active bool) bool) (PlanView, error) {
	start := time.Now()
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return PlanView{}, fmt.Errorf("%w: tag is required", ErrUnknownProtein)
	}
	if !slices.Contains(a.mealPlanner.Catalog().ProteinTags(), tag) {
		return PlanView{}, fmt.Errorf("%w: %q", ErrUnknownProtein, tag)
	}

	plan, err := a.loadOrCreate(ctx, userID)
	if err != nil {
		return PlanView{}, err
	}
	next, warnings := a.mealPlanner.SetProtein(plan, tag, decide(plan.Filter.Has(tag)))
	if err := a.save(ctx, userID, next); err != nil {
		return PlanView{}, err
	}
	a.track(ctx, "set_protein", userID, warnings, nil, start)
	return a.view(userID, next, warnings), nil
}

// SeedFromHTML replaces the user's plan with the one displayed on a rendered
// planner page.
func (a *App) SeedFromHTML(ctx context.Context, userID string, r io.Reader) (PlanView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	filter := planner.NewProteinFilter()
	if current, err := a.load(ctx, userID); err != nil {
		return PlanView{}, err
	} else if current != nil {
		filter = current.Filter
	}

	plan, warnings, err := a.mealPlanner.SeedFromHTML(r, planner.GetNextMonday(a.now()), filter)
	if err != nil {
		return PlanView{}, err
	}
	if err := a.save(ctx, userID, plan); err != nil {
		return PlanView{}, err
	}
	return a.view(userID, plan, warnings), nil
}

// ShoppingList aggregates the ingredients of the user's current plan.
func (a *App) ShoppingList(ctx context.Context, userID string) (shopping.List, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	plan, err := a.loadOrCreate(ctx, userID)
	if err != nil {
		return shopping.List{}, err
	}
	return a.mealPlanner.ShoppingList(plan), nil
}

// Catalog exposes the immutable meal catalog.
func (a *App) Catalog() *meal.Catalog {
	return a.mealPlanner.Catalog()
}

func (a *App) load(ctx context.Context, userID string) (*planner.Plan, error) {
	stored, err := a.planRepo.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if stored == nil {
		return nil, nil
	}
	plan := a.mealPlanner.Restore(stored.Record)
	return &plan, nil
}

func (a *App) loadOrCreate(ctx context.Context, userID string) (planner.Plan, error) {
	current, err := a.load(ctx, userID)
	if err != nil {
		return planner.Plan{}, err
	}
	if current != nil {
		return *current, nil
	}

	plan, warnings := a.mealPlanner.NewWeek(planner.GetNextMonday(a.now()), planner.NewProteinFilter())
	for _, w := range warnings {
		a.logger.Warn("Initial plan incomplete", zap.String("user_id", userID), zap.String("meal_type", string(w.MealType)))
	}
	if err := a.save(ctx, userID, plan); err != nil {
		return planner.Plan{}, err
	}
	a.logger.Info("Created plan", zap.String("user_id", userID), zap.Time("week_start", plan.WeekStart))
	return plan, nil
}

func (a *App) save(ctx context.Context, userID string, plan planner.Plan) error {
	if err := a.planRepo.Save(ctx, userID, plan.ToRecord()); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func (a *App) view(userID string, plan planner.Plan, warnings []planner.Warning) PlanView {
	catalog := a.mealPlanner.Catalog()

	selected := plan.Proteins()
	proteins := make([]string, 0, len(selected))
	for _, tag := range selected {
		proteins = append(proteins, catalog.ProteinLabel(tag))
	}

	active := plan.Filter.Tags()
	summary := noProteinsSelected
	if len(active) > 0 {
		labels := make([]string, 0, len(active))
		for _, tag := range active {
			labels = append(labels, catalog.ProteinLabel(tag))
		}
		summary = strings.Join(labels, ", ")
	}

	var options []ProteinOption
	for _, tag := range catalog.ProteinTags() {
		options = append(options, ProteinOption{
			Tag:    tag,
			Label:  catalog.ProteinLabel(tag),
			Active: plan.Filter.Has(tag),
		})
	}

	return PlanView{
		UserID:         userID,
		WeekStart:      plan.WeekStart.Format("2006-01-02"),
		Days:           plan.Days(),
		Proteins:       proteins,
		ProteinSummary: summary,
		ProteinOptions: options,
		Warnings:       warnings,
	}
}

func (a *App) track(ctx context.Context, operation, userID string, warnings []planner.Warning, opErr error, start time.Time) {
	if a.metricsStore == nil {
		return
	}
	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(opErr, planner.ErrNoEligibleOption), len(warnings) > 0:
		outcome = metrics.OutcomeWarning
	case opErr != nil:
		outcome = metrics.OutcomeError
	}
	if err := a.metricsStore.Track(ctx, operation, userID, outcome, start); err != nil {
		a.logger.Warn("Failed to record metric", zap.String("operation", operation), zap.Error(err))
	}
}
