package planner

import (
	"fmt"
	"math/rand/v2"
	"time"

	"weekly-planner/internal/meal"
	"weekly-planner/internal/shopping"
)

// Planner assigns meal options to the week and derives shopping lists.
// It is not safe for concurrent use because it owns a random source.
type Planner struct {
	catalog    *meal.Catalog
	aggregator *shopping.Aggregator
	rng        *rand.Rand
}

// NewPlanner creates a Planner over an immutable catalog. A nil rng uses a
// randomly seeded source.
func NewPlanner(catalog *meal.Catalog, rng *rand.Rand) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Planner{
		catalog:    catalog,
		aggregator: shopping.NewAggregator(catalog),
		rng:        rng,
	}
}

// Catalog returns the catalog the planner draws from.
func (p *Planner) Catalog() *meal.Catalog {
	return p.catalog
}

// Eligible returns the options of a meal type allowed by the filter.
func (p *Planner) Eligible(t meal.Type, filter ProteinFilter) []meal.Option {
	return filter.Apply(p.catalog.Options(t))
}

// NewWeek draws a random eligible option for every slot. Meal types without
// eligible options stay unassigned and produce a warning.
func (p *Planner) NewWeek(weekStart time.Time, filter ProteinFilter) (Plan, []Warning) {
	plan := newPlan(weekStart, filter)
	var warnings []Warning
	for _, t := range meal.Types {
		pool := p.Eligible(t, filter)
		if len(pool) == 0 {
			warnings = append(warnings, noOptionWarning(t))
			continue
		}
		for day := 0; day < meal.DaysPerWeek; day++ {
			plan.set(t, day, p.choose(pool))
		}
	}
	return plan, warnings
}

// Assign puts the named option of meal type t into a slot, overwriting
// whatever was there.
func (p *Planner) Assign(plan Plan, t meal.Type, day int, name string) (Plan, error) {
	if err := validateSlot(t, day); err != nil {
		return plan, err
	}
	opt, ok := p.catalog.Find(t, name)
	if !ok {
		return plan, fmt.Errorf("%w: %q is not a %s option", ErrForeignOption, name, t)
	}
	next := plan.clone()
	next.set(t, day, opt)
	return next, nil
}

// Swap replaces a slot with a random eligible option other than the current
// one. When nothing else is eligible it returns a *NoEligibleOptionError and
// the plan unchanged.
func (p *Planner) Swap(plan Plan, t meal.Type, day int) (Plan, error) {
	if err := validateSlot(t, day); err != nil {
		return plan, err
	}

	pool := p.Eligible(t, plan.Filter)
	candidates := pool
	if current, ok := plan.Meal(t, day); ok {
		candidates = make([]meal.Option, 0, len(pool))
		for _, o := range pool {
			if o.Name != current.Name {
				candidates = append(candidates, o)
			}
		}
	}
	if len(candidates) == 0 {
		return plan, &NoEligibleOptionError{MealType: t}
	}

	next := plan.clone()
	next.set(t, day, p.choose(candidates))
	return next, nil
}

// SetProtein enables or disables a protein tag and revalidates the plan.
func (p *Planner) SetProtein(plan Plan, tag string, enabled bool) (Plan, []Warning) {
	next := plan.clone()
	next.Filter = plan.Filter.With(tag, enabled)
	return p.Revalidate(next)
}

// Revalidate replaces every empty slot and every option rejected by the
// plan's filter with a random eligible option. Meal types whose eligible pool
// is empty keep their assignments and produce a warning.
func (p *Planner) Revalidate(plan Plan) (Plan, []Warning) {
	next := plan.clone()
	var warnings []Warning
	for _, t := range meal.Types {
		pool := p.Eligible(t, plan.Filter)
		if len(pool) == 0 {
			warnings = append(warnings, noOptionWarning(t))
			continue
		}
		for day := 0; day < meal.DaysPerWeek; day++ {
			current, ok := next.Meal(t, day)
			if ok && containsName(pool, current.Name) {
				continue
			}
			next.set(t, day, p.choose(pool))
		}
	}
	return next, warnings
}

// ShoppingList aggregates the ingredients of every assigned slot.
func (p *Planner) ShoppingList(plan Plan) shopping.List {
	return p.aggregator.Aggregate(plan.Selected())
}

// Classify returns the shopping-list category of an ingredient name.
func (p *Planner) Classify(name string) meal.Category {
	return p.aggregator.Classify(name)
}

func (p *Planner) choose(pool []meal.Option) meal.Option {
	return pool[p.rng.IntN(len(pool))]
}

func validateSlot(t meal.Type, day int) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMealType, t)
	}
	if day < 0 || day >= meal.DaysPerWeek {
		return fmt.Errorf("%w: %d", ErrInvalidDay, day)
	}
	return nil
}

func containsName(pool []meal.Option, name string) bool {
	for _, o := range pool {
		if o.Name == name {
			return true
		}
	}
	return false
}
