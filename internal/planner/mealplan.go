package planner

import (
	"time"

	"weekly-planner/internal/meal"
)

type week [meal.DaysPerWeek]*meal.Option

// Plan is the weekly selection state: one option per meal type and day, plus
// the protein filter it was built under. Plans are values; every operation on
// a Planner returns a new Plan and leaves its input untouched.
type Plan struct {
	WeekStart time.Time
	Filter    ProteinFilter
	slots     map[meal.Type]week
}

func newPlan(weekStart time.Time, filter ProteinFilter) Plan {
	return Plan{
		WeekStart: weekStart,
		Filter:    filter,
		slots:     make(map[meal.Type]week, len(meal.Types)),
	}
}

func (p Plan) clone() Plan {
	next := newPlan(p.WeekStart, p.Filter)
	for t, w := range p.slots {
		next.slots[t] = w
	}
	return next
}

func (p Plan) set(t meal.Type, day int, opt meal.Option) {
	w := p.slots[t]
	o := opt
	w[day] = &o
	p.slots[t] = w
}

// Meal returns the option assigned to a slot.
func (p Plan) Meal(t meal.Type, day int) (meal.Option, bool) {
	if day < 0 || day >= meal.DaysPerWeek {
		return meal.Option{}, false
	}
	w, ok := p.slots[t]
	if !ok || w[day] == nil {
		return meal.Option{}, false
	}
	return *w[day], true
}

// Selected returns every assigned option, breakfast first, Monday first.
// Options appear once per slot they occupy.
func (p Plan) Selected() []meal.Option {
	var out []meal.Option
	for _, t := range meal.Types {
		w := p.slots[t]
		for _, o := range w {
			if o != nil {
				out = append(out, *o)
			}
		}
	}
	return out
}

// Proteins returns the distinct protein tags of the selected options in the
// order they first appear.
func (p Plan) Proteins() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range p.Selected() {
		for _, tag := range o.Proteins {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// DayPlan is the flattened view of one slot.
type DayPlan struct {
	Day      int       `json:"day"`
	DayName  string    `json:"day_name"`
	MealType meal.Type `json:"meal_type"`
	Meal     string    `json:"meal"`
}

// Days flattens the plan into one DayPlan per slot, unassigned slots included.
func (p Plan) Days() []DayPlan {
	out := make([]DayPlan, 0, len(meal.Types)*meal.DaysPerWeek)
	for _, t := range meal.Types {
		for day := 0; day < meal.DaysPerWeek; day++ {
			dp := DayPlan{Day: day, DayName: meal.DayNames[day], MealType: t}
			if o, ok := p.Meal(t, day); ok {
				dp.Meal = o.Name
			}
			out = append(out, dp)
		}
	}
	return out
}

// GetNextMonday returns midnight of the Monday following now.
func GetNextMonday(now time.Time) time.Time {
	daysUntil := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if daysUntil == 0 {
		daysUntil = 7
	}
	y, m, d := now.AddDate(0, 0, daysUntil).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
